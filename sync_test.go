/*
Copyright 2025 PickManager Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pickmanager

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/database"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
	"github.com/brian-nguyen/pickmanager/session"
)

type remoteWrite struct {
	rng  string
	grid model.Grid
}

// fakeRemote is an in-memory RemoteLedger double recording every write.
type fakeRemote struct {
	ownerRange string
	grid       model.Grid
	findErr    error
	fetchErr   error
	writeErr   error
	// writeFailures fails this many writes before succeeding
	writeFailures int

	fetches []string
	writes  []remoteWrite
}

func (f *fakeRemote) FetchRange(_ context.Context, rng, _ string) (model.Grid, error) {
	f.fetches = append(f.fetches, rng)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.grid, nil
}

func (f *fakeRemote) WriteRange(_ context.Context, rng string, grid model.Grid, _ string) error {
	f.writes = append(f.writes, remoteWrite{rng: rng, grid: grid})
	if f.writeFailures > 0 {
		f.writeFailures--
		return apierror.NewAPIError(apierror.ErrTransport, "simulated transport failure", nil)
	}
	return f.writeErr
}

func (f *fakeRemote) FindOwnerRow(_ context.Context, _, _, _, _ string) (string, error) {
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.ownerRange, nil
}

type fakeProvider struct {
	identity   *session.Identity
	restoreErr error
	signedOut  bool
}

func (f *fakeProvider) CurrentIdentity() *session.Identity { return f.identity }

func (f *fakeProvider) SignIn(_ context.Context) (*session.Identity, error) {
	return f.identity, nil
}

func (f *fakeProvider) RestoreSession(_ context.Context) (*session.Identity, error) {
	if f.restoreErr != nil {
		return nil, f.restoreErr
	}
	return f.identity, nil
}

func (f *fakeProvider) SignOut() {
	f.identity = nil
	f.signedOut = true
}

func testIdentity() *session.Identity {
	return &session.Identity{
		DisplayName: "Alice Doe",
		Email:       "alice@x.com",
		AccessToken: "tok-1",
	}
}

func newTestManager(t *testing.T, remote *fakeRemote, provider session.Provider) (*PickManager, sqlmock.Sqlmock) {
	t.Helper()
	config.MockConfig(&config.Configuration{
		Sheets: config.SheetsConfig{
			SpreadsheetId:  "sheet-1",
			DirectoryRange: "Manager!A1:C100",
			LogSheet:       "Sheet2",
		},
	})
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Printf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return newPickManager(&database.Datasource{Conn: db}, remote, provider), mock
}

func accountColumns() []string {
	return []string{"account_id", "name", "sheet_range", "created_at",
		"balance_id", "amount", "created_at"}
}

func depositColumns() []string {
	return []string{"deposit_id", "account_id", "amount", "created_at"}
}

func TestInitialize(t *testing.T) {
	remote := &fakeRemote{
		ownerRange: "Sheet1!B2:E10",
		grid: model.Grid{
			{"Alice", "150.00", "75.00", "B2"},
			{"Totals"},
		},
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	// "Alice" is new, so the projection creates her account.
	mock.ExpectQuery("SELECT a.account_id").
		WithArgs("Alice").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "Alice", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO deposits").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 150.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM balances WHERE account_id").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 75.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE accounts SET sheet_range").
		WithArgs(sqlmock.AnyArg(), "B2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := pm.Initialize(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateReady, pm.State())
	assert.Equal(t, "Sheet1!B2:E10", pm.ResolvedRange())
	assert.Equal(t, []string{"Sheet1!B2:E10"}, remote.fetches)
	assert.NoError(t, pm.LastSyncError())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestInitialize_DerivesMissingRowRange(t *testing.T) {
	remote := &fakeRemote{
		ownerRange: "B2",
		grid: model.Grid{
			{"Alice", "150.00", "75.00"},
			{"Bob", "20.00", "0.00"},
		},
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	for i, name := range []string{"Alice", "Bob"} {
		mock.ExpectQuery("SELECT a.account_id").
			WithArgs(name).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectExec("INSERT INTO accounts").
			WithArgs(sqlmock.AnyArg(), name, "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO deposits").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM balances WHERE account_id").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO balances").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
		// Row i lands on cell B{2+i}.
		derived := []string{"B2", "B3"}[i]
		mock.ExpectExec("UPDATE accounts SET sheet_range").
			WithArgs(sqlmock.AnyArg(), derived).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	assert.NoError(t, pm.Initialize(context.Background()))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestInitialize_ReprojectionClearsExistingDeposits(t *testing.T) {
	remote := &fakeRemote{
		ownerRange: "Sheet1!B2:E10",
		grid:       model.Grid{{"Alice", "150.00", "75.00", "B2"}},
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	now := time.Now()
	mock.ExpectQuery("SELECT a.account_id").
		WithArgs("Alice").
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow("acc_1", "Alice", "B2", now, "bln_1", 40.0, now))
	mock.ExpectQuery("SELECT deposit_id, account_id, amount, created_at").
		WithArgs("acc_1").
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow("dep_1", "acc_1", 40.0, now))

	// Existing deposits would double count, so the account is reset
	// before the remote totals are replayed.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM deposits WHERE account_id").
		WithArgs("acc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM balances WHERE account_id").
		WithArgs("acc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO deposits").
		WithArgs(sqlmock.AnyArg(), "acc_1", 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(sqlmock.AnyArg(), "acc_1", 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectExec("INSERT INTO deposits").
		WithArgs(sqlmock.AnyArg(), "acc_1", 150.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM balances WHERE account_id").
		WithArgs("acc_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(sqlmock.AnyArg(), "acc_1", 75.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE accounts SET sheet_range").
		WithArgs("acc_1", "B2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, pm.Initialize(context.Background()))

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestInitialize_FetchFailureLeavesStoreUntouched(t *testing.T) {
	remote := &fakeRemote{
		ownerRange: "Sheet1!B2:E10",
		fetchErr:   apierror.NewAPIError(apierror.ErrTransport, "connection reset", nil),
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	err := pm.Initialize(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrTransport))
	assert.Equal(t, StateFailed, pm.State())

	// No store expectation was set: any write would have failed the mock.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("store was touched on fetch failure: %s", err)
	}
}

func TestInitialize_NoIdentity(t *testing.T) {
	remote := &fakeRemote{ownerRange: "Sheet1!B2:E10"}
	provider := &fakeProvider{
		restoreErr: apierror.NewAPIError(apierror.ErrUnauthorized, "no stored token", nil),
	}
	pm, _ := newTestManager(t, remote, provider)

	err := pm.Initialize(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrUnauthorized))
	assert.Equal(t, StateFailed, pm.State())
	assert.Empty(t, remote.fetches)
}

func TestInitialize_OwnerRowMissing(t *testing.T) {
	remote := &fakeRemote{
		findErr: apierror.NewAPIError(apierror.ErrNotFound, "no owner row", nil),
	}
	pm, _ := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	err := pm.Initialize(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrNotFound))
	assert.Equal(t, StateFailed, pm.State())
	assert.Empty(t, remote.fetches)
}

func TestInitialize_RetryAfterFailure(t *testing.T) {
	remote := &fakeRemote{
		ownerRange: "Sheet1!B2:E10",
		fetchErr:   apierror.NewAPIError(apierror.ErrTransport, "connection reset", nil),
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	assert.Error(t, pm.Initialize(context.Background()))
	assert.Equal(t, StateFailed, pm.State())

	remote.fetchErr = nil
	remote.grid = model.Grid{}

	assert.NoError(t, pm.Initialize(context.Background()))
	assert.Equal(t, StateReady, pm.State())
	assert.NoError(t, pm.LastSyncError())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func expectAllAccounts(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectQuery("SELECT a.account_id").
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow("acc_1", "Alice", "B2", now, "bln_1", 75.0, now))
	mock.ExpectQuery("SELECT deposit_id, account_id, amount, created_at").
		WillReturnRows(sqlmock.NewRows(depositColumns()).
			AddRow("dep_1", "acc_1", 150.0, now))
}

func TestPushAll(t *testing.T) {
	remote := &fakeRemote{}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})
	pm.state = StateReady
	pm.resolvedRange = "Sheet1!B2:E10"

	expectAllAccounts(mock)

	assert.NoError(t, pm.PushAll(context.Background()))
	assert.Equal(t, StateReady, pm.State())
	assert.NoError(t, pm.LastSyncError())
	assert.Equal(t, []remoteWrite{
		{rng: "Sheet1!B2:E10", grid: model.Grid{{"Alice", "150.00", "75.00"}}},
	}, remote.writes)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPushAll_RejectedBeforeReady(t *testing.T) {
	remote := &fakeRemote{}
	pm, _ := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})

	err := pm.PushAll(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrBadRequest))
	assert.Empty(t, remote.writes)
}

func TestPushAll_RetriesTransportFailure(t *testing.T) {
	remote := &fakeRemote{writeFailures: 1}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})
	pm.state = StateReady
	pm.resolvedRange = "Sheet1!B2:E10"

	expectAllAccounts(mock)

	assert.NoError(t, pm.PushAll(context.Background()))
	assert.Len(t, remote.writes, 2)
	assert.NoError(t, pm.LastSyncError())
}

func TestPushAll_AuthFailureNotRetried(t *testing.T) {
	remote := &fakeRemote{
		writeErr: apierror.NewAPIError(apierror.ErrUnauthorized, "token expired", nil),
	}
	pm, mock := newTestManager(t, remote, &fakeProvider{identity: testIdentity()})
	pm.state = StateReady
	pm.resolvedRange = "Sheet1!B2:E10"

	expectAllAccounts(mock)

	err := pm.PushAll(context.Background())
	assert.True(t, apierror.Is(err, apierror.ErrUnauthorized))
	assert.Len(t, remote.writes, 1)

	// Local state survives the failed push; the error stays observable.
	assert.Equal(t, StateReady, pm.State())
	assert.Error(t, pm.LastSyncError())
}

func TestSignOut(t *testing.T) {
	provider := &fakeProvider{identity: testIdentity()}
	pm, _ := newTestManager(t, &fakeRemote{}, provider)
	pm.state = StateReady
	pm.resolvedRange = "Sheet1!B2:E10"

	pm.SignOut()
	assert.True(t, provider.signedOut)
	assert.Equal(t, StateIdle, pm.State())
	assert.Empty(t, pm.ResolvedRange())
}

func TestOffsetRow(t *testing.T) {
	tests := []struct {
		rng   string
		delta int
		want  string
		fails bool
	}{
		{rng: "B2", delta: 0, want: "B2"},
		{rng: "B2", delta: 3, want: "B5"},
		{rng: "Sheet1!B2", delta: 1, want: "Sheet1!B3"},
		{rng: "AA10", delta: 5, want: "AA15"},
		{rng: "Sheet1", delta: 1, fails: true},
		{rng: "42", delta: 1, fails: true},
	}

	for _, tt := range tests {
		got, err := offsetRow(tt.rng, tt.delta)
		if tt.fails {
			assert.Error(t, err, tt.rng)
			continue
		}
		assert.NoError(t, err, tt.rng)
		assert.Equal(t, tt.want, got)
	}
}
