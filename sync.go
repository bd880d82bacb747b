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
	"errors"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
	"github.com/brian-nguyen/pickmanager/session"
)

// SyncState names the coordinator's position in the pull or push cycle.
type SyncState string

const (
	StateIdle           SyncState = "idle"
	StateAuthenticating SyncState = "authenticating"
	StateResolvingRange SyncState = "resolving_range"
	StateFetching       SyncState = "fetching"
	StateProjecting     SyncState = "projecting"
	StateReady          SyncState = "ready"
	StatePushPending    SyncState = "push_pending"
	StatePushing        SyncState = "pushing"
	StateFailed         SyncState = "failed"
)

const pushMaxRetries = 2

// projectedRow is one fully decoded remote row. The whole grid is
// decoded before any store write so a bad row can never leave a partial
// projection behind.
type projectedRow struct {
	name    string
	total   float64
	balance float64
	rng     string
}

// State reports the coordinator's current sync state.
func (p *PickManager) State() SyncState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastSyncError reports whether the remote copy is stale: it holds the
// error from the most recent failed push, or nil after a clean one.
func (p *PickManager) LastSyncError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSyncErr
}

// ResolvedRange reports the data range resolved for the current identity.
func (p *PickManager) ResolvedRange() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolvedRange
}

// SignOut clears the identity and drops the session back to idle.
func (p *PickManager) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provider.SignOut()
	p.state = StateIdle
	p.resolvedRange = ""
}

// Initialize runs the pull cycle: authenticate, resolve the caller's
// owned range from the directory sheet, fetch the grid, and project it
// into the store. Stages run strictly in order; any failure parks the
// coordinator in Failed and the only way out is calling Initialize
// again. The store is untouched on any fetch-stage failure.
func (p *PickManager) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	conf, err := config.Fetch()
	if err != nil {
		return p.fail(err)
	}

	p.state = StateAuthenticating
	identity, err := p.currentIdentity(ctx)
	if err != nil {
		return p.fail(err)
	}

	p.state = StateResolvingRange
	rng, err := p.remote.FindOwnerRow(ctx, conf.Sheets.DirectoryRange, identity.DisplayName, identity.Email, identity.AccessToken)
	if err != nil {
		return p.fail(err)
	}
	p.resolvedRange = rng

	p.state = StateFetching
	grid, err := p.remote.FetchRange(ctx, rng, identity.AccessToken)
	if err != nil {
		return p.fail(err)
	}

	p.state = StateProjecting
	if err := p.project(grid); err != nil {
		return p.fail(err)
	}

	p.state = StateReady
	p.lastSyncErr = nil
	p.logCounter = 1
	logrus.Infof("sync session ready: %d rows projected from %s", len(grid), rng)
	return nil
}

// project maps remote rows [name, totalDeposits, balance, range] onto
// store records. Rows with fewer than three usable cells are skipped;
// partial rows are expected at grid edges.
func (p *PickManager) project(grid model.Grid) error {
	rows := make([]projectedRow, 0, len(grid))
	for i, row := range grid {
		if len(row) < 3 || row[0] == "" {
			continue
		}
		projected := projectedRow{
			name:    row[0],
			total:   model.ParseAmount(row[1]),
			balance: model.ParseAmount(row[2]),
		}
		if len(row) >= 4 && row[3] != "" {
			projected.rng = row[3]
		} else if derived, err := offsetRow(p.resolvedRange, i); err == nil {
			projected.rng = derived
		} else {
			projected.rng = p.resolvedRange
		}
		rows = append(rows, projected)
	}

	for _, row := range rows {
		account, err := p.datasource.GetAccountByName(row.name)
		if err != nil {
			return err
		}
		if account == nil {
			created, err := p.datasource.CreateAccount(row.name)
			if err != nil {
				return err
			}
			account = &created
		} else if len(account.Deposits) > 0 {
			// Re-projecting over existing deposits would double count;
			// clear the slate first.
			if err := p.datasource.ResetAccount(account.AccountID); err != nil {
				return err
			}
		}

		if _, err := p.datasource.SaveDeposit(account.AccountID, row.total); err != nil {
			return err
		}
		if _, err := p.datasource.SaveBalance(account.AccountID, row.balance); err != nil {
			return err
		}
		if err := p.datasource.UpdateAccountRange(account.AccountID, row.rng); err != nil {
			return err
		}
	}

	return nil
}

// PushAll rebuilds the whole table from the store and overwrites the
// resolved range. Rejected until a pull cycle has completed, so a push
// can never race ahead of an in-flight projection and clobber remote
// data with partial local state.
func (p *PickManager) PushAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return err
	}
	return p.pushAll(ctx)
}

// pushAll runs with p.mu held.
func (p *PickManager) pushAll(ctx context.Context) error {
	p.state = StatePushPending
	identity, err := p.currentIdentity(ctx)
	if err != nil {
		p.state = StateReady
		p.lastSyncErr = err
		return err
	}

	accounts, err := p.datasource.GetAllAccounts()
	if err != nil {
		p.state = StateReady
		return err
	}

	grid := make(model.Grid, 0, len(accounts))
	for _, account := range accounts {
		var balance float64
		if account.Balance != nil {
			balance = account.Balance.Amount
		}
		grid = append(grid, []string{
			account.Name,
			model.FormatAmount(account.TotalDeposits()),
			model.FormatAmount(balance),
		})
	}
	grid = grid.FilterEmptyRows()

	p.state = StatePushing
	err = p.writeWithRetry(ctx, p.resolvedRange, grid, identity.AccessToken)
	p.state = StateReady
	p.lastSyncErr = err
	return err
}

// writeWithRetry retries transient transport failures with exponential
// backoff; every other error class is permanent.
func (p *PickManager) writeWithRetry(ctx context.Context, rng string, grid model.Grid, token string) error {
	operation := func() error {
		err := p.remote.WriteRange(ctx, rng, grid, token)
		if err != nil && !apierror.Is(err, apierror.ErrTransport) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), pushMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}
	return nil
}

// pushCell overwrites a single derived cell, the narrow addressing
// style used for deposit log entries and targeted column updates.
func (p *PickManager) pushCell(ctx context.Context, rng string, amount float64, token string) error {
	grid := model.Grid{{model.FormatAmount(amount)}}
	return p.writeWithRetry(ctx, rng, grid, token)
}

func (p *PickManager) currentIdentity(ctx context.Context) (*session.Identity, error) {
	identity := p.provider.CurrentIdentity()
	if identity == nil {
		restored, err := p.provider.RestoreSession(ctx)
		if err != nil {
			return nil, err
		}
		identity = restored
	}
	if identity == nil || identity.AccessToken == "" {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "no signed-in identity", nil)
	}
	return identity, nil
}

// ensureReady runs with p.mu held.
func (p *PickManager) ensureReady() error {
	if p.state != StateReady {
		return apierror.NewAPIError(apierror.ErrBadRequest, "sync session not ready; initialize first", string(p.state))
	}
	return nil
}

func (p *PickManager) fail(err error) error {
	p.state = StateFailed
	p.lastSyncErr = err
	return err
}

// offsetRow shifts the row number of an A1-style cell address down by
// delta rows, e.g. offsetRow("B2", 1) == "B3". The optional sheet
// qualifier is preserved.
func offsetRow(rng string, delta int) (string, error) {
	prefix := ""
	cell := rng
	if idx := strings.LastIndexByte(rng, '!'); idx >= 0 {
		prefix = rng[:idx+1]
		cell = rng[idx+1:]
	}

	split := 0
	for split < len(cell) && (cell[split] < '0' || cell[split] > '9') {
		split++
	}
	if split == 0 || split == len(cell) {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, "range is not a cell address: "+rng, nil)
	}

	row, err := strconv.Atoi(cell[split:])
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInvalidInput, "range is not a cell address: "+rng, err)
	}

	return prefix + cell[:split] + strconv.Itoa(row+delta), nil
}
