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
	"fmt"

	"github.com/brian-nguyen/pickmanager/config"
	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
)

// RegisterAccount creates a named account and pushes the rebuilt table
// so the remote copy picks up the new row. The returned error reports
// push staleness; the local account exists either way.
func (p *PickManager) RegisterAccount(ctx context.Context, name string) (*model.Account, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return nil, err
	}

	account, err := p.datasource.CreateAccount(name)
	if err != nil {
		return nil, err
	}

	// A fresh account must never be observable without a balance; the
	// reset path seeds the zero deposit and zero balance.
	if err := p.datasource.ResetAccount(account.AccountID); err != nil {
		return nil, err
	}

	accounts, countErr := p.datasource.GetAllAccounts()
	if countErr == nil {
		if derived, offErr := offsetRow(p.resolvedRange, len(accounts)-1); offErr == nil {
			if upErr := p.datasource.UpdateAccountRange(account.AccountID, derived); upErr == nil {
				account.Range = derived
			}
		}
	}

	return &account, p.pushAll(ctx)
}

// RecordDeposit appends a deposit locally, then writes the deposit log
// cell and the account's derived totals cell. Remote failures never
// roll the deposit back; they surface in the returned error and in
// LastSyncError.
func (p *PickManager) RecordDeposit(ctx context.Context, name string, amount float64) (*model.Deposit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return nil, err
	}

	account, err := p.lookupAccount(name)
	if err != nil {
		return nil, err
	}

	deposit, err := p.datasource.SaveDeposit(account.AccountID, amount)
	if err != nil {
		return nil, err
	}

	// Failing to read the running total back is a local store fault,
	// not remote staleness; it comes back as a hard error.
	total, err := p.datasource.TotalDeposits(account.AccountID)
	if err != nil {
		return nil, err
	}

	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	identity, err := p.currentIdentity(ctx)
	if err != nil {
		p.lastSyncErr = err
		return &deposit, err
	}

	// The log cell advances even when the write fails so a retry never
	// lands on top of a previously written entry.
	logCell := model.LogCell(conf.Sheets.LogSheet, p.logCounter)
	p.logCounter++
	if err := p.pushCell(ctx, logCell, amount, identity.AccessToken); err != nil {
		p.lastSyncErr = err
		return &deposit, err
	}

	totalsCell, err := model.ShiftColumn(account.Range, 'B', 'C')
	if err != nil {
		p.lastSyncErr = err
		return &deposit, err
	}
	if err := p.pushCell(ctx, totalsCell, total, identity.AccessToken); err != nil {
		p.lastSyncErr = err
		return &deposit, err
	}

	p.lastSyncErr = nil
	return &deposit, nil
}

// RecordBalance replaces the account's balance locally, then writes the
// derived balance cell. The replacement survives remote failure.
func (p *PickManager) RecordBalance(ctx context.Context, name string, amount float64) (*model.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return nil, err
	}

	account, err := p.lookupAccount(name)
	if err != nil {
		return nil, err
	}

	balance, err := p.datasource.SaveBalance(account.AccountID, amount)
	if err != nil {
		return nil, err
	}

	identity, err := p.currentIdentity(ctx)
	if err != nil {
		p.lastSyncErr = err
		return &balance, err
	}

	balanceCell, err := model.ShiftColumn(account.Range, 'B', 'D')
	if err != nil {
		p.lastSyncErr = err
		return &balance, err
	}
	if err := p.pushCell(ctx, balanceCell, amount, identity.AccessToken); err != nil {
		p.lastSyncErr = err
		return &balance, err
	}

	p.lastSyncErr = nil
	return &balance, nil
}

// ResetAccount clears the account's history down to a zero deposit and
// zero balance, then pushes the rebuilt table.
func (p *PickManager) ResetAccount(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return err
	}

	account, err := p.lookupAccount(name)
	if err != nil {
		return err
	}
	if err := p.datasource.ResetAccount(account.AccountID); err != nil {
		return err
	}
	return p.pushAll(ctx)
}

// DeleteAccount removes the account and all dependent records, then
// pushes the rebuilt table so the remote row disappears.
func (p *PickManager) DeleteAccount(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return err
	}

	account, err := p.lookupAccount(name)
	if err != nil {
		return err
	}
	if err := p.datasource.DeleteAccount(account.AccountID); err != nil {
		return err
	}
	return p.pushAll(ctx)
}

// Wipe deletes every account and pushes the now-empty table.
func (p *PickManager) Wipe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureReady(); err != nil {
		return err
	}
	if err := p.datasource.DeleteAll(); err != nil {
		return err
	}
	return p.pushAll(ctx)
}

// GetAccounts returns every account with its balance and deposits.
func (p *PickManager) GetAccounts() ([]model.Account, error) {
	return p.datasource.GetAllAccounts()
}

// GetAccount returns the named account or a not-found error.
func (p *PickManager) GetAccount(name string) (*model.Account, error) {
	return p.lookupAccount(name)
}

func (p *PickManager) lookupAccount(name string) (*model.Account, error) {
	account, err := p.datasource.GetAccountByName(name)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("account %q not found", name), nil)
	}
	return account, nil
}
