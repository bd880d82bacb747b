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

package database

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
)

func (d Datasource) CreateAccount(name string) (model.Account, error) {
	account := model.Account{
		AccountID: model.GenerateUUIDWithSuffix("acc"),
		Name:      name,
		CreatedAt: time.Now(),
	}

	_, err := d.Conn.Exec(`
		INSERT INTO accounts (account_id, name, sheet_range, created_at)
		VALUES ($1, $2, $3, $4)
	`, account.AccountID, account.Name, account.Range, account.CreatedAt)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return model.Account{}, apierror.NewAPIError(apierror.ErrConflict, "Account with this name already exists", err)
		}
		return model.Account{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to create account", err)
	}

	return account, nil
}

func (d Datasource) GetAccountByName(name string) (*model.Account, error) {
	account := model.Account{}

	row := d.Conn.QueryRow(`
		SELECT a.account_id, a.name, a.sheet_range, a.created_at,
		       b.balance_id, b.amount, b.created_at
		FROM accounts a
		LEFT JOIN balances b ON b.account_id = a.account_id
		WHERE a.name = $1
	`, name)

	var balanceID sql.NullString
	var balanceAmount sql.NullFloat64
	var balanceCreatedAt sql.NullTime
	err := row.Scan(&account.AccountID, &account.Name, &account.Range, &account.CreatedAt,
		&balanceID, &balanceAmount, &balanceCreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve account", err)
	}

	if balanceID.Valid {
		account.Balance = &model.Balance{
			BalanceID: balanceID.String,
			AccountID: account.AccountID,
			Amount:    balanceAmount.Float64,
			CreatedAt: balanceCreatedAt.Time,
		}
	}

	deposits, err := d.GetDeposits(account.AccountID)
	if err != nil {
		return nil, err
	}
	account.Deposits = deposits

	return &account, nil
}

// GetAllAccounts eager loads balances and deposits in two queries so
// downstream grid building never does per-account lookups.
func (d Datasource) GetAllAccounts() ([]model.Account, error) {
	rows, err := d.Conn.Query(`
		SELECT a.account_id, a.name, a.sheet_range, a.created_at,
		       b.balance_id, b.amount, b.created_at
		FROM accounts a
		LEFT JOIN balances b ON b.account_id = a.account_id
		ORDER BY a.id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve accounts", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	index := map[string]int{}

	for rows.Next() {
		account := model.Account{}
		var balanceID sql.NullString
		var balanceAmount sql.NullFloat64
		var balanceCreatedAt sql.NullTime
		err = rows.Scan(&account.AccountID, &account.Name, &account.Range, &account.CreatedAt,
			&balanceID, &balanceAmount, &balanceCreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan account data", err)
		}

		if balanceID.Valid {
			account.Balance = &model.Balance{
				BalanceID: balanceID.String,
				AccountID: account.AccountID,
				Amount:    balanceAmount.Float64,
				CreatedAt: balanceCreatedAt.Time,
			}
		}

		index[account.AccountID] = len(accounts)
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over accounts", err)
	}

	depositRows, err := d.Conn.Query(`
		SELECT deposit_id, account_id, amount, created_at
		FROM deposits
		ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve deposits", err)
	}
	defer depositRows.Close()

	for depositRows.Next() {
		deposit := model.Deposit{}
		err = depositRows.Scan(&deposit.DepositID, &deposit.AccountID, &deposit.Amount, &deposit.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan deposit data", err)
		}
		if i, ok := index[deposit.AccountID]; ok {
			accounts[i].Deposits = append(accounts[i].Deposits, deposit)
		}
	}

	if err = depositRows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over deposits", err)
	}

	return accounts, nil
}

func (d Datasource) UpdateAccountRange(accountID string, sheetRange string) error {
	result, err := d.Conn.Exec(`
		UPDATE accounts SET sheet_range = $2 WHERE account_id = $1
	`, accountID, sheetRange)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update account range", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to update account range", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Account not found", nil)
	}
	return nil
}

// ResetAccount wipes the account's deposits and balance and re-seeds a
// zero deposit and zero balance in the same transaction, so the account
// is never observable without a balance.
func (d Datasource) ResetAccount(accountID string) error {
	tx, err := d.Conn.Begin()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to begin reset transaction", err)
	}

	_, err = tx.Exec(`DELETE FROM deposits WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete deposits", err)
	}

	_, err = tx.Exec(`DELETE FROM balances WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete balance", err)
	}

	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO deposits (deposit_id, account_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`, model.GenerateUUIDWithSuffix("dep"), accountID, 0.0, now)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to seed zero deposit", err)
	}

	_, err = tx.Exec(`
		INSERT INTO balances (balance_id, account_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`, model.GenerateUUIDWithSuffix("bln"), accountID, 0.0, now)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to seed zero balance", err)
	}

	if err = tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to commit reset transaction", err)
	}
	return nil
}

func (d Datasource) DeleteAccount(accountID string) error {
	tx, err := d.Conn.Begin()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to begin delete transaction", err)
	}

	_, err = tx.Exec(`DELETE FROM deposits WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete deposits", err)
	}

	_, err = tx.Exec(`DELETE FROM balances WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete balance", err)
	}

	result, err := tx.Exec(`DELETE FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete account", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to delete account", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return apierror.NewAPIError(apierror.ErrNotFound, "Account not found", nil)
	}

	if err = tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to commit delete transaction", err)
	}
	return nil
}

func (d Datasource) DeleteAll() error {
	tx, err := d.Conn.Begin()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to begin wipe transaction", err)
	}

	for _, stmt := range []string{
		`DELETE FROM deposits`,
		`DELETE FROM balances`,
		`DELETE FROM accounts`,
	} {
		if _, err = tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return apierror.NewAPIError(apierror.ErrPersistence, "Failed to wipe store", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrPersistence, "Failed to commit wipe transaction", err)
	}
	return nil
}
