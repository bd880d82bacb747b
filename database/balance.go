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

	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
)

// SaveBalance replaces the account's current balance. Delete and insert
// run in one transaction so no reader ever observes an account with two
// balances or none mid-replacement.
func (d Datasource) SaveBalance(accountID string, amount float64) (model.Balance, error) {
	balance := model.Balance{
		BalanceID: model.GenerateUUIDWithSuffix("bln"),
		AccountID: accountID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}

	tx, err := d.Conn.Begin()
	if err != nil {
		return model.Balance{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to begin balance transaction", err)
	}

	_, err = tx.Exec(`DELETE FROM balances WHERE account_id = $1`, accountID)
	if err != nil {
		_ = tx.Rollback()
		return model.Balance{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to replace balance", err)
	}

	_, err = tx.Exec(`
		INSERT INTO balances (balance_id, account_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`, balance.BalanceID, balance.AccountID, balance.Amount, balance.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return model.Balance{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to insert balance", err)
	}

	if err = tx.Commit(); err != nil {
		return model.Balance{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to commit balance transaction", err)
	}

	return balance, nil
}

func (d Datasource) GetBalance(accountID string) (*model.Balance, error) {
	balance := model.Balance{}

	row := d.Conn.QueryRow(`
		SELECT balance_id, account_id, amount, created_at
		FROM balances
		WHERE account_id = $1
	`, accountID)

	err := row.Scan(&balance.BalanceID, &balance.AccountID, &balance.Amount, &balance.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve balance", err)
	}

	return &balance, nil
}
