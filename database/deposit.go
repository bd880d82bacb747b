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
	"time"

	"github.com/brian-nguyen/pickmanager/internal/apierror"
	"github.com/brian-nguyen/pickmanager/model"
)

func (d Datasource) SaveDeposit(accountID string, amount float64) (model.Deposit, error) {
	deposit := model.Deposit{
		DepositID: model.GenerateUUIDWithSuffix("dep"),
		AccountID: accountID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}

	_, err := d.Conn.Exec(`
		INSERT INTO deposits (deposit_id, account_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`, deposit.DepositID, deposit.AccountID, deposit.Amount, deposit.CreatedAt)

	if err != nil {
		return model.Deposit{}, apierror.NewAPIError(apierror.ErrPersistence, "Failed to save deposit", err)
	}

	return deposit, nil
}

func (d Datasource) GetDeposits(accountID string) ([]model.Deposit, error) {
	rows, err := d.Conn.Query(`
		SELECT deposit_id, account_id, amount, created_at
		FROM deposits
		WHERE account_id = $1
		ORDER BY id
	`, accountID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to retrieve deposits", err)
	}
	defer rows.Close()

	deposits := []model.Deposit{}

	for rows.Next() {
		deposit := model.Deposit{}
		err = rows.Scan(&deposit.DepositID, &deposit.AccountID, &deposit.Amount, &deposit.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrPersistence, "Failed to scan deposit data", err)
		}
		deposits = append(deposits, deposit)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrPersistence, "Error occurred while iterating over deposits", err)
	}

	return deposits, nil
}

func (d Datasource) TotalDeposits(accountID string) (float64, error) {
	var total float64

	row := d.Conn.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM deposits
		WHERE account_id = $1
	`, accountID)

	if err := row.Scan(&total); err != nil {
		return 0, apierror.NewAPIError(apierror.ErrPersistence, "Failed to sum deposits", err)
	}

	return total, nil
}
