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

import "github.com/brian-nguyen/pickmanager/model"

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	account // Interface for account-related operations
	balance // Interface for balance-related operations
	deposit // Interface for deposit-related operations
}

// account defines methods for handling accounts.
type account interface {
	CreateAccount(name string) (model.Account, error)           // Creates a new account; duplicate names conflict
	GetAccountByName(name string) (*model.Account, error)       // Retrieves an account by exact name, nil when absent
	GetAllAccounts() ([]model.Account, error)                   // Retrieves all accounts with balances and deposits eager loaded
	UpdateAccountRange(accountID string, sheetRange string) error // Stores the remote base range for an account
	ResetAccount(accountID string) error                        // Wipes deposits/balance, re-seeds zero deposit and zero balance
	DeleteAccount(accountID string) error                       // Deletes deposits, balance, and the account in one transaction
	DeleteAll() error                                           // Deletes every deposit, balance, and account
}

// balance defines methods for handling balances.
type balance interface {
	SaveBalance(accountID string, amount float64) (model.Balance, error) // Replaces the account's current balance
	GetBalance(accountID string) (*model.Balance, error)                 // Retrieves the account's current balance, nil when absent
}

// deposit defines methods for handling deposits.
type deposit interface {
	SaveDeposit(accountID string, amount float64) (model.Deposit, error) // Appends a deposit
	GetDeposits(accountID string) ([]model.Deposit, error)               // Retrieves all deposits for an account
	TotalDeposits(accountID string) (float64, error)                     // Sums deposit amounts, 0 when none
}
