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
package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateAccount is the request body for registering a ledger account.
type CreateAccount struct {
	Name string `json:"name"`
}

func (a *CreateAccount) ValidateCreateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.Length(1, 100)),
	)
}

// RecordDeposit is the request body for appending a deposit to an
// account's history.
type RecordDeposit struct {
	Amount float64 `json:"amount"`
}

func (d *RecordDeposit) ValidateRecordDeposit() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Amount, validation.Required, validation.Min(0.01)),
	)
}

// RecordBalance is the request body for replacing an account's balance.
// Zero is a legal balance, so unlike deposits the amount may be 0.
type RecordBalance struct {
	Amount float64 `json:"amount"`
}

func (b *RecordBalance) ValidateRecordBalance() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Amount, validation.Min(0.0)),
	)
}
