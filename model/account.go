package model

import "time"

// Account is a named ledger entity anchored to one row of the remote
// sheet. Range holds the base cell of that row, e.g. "B2".
type Account struct {
	ID        int64     `json:"-"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	Range     string    `json:"range"`
	Balance   *Balance  `json:"balance,omitempty"`
	Deposits  []Deposit `json:"deposits,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TotalDeposits sums the loaded deposits. Callers that have not eager
// loaded deposits should use the datasource aggregate instead.
func (a *Account) TotalDeposits() float64 {
	var total float64
	for _, d := range a.Deposits {
		total += d.Amount
	}
	return total
}

type Balance struct {
	ID        int64     `json:"-"`
	BalanceID string    `json:"balance_id"`
	AccountID string    `json:"account_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type Deposit struct {
	ID        int64     `json:"-"`
	DepositID string    `json:"deposit_id"`
	AccountID string    `json:"account_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
