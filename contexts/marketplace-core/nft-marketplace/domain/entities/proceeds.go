package entities

import "github.com/shopspring/decimal"

// ProceedsAccount holds sale revenue owed to a seller. Accounts are created on
// first credit and are only ever zeroed, never removed.
type ProceedsAccount struct {
	Seller  string
	Balance decimal.Decimal
}

func (a ProceedsAccount) HasFunds() bool {
	return a.Balance.IsPositive()
}
