package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSaving   AccountType = "saving"
)

// Account is the in-memory snapshot of a bank account. Balance is kept
// as an exact decimal with a scale of 2; it always reflects the value
// last acknowledged by the account store.
type Account struct {
	HolderName    string
	AccountNumber string
	PIN           string
	AccountType   AccountType
	Balance       decimal.Decimal
	IsAdmin       bool
	CreatedAt     time.Time

	// LoggedIn is session state only. It is never persisted.
	LoggedIn bool
}
