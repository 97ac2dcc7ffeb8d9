package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tidebank/corebank/internal/domain"
)

// SeedAccount inserts an account directly, bypassing the engine, for
// tests that need a known starting state.
func SeedAccount(t *testing.T, db *sql.DB, number, accountType, balance string) *domain.Account {
	t.Helper()

	a := &domain.Account{
		HolderName:    "Test Holder " + number,
		AccountNumber: number,
		PIN:           "1234",
		AccountType:   domain.AccountType(accountType),
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (holder_name, account_number, pin, account_type, balance, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.HolderName, a.AccountNumber, a.PIN, a.AccountType, a.Balance, a.IsAdmin, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetBalance(t *testing.T, db *sql.DB, number string) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance %s: %v", number, err)
	}
	return balance
}

func CountEntries(t *testing.T, db *sql.DB, number string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_number = $1`, number).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for %s: %v", number, err)
	}
	return count
}
