package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationKind string

const (
	OpLogin             OperationKind = "Login"
	OpDeposit           OperationKind = "Deposit"
	OpWithdraw          OperationKind = "Withdraw"
	OpInterest          OperationKind = "Interest"
	OpChangeAccountType OperationKind = "ChangeAccountType"
	OpGrantAdmin        OperationKind = "GrantAdmin"
	OpRevokeAdmin       OperationKind = "RevokeAdmin"
)

// TimestampLayout is the fixed-width encoding used for ledger
// timestamps. Fixed width keeps the textual form sortable; entries that
// share a timestamp under coarse clock resolution are still ordered by
// their store-assigned ID.
const TimestampLayout = "2006-01-02T15:04:05.000"

// Timestamp renders t in the ledger's textual encoding.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// LedgerEntry is the immutable audit record of one state-changing
// operation. ID is assigned by the ledger store on append and defines
// the authoritative ordering.
type LedgerEntry struct {
	ID            int64
	RecordedAt    string
	Kind          OperationKind
	Amount        decimal.Decimal
	AccountNumber string
	Description   string
}
