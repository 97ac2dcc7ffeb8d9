package bank

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tidebank/corebank/internal/domain"
	"github.com/tidebank/corebank/internal/logging"
)

// AccountStore is the durable account record keeper. It is the single
// source of truth for account state; the engine's cache only mirrors
// acknowledged writes.
type AccountStore interface {
	Get(ctx context.Context, number string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	UpdateBalance(ctx context.Context, number string, balance decimal.Decimal) error
	UpdateType(ctx context.Context, number string, accountType domain.AccountType) error
	UpdateAdmin(ctx context.Context, number string, isAdmin bool) error
}

// LedgerStore is the durable append-only audit trail.
type LedgerStore interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	GetByAccount(ctx context.Context, number string) ([]domain.LedgerEntry, error)
}

// EntryPublisher receives every recorded ledger entry. Publishing is
// best effort; a failure never affects the committed mutation.
type EntryPublisher interface {
	PublishEntry(ctx context.Context, entry *domain.LedgerEntry) error
}

var savingsInterestRate = decimal.RequireFromString("0.05")

const accountNumberLen = 6

// registerAttempts bounds retries when a generated account number
// collides with an existing one.
const registerAttempts = 5

// Engine executes all balance-changing operations. Every mutation
// follows the same commit discipline: validate, durable write, cache
// update, ledger append. If the durable write fails the cache is left
// untouched and no entry is written. If the ledger append fails after a
// successful durable write, the balance change stays committed and the
// failure is logged; the ledger is an audit trail, not the system of
// record.
type Engine struct {
	store     AccountStore
	ledger    LedgerStore
	cache     *Cache
	locks     *accountLocks
	publisher EntryPublisher
}

// NewEngine builds an engine over the given stores. publisher may be
// nil to disable event publishing.
func NewEngine(store AccountStore, ledger LedgerStore, cache *Cache, publisher EntryPublisher) *Engine {
	return &Engine{
		store:     store,
		ledger:    ledger,
		cache:     cache,
		locks:     newAccountLocks(),
		publisher: publisher,
	}
}

// Authenticate compares the supplied PIN against the cached account by
// exact match. Unknown account and PIN mismatch report the same
// failure so callers cannot probe which numbers exist. Success marks
// the session flag and records a Login entry.
func (e *Engine) Authenticate(ctx context.Context, number, pin string) (*domain.Account, error) {
	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok || acct.PIN != pin {
		return nil, fmt.Errorf("Authenticate: %w", domain.ErrInvalidCredentials)
	}

	acct.LoggedIn = true
	e.cache.Put(acct)
	e.appendEntry(ctx, domain.OpLogin, decimal.Zero, number, "User logged in")

	logging.FromContext(ctx).Info("login succeeded", "account", number)
	return &acct, nil
}

// validAmount reports whether amount is positive and no finer than one
// cent. The durable store holds money at scale 2; a finer amount would
// be rounded on write while the cache kept the raw value.
func validAmount(amount decimal.Decimal) bool {
	return amount.Sign() > 0 && amount.Equal(amount.Truncate(2))
}

// Deposit credits amount to the account. amount must be positive and
// carry at most two decimal places.
func (e *Engine) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	if !validAmount(amount) {
		return nil, fmt.Errorf("Deposit: %w", domain.ErrInvalidAmount)
	}

	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("Deposit: %w", domain.ErrNotFound)
	}

	newBalance := acct.Balance.Add(amount)
	if err := e.store.UpdateBalance(ctx, number, newBalance); err != nil {
		return nil, fmt.Errorf("Deposit: durable write: %w", err)
	}

	acct.Balance = newBalance
	e.cache.Put(acct)
	e.appendEntry(ctx, domain.OpDeposit, amount, number, "Deposit transaction")

	logging.FromContext(ctx).Info("deposit completed",
		"account", number,
		"amount", amount.StringFixed(2),
		"balance", newBalance.StringFixed(2),
	)
	return &acct, nil
}

// Withdraw debits amount from the account. Insufficient funds is a
// distinct failure from an invalid amount or an unknown account.
func (e *Engine) Withdraw(ctx context.Context, number string, amount decimal.Decimal) (*domain.Account, error) {
	if !validAmount(amount) {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInvalidAmount)
	}

	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrNotFound)
	}
	if acct.Balance.LessThan(amount) {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInsufficientFunds)
	}

	newBalance := acct.Balance.Sub(amount)
	if err := e.store.UpdateBalance(ctx, number, newBalance); err != nil {
		return nil, fmt.Errorf("Withdraw: durable write: %w", err)
	}

	acct.Balance = newBalance
	e.cache.Put(acct)
	e.appendEntry(ctx, domain.OpWithdraw, amount, number, "Withdrawal transaction")

	logging.FromContext(ctx).Info("withdrawal completed",
		"account", number,
		"amount", amount.StringFixed(2),
		"balance", newBalance.StringFixed(2),
	)
	return &acct, nil
}

// ApplyInterest credits 5% of the current balance, rounded half-up to
// two decimal places. Only saving accounts with a positive balance
// qualify; everything else reports ErrInterestNotApplicable rather
// than a silent no-op. Exactly one Interest entry is written per
// successful application.
func (e *Engine) ApplyInterest(ctx context.Context, number string) (*domain.Account, error) {
	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("ApplyInterest: %w", domain.ErrNotFound)
	}
	if !strings.EqualFold(string(acct.AccountType), string(domain.AccountTypeSaving)) || acct.Balance.Sign() <= 0 {
		return nil, fmt.Errorf("ApplyInterest: %w", domain.ErrInterestNotApplicable)
	}

	interest := acct.Balance.Mul(savingsInterestRate).Round(2)
	newBalance := acct.Balance.Add(interest)

	if err := e.store.UpdateBalance(ctx, number, newBalance); err != nil {
		return nil, fmt.Errorf("ApplyInterest: durable write: %w", err)
	}

	acct.Balance = newBalance
	e.cache.Put(acct)
	e.appendEntry(ctx, domain.OpInterest, interest, number, "Interest applied")

	logging.FromContext(ctx).Info("interest applied",
		"account", number,
		"interest", interest.StringFixed(2),
		"balance", newBalance.StringFixed(2),
	)
	return &acct, nil
}

// ChangeAccountType sets a new account class. The type is free-form but
// must not be blank.
func (e *Engine) ChangeAccountType(ctx context.Context, number string, newType domain.AccountType) (*domain.Account, error) {
	if strings.TrimSpace(string(newType)) == "" {
		return nil, fmt.Errorf("ChangeAccountType: %w", domain.ErrInvalidAccountType)
	}

	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("ChangeAccountType: %w", domain.ErrNotFound)
	}

	if err := e.store.UpdateType(ctx, number, newType); err != nil {
		return nil, fmt.Errorf("ChangeAccountType: durable write: %w", err)
	}

	acct.AccountType = newType
	e.cache.Put(acct)
	e.appendEntry(ctx, domain.OpChangeAccountType, decimal.Zero, number,
		fmt.Sprintf("Account type changed to %s", newType))

	logging.FromContext(ctx).Info("account type changed", "account", number, "type", newType)
	return &acct, nil
}

// GrantAdmin sets the privilege flag. The engine performs no
// authorization check; gating who may call this belongs to the caller.
func (e *Engine) GrantAdmin(ctx context.Context, number string) (*domain.Account, error) {
	return e.setAdmin(ctx, number, true, domain.OpGrantAdmin, "Admin privileges granted")
}

// RevokeAdmin clears the privilege flag.
func (e *Engine) RevokeAdmin(ctx context.Context, number string) (*domain.Account, error) {
	return e.setAdmin(ctx, number, false, domain.OpRevokeAdmin, "Admin privileges revoked")
}

func (e *Engine) setAdmin(ctx context.Context, number string, isAdmin bool, kind domain.OperationKind, description string) (*domain.Account, error) {
	unlock := e.locks.lock(number)
	defer unlock()

	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("setAdmin: %w", domain.ErrNotFound)
	}

	if err := e.store.UpdateAdmin(ctx, number, isAdmin); err != nil {
		return nil, fmt.Errorf("setAdmin: durable write: %w", err)
	}

	acct.IsAdmin = isAdmin
	e.cache.Put(acct)
	e.appendEntry(ctx, kind, decimal.Zero, number, description)

	logging.FromContext(ctx).Info("admin flag updated", "account", number, "is_admin", isAdmin)
	return &acct, nil
}

// Register creates an account with a freshly generated number and a
// zero balance. A collision on the generated number is retried a
// bounded number of times. No ledger entry is written for creation.
//
// The admin flag can only be set while no admin account exists yet.
// Once the system is bootstrapped, privileges are granted through
// GrantAdmin by an existing admin.
func (e *Engine) Register(ctx context.Context, holderName, pin string, accountType domain.AccountType, isAdmin bool) (*domain.Account, error) {
	if strings.TrimSpace(string(accountType)) == "" {
		return nil, fmt.Errorf("Register: %w", domain.ErrInvalidAccountType)
	}
	if isAdmin && e.cache.AdminExists() {
		return nil, fmt.Errorf("Register: %w", domain.ErrAdminExists)
	}

	for range registerAttempts {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("Register: %w", err)
		}

		acct := &domain.Account{
			HolderName:    holderName,
			AccountNumber: number,
			PIN:           pin,
			AccountType:   accountType,
			Balance:       decimal.Zero,
			IsAdmin:       isAdmin,
			CreatedAt:     time.Now().UTC(),
		}

		err = e.store.Create(ctx, acct)
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("Register: %w", err)
		}

		e.cache.Put(*acct)
		logging.FromContext(ctx).Info("account registered", "account", number, "type", accountType)
		return acct, nil
	}

	return nil, fmt.Errorf("Register: could not allocate an unused account number after %d attempts", registerAttempts)
}

// Account returns the cached snapshot for an account.
func (e *Engine) Account(number string) (*domain.Account, error) {
	acct, ok := e.cache.Get(number)
	if !ok {
		return nil, fmt.Errorf("Account: %w", domain.ErrNotFound)
	}
	return &acct, nil
}

// AccountNumbers lists every account currently known to the cache.
func (e *Engine) AccountNumbers() []string {
	return e.cache.Numbers()
}

// History returns the account's ledger entries in store order. The
// ledger is re-read on every call; no history is cached.
func (e *Engine) History(ctx context.Context, number string) ([]domain.LedgerEntry, error) {
	if _, ok := e.cache.Get(number); !ok {
		return nil, fmt.Errorf("History: %w", domain.ErrNotFound)
	}

	entries, err := e.ledger.GetByAccount(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	return entries, nil
}

// appendEntry records the audit entry for an already-committed
// mutation. An append failure is logged and swallowed: the balance
// change has been acknowledged by the store and must not be reported as
// failed.
func (e *Engine) appendEntry(ctx context.Context, kind domain.OperationKind, amount decimal.Decimal, number, description string) {
	entry := &domain.LedgerEntry{
		RecordedAt:    domain.Timestamp(time.Now()),
		Kind:          kind,
		Amount:        amount,
		AccountNumber: number,
		Description:   description,
	}

	log := logging.FromContext(ctx)
	if err := e.ledger.Append(ctx, entry); err != nil {
		log.Error("ledger append failed for committed operation",
			"kind", kind, "account", number, "error", err)
		return
	}

	if e.publisher != nil {
		if err := e.publisher.PublishEntry(ctx, entry); err != nil {
			log.Warn("ledger event publish failed",
				"kind", kind, "account", number, "error", err)
		}
	}
}

func generateAccountNumber() (string, error) {
	digits := make([]byte, accountNumberLen)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
