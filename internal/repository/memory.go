package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tidebank/corebank/internal/domain"
)

// MemoryAccountStore is a concurrency-safe in-memory account store with
// the same contract as AccountRepository. Useful for unit tests.
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]domain.Account)}
}

func (s *MemoryAccountStore) Get(_ context.Context, number string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (s *MemoryAccountStore) List(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func (s *MemoryAccountStore) Create(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountNumber]; exists {
		return fmt.Errorf("Create: %w", domain.ErrAlreadyExists)
	}
	s.accounts[account.AccountNumber] = *account
	return nil
}

func (s *MemoryAccountStore) UpdateBalance(_ context.Context, number string, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrNotFound)
	}
	a.Balance = balance
	s.accounts[number] = a
	return nil
}

func (s *MemoryAccountStore) UpdateType(_ context.Context, number string, accountType domain.AccountType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return fmt.Errorf("UpdateType: %w", domain.ErrNotFound)
	}
	a.AccountType = accountType
	s.accounts[number] = a
	return nil
}

func (s *MemoryAccountStore) UpdateAdmin(_ context.Context, number string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[number]
	if !ok {
		return fmt.Errorf("UpdateAdmin: %w", domain.ErrNotFound)
	}
	a.IsAdmin = isAdmin
	s.accounts[number] = a
	return nil
}

// MemoryLedgerStore is a concurrency-safe in-memory ledger with the
// same contract as LedgerRepository. Entries receive sequential IDs in
// append order.
type MemoryLedgerStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.LedgerEntry
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{nextID: 1}
}

func (s *MemoryLedgerStore) Append(_ context.Context, entry *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *MemoryLedgerStore) GetByAccount(_ context.Context, number string) ([]domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.LedgerEntry
	for _, e := range s.entries {
		if e.AccountNumber == number {
			result = append(result, e)
		}
	}
	return result, nil
}
