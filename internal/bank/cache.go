package bank

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tidebank/corebank/internal/domain"
)

// Cache is the in-memory mirror of the account store. It is rebuilt
// from the store at startup and updated only after a durable write has
// been acknowledged, so it never runs ahead of the store. Accounts are
// held and handed out by value; callers mutate a copy and write it back
// through Put.
type Cache struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewCache() *Cache {
	return &Cache{accounts: make(map[string]domain.Account)}
}

// Load replaces the cache contents with the full account set from the
// store. Called once at startup; a failure here is fatal to the process
// since no account data can be trusted without the store.
func (c *Cache) Load(ctx context.Context, store AccountStore) error {
	accounts, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("Load: %w", err)
	}

	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountNumber] = a
	}

	c.mu.Lock()
	c.accounts = m
	c.mu.Unlock()
	return nil
}

func (c *Cache) Get(number string) (domain.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.accounts[number]
	return a, ok
}

func (c *Cache) Put(a domain.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[a.AccountNumber] = a
}

// Numbers returns all cached account numbers in sorted order, so an
// accrual sweep visits accounts deterministically.
func (c *Cache) Numbers() []string {
	c.mu.RLock()
	numbers := make([]string, 0, len(c.accounts))
	for number := range c.accounts {
		numbers = append(numbers, number)
	}
	c.mu.RUnlock()

	sort.Strings(numbers)
	return numbers
}

// AdminExists reports whether any cached account holds the admin flag.
func (c *Cache) AdminExists() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.accounts {
		if a.IsAdmin {
			return true
		}
	}
	return false
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accounts)
}
