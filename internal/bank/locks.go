package bank

import "sync"

// accountLocks serializes mutations per account. Foreground callers and
// the accrual scheduler go through the same lock, so no path mutates an
// account without holding it. Locks are created on first use and kept
// for the life of the process; the set of accounts is small and never
// shrinks.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *accountLocks) lock(number string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[number]
	if !ok {
		m = &sync.Mutex{}
		l.locks[number] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
