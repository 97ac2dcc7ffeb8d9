package bank_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/domain"
)

func TestSweepCreditsOnlyEligibleAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		account("100001", "saving", "100.00"),
		account("100002", "saving", "0.00"),
		account("100003", "checking", "500.00"),
	)

	s := bank.NewAccrualScheduler(f.engine, time.Hour)
	s.Sweep(ctx)

	saving, err := f.engine.Account("100001")
	require.NoError(t, err)
	assert.Equal(t, "105.00", saving.Balance.StringFixed(2))

	emptySaving, err := f.engine.Account("100002")
	require.NoError(t, err)
	assert.Equal(t, "0.00", emptySaving.Balance.StringFixed(2))

	checking, err := f.engine.Account("100003")
	require.NoError(t, err)
	assert.Equal(t, "500.00", checking.Balance.StringFixed(2))

	assert.Len(t, f.entries(t, "100001"), 1)
	assert.Empty(t, f.entries(t, "100002"))
	assert.Empty(t, f.entries(t, "100003"))
}

func TestSweepIsRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account("100004", "saving", "100.00"))

	s := bank.NewAccrualScheduler(f.engine, time.Hour)
	s.Sweep(ctx)
	s.Sweep(ctx)

	acct, err := f.engine.Account("100004")
	require.NoError(t, err)
	// 100.00 -> 105.00 -> 110.25, compounding per sweep
	assert.Equal(t, "110.25", acct.Balance.StringFixed(2))
	assert.Len(t, f.entries(t, "100004"), 2)
}

func TestSchedulerStartRunsImmediateSweepAndStops(t *testing.T) {
	f := newFixture(t, account("100005", "saving", "100.00"))

	s := bank.NewAccrualScheduler(f.engine, time.Hour)
	s.Start()

	require.Eventually(t, func() bool {
		acct, err := f.engine.Account("100005")
		return err == nil && acct.Balance.Equal(decimal.RequireFromString("105.00"))
	}, 2*time.Second, 10*time.Millisecond, "first sweep runs immediately on Start")

	s.Stop()
	// Stop twice must not panic.
	s.Stop()

	assert.Len(t, f.entries(t, "100005"), 1)
}

func TestSweepInterleavesWithForegroundOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, account("100006", "saving", "100.00"))

	s := bank.NewAccrualScheduler(f.engine, time.Hour)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Sweep(ctx)
	}()

	one := decimal.RequireFromString("1.00")
	for range 50 {
		_, err := f.engine.Deposit(ctx, "100006", one)
		require.NoError(t, err)
	}
	<-done

	acct, err := f.engine.Account("100006")
	require.NoError(t, err)

	stored := f.storedBalance(t, "100006")
	assert.True(t, stored.Equal(acct.Balance), "cache and store agree after concurrent sweep")

	var interestEntries int
	for _, e := range f.entries(t, "100006") {
		if e.Kind == domain.OpInterest {
			interestEntries++
		}
	}
	assert.Equal(t, 1, interestEntries, "one sweep writes one Interest entry")
}
