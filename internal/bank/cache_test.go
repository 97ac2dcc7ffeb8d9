package bank_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/repository"
)

func TestCacheLoadMirrorsStore(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryAccountStore()

	a := account("200001", "saving", "42.00")
	b := account("200002", "checking", "0.00")
	require.NoError(t, store.Create(ctx, &a))
	require.NoError(t, store.Create(ctx, &b))

	cache := bank.NewCache()
	require.NoError(t, cache.Load(ctx, store))

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, []string{"200001", "200002"}, cache.Numbers())

	got, ok := cache.Get("200001")
	require.True(t, ok)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("42.00")))

	_, ok = cache.Get("000000")
	assert.False(t, ok)
}

func TestCacheGetReturnsACopy(t *testing.T) {
	cache := bank.NewCache()
	cache.Put(account("200003", "checking", "10.00"))

	got, ok := cache.Get("200003")
	require.True(t, ok)

	got.Balance = decimal.RequireFromString("999.00")

	unchanged, ok := cache.Get("200003")
	require.True(t, ok)
	assert.Equal(t, "10.00", unchanged.Balance.StringFixed(2),
		"mutating a returned snapshot must not leak into the cache")
}

func TestCacheLoadReplacesPreviousContents(t *testing.T) {
	ctx := context.Background()

	cache := bank.NewCache()
	cache.Put(account("200004", "checking", "1.00"))

	store := repository.NewMemoryAccountStore()
	a := account("200005", "saving", "2.00")
	require.NoError(t, store.Create(ctx, &a))

	require.NoError(t, cache.Load(ctx, store))

	_, ok := cache.Get("200004")
	assert.False(t, ok, "stale entries are dropped on reload")
	assert.Equal(t, 1, cache.Len())
}
