package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/domain"
	"github.com/tidebank/corebank/internal/handler"
	"github.com/tidebank/corebank/internal/repository"
)

func newEngine(t *testing.T, accounts ...domain.Account) *bank.Engine {
	t.Helper()

	store := repository.NewMemoryAccountStore()
	for i := range accounts {
		require.NoError(t, store.Create(context.Background(), &accounts[i]))
	}

	cache := bank.NewCache()
	require.NoError(t, cache.Load(context.Background(), store))

	return bank.NewEngine(store, repository.NewMemoryLedgerStore(), cache, nil)
}

func testAccount(number, pin, balance string) domain.Account {
	return domain.Account{
		HolderName:    "Holder",
		AccountNumber: number,
		PIN:           pin,
		AccountType:   domain.AccountTypeChecking,
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     time.Now().UTC(),
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLogin(t *testing.T) {
	engine := newEngine(t, testAccount("123456", "1111", "50.00"))
	h := handler.NewAuthHandler(engine, "secret", time.Hour)

	t.Run("success issues a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"account_number":"123456","pin":"1111"}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.NotEmpty(t, data["token"])
	})

	t.Run("wrong pin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"account_number":"123456","pin":"0000"}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func newMux(h *handler.AccountHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/accounts/{number}/deposit", h.Deposit)
	mux.HandleFunc("POST /api/v1/accounts/{number}/withdraw", h.Withdraw)
	mux.HandleFunc("GET /api/v1/accounts/{number}/transactions", h.History)
	return mux
}

func TestDepositEndpoint(t *testing.T) {
	engine := newEngine(t, testAccount("123456", "1111", "100.00"))
	mux := newMux(handler.NewAccountHandler(engine))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/123456/deposit",
		strings.NewReader(`{"amount":"25.50"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "125.50", data["balance"])
}

func TestDepositEndpoint_InvalidAmount(t *testing.T) {
	engine := newEngine(t, testAccount("123456", "1111", "100.00"))
	mux := newMux(handler.NewAccountHandler(engine))

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "not a number", body: `{"amount":"abc"}`, wantCode: http.StatusBadRequest},
		{name: "missing amount", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "zero", body: `{"amount":"0"}`, wantCode: http.StatusBadRequest},
		{name: "sub-cent", body: `{"amount":"0.005"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/123456/deposit",
				strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRegisterEndpoint_AdminAlreadyBootstrapped(t *testing.T) {
	admin := testAccount("123456", "1111", "0.00")
	admin.IsAdmin = true
	engine := newEngine(t, admin)

	h := handler.NewAccountHandler(engine)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts",
		strings.NewReader(`{"holder_name":"New Holder","pin":"2222","account_type":"checking","is_admin":true}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "ADMIN_ALREADY_EXISTS", resp.Error.Code)
}

func TestWithdrawEndpoint_InsufficientFunds(t *testing.T) {
	engine := newEngine(t, testAccount("123456", "1111", "10.00"))
	mux := newMux(handler.NewAccountHandler(engine))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/123456/withdraw",
		strings.NewReader(`{"amount":"10.01"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Error.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	engine := newEngine(t, testAccount("123456", "1111", "0.00"))
	_, err := engine.Deposit(context.Background(), "123456", decimal.RequireFromString("5.00"))
	require.NoError(t, err)

	mux := newMux(handler.NewAccountHandler(engine))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/123456/transactions", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	entries := resp.Data.([]any)
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]any)
	assert.Equal(t, "Deposit", entry["kind"])
	assert.Equal(t, "5.00", entry["amount"])
}

func TestHistoryEndpoint_UnknownAccount(t *testing.T) {
	engine := newEngine(t)
	mux := newMux(handler.NewAccountHandler(engine))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/000000/transactions", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
