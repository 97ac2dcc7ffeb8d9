package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidebank/corebank/internal/auth"
	"github.com/tidebank/corebank/internal/bank"
)

type AuthHandler struct {
	engine    *bank.Engine
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthHandler(engine *bank.Engine, jwtSecret string, jwtExpiry time.Duration) *AuthHandler {
	return &AuthHandler{
		engine:    engine,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

type loginRequest struct {
	AccountNumber string `json:"account_number"`
	PIN           string `json:"pin"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountNumber == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "required"})
	}
	if r.PIN == "" {
		errs = append(errs, FieldError{Field: "pin", Message: "required"})
	}
	return errs
}

type loginResponse struct {
	Token   string     `json:"token"`
	Account accountDTO `json:"account"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	acct, err := h.engine.Authenticate(r.Context(), req.AccountNumber, req.PIN)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(acct.AccountNumber, acct.IsAdmin, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token:   token,
		Account: toAccountDTO(acct),
	})
}
