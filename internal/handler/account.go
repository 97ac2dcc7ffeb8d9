package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/domain"
)

type AccountHandler struct {
	engine *bank.Engine
}

func NewAccountHandler(engine *bank.Engine) *AccountHandler {
	return &AccountHandler{engine: engine}
}

type accountDTO struct {
	AccountNumber string `json:"account_number"`
	HolderName    string `json:"holder_name"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	IsAdmin       bool   `json:"is_admin"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountNumber: a.AccountNumber,
		HolderName:    a.HolderName,
		AccountType:   string(a.AccountType),
		Balance:       a.Balance.StringFixed(2),
		IsAdmin:       a.IsAdmin,
	}
}

type entryDTO struct {
	RecordedAt  string `json:"recorded_at"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type registerRequest struct {
	HolderName  string `json:"holder_name"`
	PIN         string `json:"pin"`
	AccountType string `json:"account_type"`
	IsAdmin     bool   `json:"is_admin"`
}

func (r registerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.HolderName == "" {
		errs = append(errs, FieldError{Field: "holder_name", Message: "required"})
	}
	if r.PIN == "" {
		errs = append(errs, FieldError{Field: "pin", Message: "required"})
	}
	if r.AccountType == "" {
		errs = append(errs, FieldError{Field: "account_type", Message: "required"})
	}
	return errs
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	acct, err := h.engine.Register(r.Context(), req.HolderName, req.PIN, domain.AccountType(req.AccountType), req.IsAdmin)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(acct))
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	acct, err := h.engine.Account(r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

type amountRequest struct {
	Amount string `json:"amount"`
}

// parseAmount converts the textual amount to an exact decimal. The
// amount never passes through a binary float on the way in.
func parseAmount(raw string) (decimal.Decimal, []FieldError) {
	if raw == "" {
		return decimal.Zero, []FieldError{{Field: "amount", Message: "required"}}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, []FieldError{{Field: "amount", Message: "must be a decimal number"}}
	}
	return amount, nil
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, fields := parseAmount(req.Amount)
	if fields != nil {
		RespondValidationError(w, fields)
		return
	}

	acct, err := h.engine.Deposit(r.Context(), r.PathValue("number"), amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	amount, fields := parseAmount(req.Amount)
	if fields != nil {
		RespondValidationError(w, fields)
		return
	}

	acct, err := h.engine.Withdraw(r.Context(), r.PathValue("number"), amount)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.History(r.Context(), r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]entryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, entryDTO{
			RecordedAt:  e.RecordedAt,
			Kind:        string(e.Kind),
			Amount:      e.Amount.StringFixed(2),
			Description: e.Description,
		})
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
