package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tidebank/corebank/internal/bank"
	"github.com/tidebank/corebank/internal/domain"
)

// AdminHandler exposes the privileged operations. Routes using it are
// wrapped in the RequireAdmin middleware; the engine itself does not
// check authorization.
type AdminHandler struct {
	engine *bank.Engine
}

func NewAdminHandler(engine *bank.Engine) *AdminHandler {
	return &AdminHandler{engine: engine}
}

func (h *AdminHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	acct, err := h.engine.ApplyInterest(r.Context(), r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

type changeTypeRequest struct {
	AccountType string `json:"account_type"`
}

func (h *AdminHandler) ChangeAccountType(w http.ResponseWriter, r *http.Request) {
	var req changeTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	acct, err := h.engine.ChangeAccountType(r.Context(), r.PathValue("number"), domain.AccountType(req.AccountType))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

func (h *AdminHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	acct, err := h.engine.GrantAdmin(r.Context(), r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}

func (h *AdminHandler) RevokeAdmin(w http.ResponseWriter, r *http.Request) {
	acct, err := h.engine.RevokeAdmin(r.Context(), r.PathValue("number"))
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toAccountDTO(acct))
}
