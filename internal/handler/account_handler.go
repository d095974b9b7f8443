package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"
)

type AccountHandler struct {
	accounts  *service.AccountService
	movements *service.MovementService
}

func NewAccountHandler(accounts *service.AccountService, movements *service.MovementService) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		movements: movements,
	}
}

type CreateAccountRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Password string `json:"password"`
}

type AccountResponse struct {
	AccountID string `json:"account_id"`
	Number    int64  `json:"number"`
	Name      string `json:"name"`
	Document  string `json:"document"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.Name, req.Document, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountResponse{
		AccountID: account.ID.String(),
		Number:    account.Number,
		Name:      account.Name,
		Document:  account.Document,
	})
}

type LoginRequest struct {
	Number   int64  `json:"number,omitempty"`
	Document string `json:"document,omitempty"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	token, account, err := h.accounts.Login(r.Context(), req.Number, req.Document, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccountID: account.ID.String(),
		Token:     token,
	})
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Number    int64  `json:"number"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := authorizedAccountID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.movements.Balance(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		AccountID: account.ID.String(),
		Number:    account.Number,
		Name:      account.Name,
		Balance:   balance.String(),
	})
}

type StatementEntry struct {
	MovementID string `json:"movement_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

type StatementResponse struct {
	AccountID string           `json:"account_id"`
	Movements []StatementEntry `json:"movements"`
}

func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, err := authorizedAccountID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	movements, err := h.movements.Statement(r.Context(), accountID)
	if err != nil {
		writeError(w, err)
		return
	}

	entries := make([]StatementEntry, 0, len(movements))
	for _, m := range movements {
		entries = append(entries, StatementEntry{
			MovementID: m.ID.String(),
			Kind:       string(m.Kind),
			Amount:     m.Amount.String(),
			CreatedAt:  m.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000Z"),
		})
	}

	writeJSON(w, http.StatusOK, StatementResponse{
		AccountID: accountID.String(),
		Movements: entries,
	})
}

type DeactivateAccountRequest struct {
	Password string `json:"password"`
}

func (h *AccountHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := authorizedAccountID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req DeactivateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	if err := h.accounts.DeactivateAccount(r.Context(), accountID, req.Password); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizedAccountID parses the path account id and requires it to match the
// authenticated caller.
func authorizedAccountID(r *http.Request) (uuid.UUID, error) {
	accountID, err := uuid.Parse(mux.Vars(r)["account_id"])
	if err != nil {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "invalid account id")
	}

	callerID, ok := auth.AccountIDFromContext(r.Context())
	if !ok || callerID != accountID {
		return uuid.Nil, errors.ErrForbidden
	}
	return accountID, nil
}
