package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/service"

	"github.com/shopspring/decimal"
)

type MovementHandler struct {
	movements *service.MovementService
}

func NewMovementHandler(movements *service.MovementService) *MovementHandler {
	return &MovementHandler{movements: movements}
}

type MovementRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
}

type MovementResponse struct {
	MovementID string `json:"movement_id"`
	AccountID  string `json:"account_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Balance    string `json:"balance"`
	Replayed   bool   `json:"replayed,omitempty"`
}

// Apply handles POST /accounts/{account_id}/movements. Credits may target
// any account (that is how a transfer lands funds on the destination);
// debits are restricted to the authenticated owner.
func (h *MovementHandler) Apply(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid account id"))
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	kind, err := domain.ParseMovementKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}

	if kind == domain.KindDebit {
		callerID, ok := auth.AccountIDFromContext(r.Context())
		if !ok || callerID != accountID {
			writeError(w, errors.ErrForbidden)
			return
		}
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format"))
		return
	}

	result, err := h.movements.Apply(r.Context(), accountID, req.RequestID, kind, amount)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	writeJSON(w, status, MovementResponse{
		MovementID: result.Movement.ID.String(),
		AccountID:  result.Movement.AccountID.String(),
		Kind:       string(result.Movement.Kind),
		Amount:     result.Movement.Amount.String(),
		Balance:    result.Balance.String(),
		Replayed:   result.Replayed,
	})
}
