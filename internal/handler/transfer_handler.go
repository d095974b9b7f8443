package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/metrics"
	"bank-ledger/internal/service"
)

type TransferHandler struct {
	transfers *service.TransferService
}

func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type TransferRequest struct {
	RequestID            string `json:"request_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
}

type TransferResponse struct {
	TransferID string `json:"transfer_id"`
}

// Transfer handles POST /transfers. The source account is always the
// authenticated caller.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	sourceID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, errors.ErrInvalidCredentials)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	destinationID, err := uuid.Parse(req.DestinationAccountID)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid destination account id"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format"))
		return
	}

	transferID, err := h.transfers.Transfer(r.Context(), req.RequestID, sourceID, destinationID, amount)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			metrics.ObserveTransfer(string(appErr.Code))
		} else {
			metrics.ObserveTransfer("failed")
		}
		writeError(w, err)
		return
	}

	metrics.ObserveTransfer("processed")
	writeJSON(w, http.StatusCreated, TransferResponse{TransferID: transferID.String()})
}

type TransferDetailsResponse struct {
	TransferID           string `json:"transfer_id"`
	RequestID            string `json:"request_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	Status               string `json:"status"`
}

func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	transferID, err := uuid.Parse(mux.Vars(r)["transfer_id"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid transfer id"))
		return
	}

	transfer, err := h.transfers.GetTransfer(r.Context(), transferID)
	if err != nil {
		writeError(w, err)
		return
	}

	callerID, ok := auth.AccountIDFromContext(r.Context())
	if !ok || (callerID != transfer.SourceAccountID && callerID != transfer.DestinationAccountID) {
		writeError(w, errors.ErrForbidden)
		return
	}

	writeJSON(w, http.StatusOK, TransferDetailsResponse{
		TransferID:           transfer.ID.String(),
		RequestID:            transfer.RequestID,
		SourceAccountID:      transfer.SourceAccountID.String(),
		DestinationAccountID: transfer.DestinationAccountID.String(),
		Amount:               transfer.Amount.String(),
		Status:               string(transfer.Status),
	})
}
