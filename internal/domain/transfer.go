package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type TransferStatus string

const (
	TransferProcessed TransferStatus = "processed"
	TransferReversed  TransferStatus = "reversed"
	TransferFailed    TransferStatus = "failed"
)

// Transfer records one attempt to move funds between two ledger accounts.
// It is only ever persisted in a terminal status: processed when both legs
// succeeded, reversed when the credit leg failed and the compensating credit
// landed. A failed debit leg leaves no record at all.
type Transfer struct {
	ID                   uuid.UUID       `json:"transfer_id"`
	RequestID            string          `json:"request_id"`
	SourceAccountID      uuid.UUID       `json:"source_account_id"`
	DestinationAccountID uuid.UUID       `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	Status               TransferStatus  `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
}

func NewTransfer(requestID string, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (*Transfer, error) {
	if requestID == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "request id must not be empty")
	}
	if sourceID == destinationID {
		return nil, errors.ErrSameAccount
	}
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	return &Transfer{
		ID:                   uuid.New(),
		RequestID:            requestID,
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Status:               TransferProcessed,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

func (t *Transfer) MarkReversed() {
	t.Status = TransferReversed
}

type TransferRepository interface {
	// Create reports a unique violation on request_id as ErrDuplicateTransfer.
	Create(ctx context.Context, transfer *Transfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	GetByRequestID(ctx context.Context, requestID string) (*Transfer, error)
}
