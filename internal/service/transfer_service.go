package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// LedgerClient is the movement call the saga makes against the ledger
// service. A non-success response surfaces as the same AppError a local
// movement failure would.
type LedgerClient interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error
	Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error
}

// TransferService coordinates the two-leg transfer saga: debit the source,
// credit the destination, compensate with a reversal credit when the credit
// leg fails. Every leg carries a request id derived from the transfer's own,
// so a crashed saga can be re-run end-to-end without double-spending.
type TransferService struct {
	transfers domain.TransferRepository
	ledger    LedgerClient
	logger    *slog.Logger
}

func NewTransferService(transfers domain.TransferRepository, ledger LedgerClient, logger *slog.Logger) *TransferService {
	return &TransferService{
		transfers: transfers,
		ledger:    ledger,
		logger:    logger,
	}
}

// Leg request ids live in the movement-level idempotency keyspace, distinct
// from the transfer-level request id they are derived from.
func debitRequestID(requestID string) string    { return "debit-" + requestID }
func creditRequestID(requestID string) string   { return "credit-" + requestID }
func reversalRequestID(requestID string) string { return "reversal-" + requestID }

func (s *TransferService) Transfer(ctx context.Context, requestID string, sourceID, destinationID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	if requestID == "" {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "request id must not be empty")
	}
	if !amount.IsPositive() {
		return uuid.Nil, errors.ErrInvalidAmount
	}
	if sourceID == destinationID {
		return uuid.Nil, errors.ErrSameAccount
	}

	existing, err := s.transfers.GetByRequestID(ctx, requestID)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		s.logger.Info("Returning existing transfer for request id",
			"request_id", requestID,
			"transfer_id", existing.ID)
		return existing.ID, nil
	}

	// Debit leg. On failure nothing has been persisted here and the derived
	// request id keeps a retried debit idempotent, so the caller may simply
	// retry with the same request id.
	if err := s.ledger.Debit(ctx, sourceID, amount, debitRequestID(requestID)); err != nil {
		s.logger.Warn("Debit leg failed",
			"request_id", requestID,
			"source_account_id", sourceID,
			"error", err)
		return uuid.Nil, err
	}

	// Credit leg.
	creditErr := s.ledger.Credit(ctx, destinationID, amount, creditRequestID(requestID))
	if creditErr == nil {
		transfer, err := domain.NewTransfer(requestID, sourceID, destinationID, amount)
		if err != nil {
			return uuid.Nil, err
		}
		if err := s.recordTransfer(ctx, transfer); err != nil {
			return uuid.Nil, err
		}
		s.logger.Info("Transfer processed",
			"transfer_id", transfer.ID,
			"request_id", requestID)
		return transfer.ID, nil
	}

	// Compensation: credit the amount back to the source. If this also fails
	// the money is debited but neither credited nor reversed; that state is
	// escalated, never swallowed.
	if err := s.ledger.Credit(ctx, sourceID, amount, reversalRequestID(requestID)); err != nil {
		s.logger.Error("COMPENSATION FAILED: ledger requires manual reconciliation",
			"request_id", requestID,
			"source_account_id", sourceID,
			"destination_account_id", destinationID,
			"amount", amount,
			"debit_request_id", debitRequestID(requestID),
			"credit_request_id", creditRequestID(requestID),
			"reversal_request_id", reversalRequestID(requestID),
			"credit_error", creditErr,
			"reversal_error", err)
		return uuid.Nil, errors.NewAppError(errors.CompensationFailed,
			"transfer reversal failed; manual reconciliation required").WithDetails(err.Error())
	}

	transfer, err := domain.NewTransfer(requestID, sourceID, destinationID, amount)
	if err != nil {
		return uuid.Nil, err
	}
	transfer.MarkReversed()
	if err := s.recordTransfer(ctx, transfer); err != nil {
		s.logger.Error("Failed to record reversed transfer",
			"request_id", requestID,
			"error", err)
	}

	s.logger.Warn("Transfer reversed",
		"transfer_id", transfer.ID,
		"request_id", requestID,
		"credit_error", creditErr)
	return uuid.Nil, creditErr
}

// recordTransfer resolves a lost creation race to the transfer that won it.
func (s *TransferService) recordTransfer(ctx context.Context, transfer *domain.Transfer) error {
	err := s.transfers.Create(ctx, transfer)
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.DuplicateTransfer {
		existing, getErr := s.transfers.GetByRequestID(ctx, transfer.RequestID)
		if getErr == nil && existing != nil {
			*transfer = *existing
			return nil
		}
	}
	return err
}

func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	transfer, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, errors.NewAppError(errors.TransferNotFound, "transfer not found")
	}
	return transfer, nil
}
