package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

type transferRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransferRepository(db SQLExecutor, logger *slog.Logger) domain.TransferRepository {
	return &transferRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	query := `
		INSERT INTO transfers
		(id, request_id, source_account_id, destination_account_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		transfer.ID,
		transfer.RequestID,
		transfer.SourceAccountID,
		transfer.DestinationAccountID,
		transfer.Amount.String(),
		string(transfer.Status),
		transfer.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("Duplicate transfer request id", "request_id", transfer.RequestID)
			return errors.ErrDuplicateTransfer
		}
		r.logger.Error("Failed to create transfer",
			"request_id", transfer.RequestID,
			"source_account_id", transfer.SourceAccountID,
			"destination_account_id", transfer.DestinationAccountID,
			"error", err)
		return errors.NewAppError(errors.StorageError, "failed to create transfer").WithDetails(err.Error())
	}

	r.logger.Info("Transfer recorded",
		"transfer_id", transfer.ID,
		"request_id", transfer.RequestID,
		"status", transfer.Status)
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `
		SELECT id, request_id, source_account_id, destination_account_id, amount, status, created_at
		FROM transfers WHERE id = $1
	`

	return r.scanTransfer(ctx, query, id)
}

func (r *transferRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.Transfer, error) {
	query := `
		SELECT id, request_id, source_account_id, destination_account_id, amount, status, created_at
		FROM transfers WHERE request_id = $1
	`

	return r.scanTransfer(ctx, query, requestID)
}

func (r *transferRepository) scanTransfer(ctx context.Context, query string, arg interface{}) (*domain.Transfer, error) {
	var transfer domain.Transfer
	var amountStr string
	var status string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&transfer.ID,
		&transfer.RequestID,
		&transfer.SourceAccountID,
		&transfer.DestinationAccountID,
		&amountStr,
		&status,
		&transfer.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transfer", "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get transfer").WithDetails(err.Error())
	}

	transfer.Status = domain.TransferStatus(status)
	transfer.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}

	return &transfer, nil
}
