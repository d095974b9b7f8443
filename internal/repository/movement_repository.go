package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

type movementRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewMovementRepository(db SQLExecutor, logger *slog.Logger) domain.MovementRepository {
	return &movementRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts the movement and, when requestID is non-empty, its
// idempotency record. Callers run this inside Store.WithTransaction so both
// rows commit or roll back together; the primary key on request_id is what
// actually defends against two concurrent submissions of the same request.
func (r *movementRepository) Append(ctx context.Context, movement *domain.Movement, requestID string) error {
	query := `
		INSERT INTO movements (id, account_id, created_at, kind, amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		movement.ID,
		movement.AccountID,
		movement.CreatedAt,
		string(movement.Kind),
		movement.Amount.String(),
	)
	if err != nil {
		r.logger.Error("Failed to append movement",
			"account_id", movement.AccountID,
			"kind", movement.Kind,
			"error", err)
		return errors.NewAppError(errors.StorageError, "failed to append movement").WithDetails(err.Error())
	}

	if requestID != "" {
		query = `
			INSERT INTO idempotency_records (request_id, movement_id, created_at)
			VALUES ($1, $2, $3)
		`

		_, err = r.db.ExecContext(ctx, query, requestID, movement.ID, time.Now().UTC())
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate request id on append", "request_id", requestID)
				return errors.ErrDuplicateRequest
			}
			r.logger.Error("Failed to record idempotency key", "request_id", requestID, "error", err)
			return errors.NewAppError(errors.StorageError, "failed to record idempotency key").WithDetails(err.Error())
		}
	}

	r.logger.Info("Movement appended",
		"movement_id", movement.ID,
		"account_id", movement.AccountID,
		"kind", movement.Kind,
		"amount", movement.Amount)
	return nil
}

func (r *movementRepository) GetByRequestID(ctx context.Context, requestID string) (*domain.Movement, error) {
	query := `
		SELECT m.id, m.account_id, m.created_at, m.kind, m.amount
		FROM movements m
		INNER JOIN idempotency_records i ON i.movement_id = m.id
		WHERE i.request_id = $1
	`

	movement, err := r.scanMovement(r.db.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get movement by request id", "request_id", requestID, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get movement").WithDetails(err.Error())
	}
	return movement, nil
}

// Balance derives the account balance from the movement log. COALESCE covers
// accounts with no movements yet.
func (r *movementRepository) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'C' THEN amount ELSE -amount END), 0)
		FROM movements
		WHERE account_id = $1
	`

	var balanceStr string
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balanceStr); err != nil {
		r.logger.Error("Failed to derive balance", "account_id", accountID, "error", err)
		return decimal.Zero, errors.NewAppError(errors.StorageError, "failed to derive balance").WithDetails(err.Error())
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}
	return balance, nil
}

func (r *movementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error) {
	query := `
		SELECT id, account_id, created_at, kind, amount
		FROM movements
		WHERE account_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list movements", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list movements").WithDetails(err.Error())
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		movement, err := r.scanMovement(rows)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to scan movement").WithDetails(err.Error())
		}
		movements = append(movements, *movement)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to list movements").WithDetails(err.Error())
	}

	return movements, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *movementRepository) scanMovement(row rowScanner) (*domain.Movement, error) {
	var movement domain.Movement
	var kind string
	var amountStr string

	err := row.Scan(
		&movement.ID,
		&movement.AccountID,
		&movement.CreatedAt,
		&kind,
		&amountStr,
	)
	if err != nil {
		return nil, err
	}

	movement.Kind = domain.MovementKind(kind)
	movement.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return nil, err
	}

	return &movement, nil
}
