package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/repository"
)

// MovementService is the single authority for "did this request already
// happen". Every ledger write goes through Apply.
type MovementService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewMovementService(store *repository.Store, logger *slog.Logger) *MovementService {
	return &MovementService{
		store:  store,
		logger: logger,
	}
}

// ApplyResult carries the movement and the balance derived from the log after
// (or, on a replay, at) the time of the call.
type ApplyResult struct {
	Movement domain.Movement
	Balance  decimal.Decimal
	// Replayed is set when the request id had already been processed and the
	// previously produced movement is returned instead of a new one.
	Replayed bool
}

// Apply validates and appends a movement. With a non-empty requestID the
// operation is idempotent: resubmissions return the original movement and the
// current balance. The idempotency check here is only a fast path; the
// storage-level unique constraint decides races between concurrent
// submissions of the same request id.
func (s *MovementService) Apply(ctx context.Context, accountID uuid.UUID, requestID string, kind domain.MovementKind, amount decimal.Decimal) (*ApplyResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if kind != domain.KindCredit && kind != domain.KindDebit {
		return nil, errors.ErrInvalidKind
	}

	if requestID != "" {
		replay, err := s.replayResult(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	var result *ApplyResult
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		// The row lock serializes writers on this account, so two concurrent
		// debits cannot both read a stale derived balance and jointly
		// overdraw the account.
		account, err := tx.Accounts().GetByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !account.Active {
			return errors.ErrInactiveAccount
		}

		movements := tx.Movements()

		if kind == domain.KindDebit {
			balance, err := movements.Balance(ctx, accountID)
			if err != nil {
				return err
			}
			if balance.LessThan(amount) {
				return errors.ErrInsufficientBalance
			}
		}

		movement, err := domain.NewMovement(accountID, kind, amount)
		if err != nil {
			return err
		}
		if err := movements.Append(ctx, movement, requestID); err != nil {
			return err
		}

		balance, err := movements.Balance(ctx, accountID)
		if err != nil {
			return err
		}

		result = &ApplyResult{Movement: *movement, Balance: balance}
		return nil
	})

	if err != nil {
		// Lost a race against an identical request: hand back its outcome.
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.DuplicateRequest {
			replay, replayErr := s.replayResult(ctx, requestID)
			if replayErr == nil && replay != nil {
				return replay, nil
			}
		}
		return nil, err
	}

	return result, nil
}

func (s *MovementService) replayResult(ctx context.Context, requestID string) (*ApplyResult, error) {
	movement, err := s.store.Movements().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, nil
	}

	balance, err := s.store.Movements().Balance(ctx, movement.AccountID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Replaying previously processed request",
		"request_id", requestID,
		"movement_id", movement.ID)
	return &ApplyResult{Movement: *movement, Balance: balance, Replayed: true}, nil
}

// Balance derives the current balance for an active statement or balance view.
func (s *MovementService) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.store.Accounts().GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	return s.store.Movements().Balance(ctx, accountID)
}

// Statement lists an account's movements most-recent-first.
func (s *MovementService) Statement(ctx context.Context, accountID uuid.UUID) ([]domain.Movement, error) {
	if _, err := s.store.Accounts().GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.Movements().ListByAccount(ctx, accountID)
}
