package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// Store provides a unified interface for all repository operations with
// transaction support.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

func (s *Store) Accounts() domain.AccountRepository {
	return NewAccountRepository(s.executor, s.logger)
}

func (s *Store) Movements() domain.MovementRepository {
	return NewMovementRepository(s.executor, s.logger)
}

func (s *Store) Transfers() domain.TransferRepository {
	return NewTransferRepository(s.executor, s.logger)
}

// WithTransaction executes fn within a database transaction. The nested Store
// hands the same *sql.Tx to every repository it creates.
func (s *Store) WithTransaction(ctx context.Context, fn func(*Store) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewAppError(errors.StorageError, "failed to commit transaction").WithDetails(err.Error())
	}
	return nil
}
