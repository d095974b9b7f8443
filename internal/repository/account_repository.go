package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, number, name, document, password_hash, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		account.ID,
		account.Number,
		account.Name,
		account.Document,
		account.PasswordHash,
		account.Active,
		account.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			switch pqErr.Constraint {
			case "accounts_document_key":
				r.logger.Warn("Duplicate document on account creation", "account_id", account.ID)
				return errors.ErrDuplicateDocument
			case "accounts_number_key":
				r.logger.Warn("Account number collision", "number", account.Number)
				return errors.ErrAllocationExhausted
			}
		}
		r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to create account").WithDetails(err.Error())
	}

	r.logger.Info("Account created", "account_id", account.ID, "number", account.Number)
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, number, name, document, password_hash, active, created_at
		FROM accounts WHERE id = $1
	`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, number, name, document, password_hash, active, created_at
		FROM accounts WHERE id = $1 FOR UPDATE
	`

	return r.scanAccount(ctx, query, id)
}

func (r *accountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	query := `
		SELECT id, number, name, document, password_hash, active, created_at
		FROM accounts WHERE number = $1
	`

	return r.scanAccount(ctx, query, number)
}

func (r *accountRepository) GetByDocument(ctx context.Context, document string) (*domain.Account, error) {
	query := `
		SELECT id, number, name, document, password_hash, active, created_at
		FROM accounts WHERE document = $1
	`

	return r.scanAccount(ctx, query, document)
}

func (r *accountRepository) scanAccount(ctx context.Context, query string, arg interface{}) (*domain.Account, error) {
	var account domain.Account

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Number,
		&account.Name,
		&account.Document,
		&account.PasswordHash,
		&account.Active,
		&account.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get account").WithDetails(err.Error())
	}

	return &account, nil
}

func (r *accountRepository) NumberExists(ctx context.Context, number int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check account number", "number", number, "error", err)
		return false, errors.NewAppError(errors.StorageError, "failed to check account number").WithDetails(err.Error())
	}
	return exists, nil
}

// Deactivate is one-way: there is no query that sets active back to true.
func (r *accountRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to deactivate account", "account_id", id, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to deactivate account").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		return errors.ErrAccountNotFound
	}

	r.logger.Info("Account deactivated", "account_id", id)
	return nil
}
