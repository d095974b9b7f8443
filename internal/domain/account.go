package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"bank-ledger/internal/errors"
)

// Account carries no balance: the balance is derived from the movement log.
// Number is immutable after creation and Active only ever transitions
// true -> false.
type Account struct {
	ID           uuid.UUID `json:"account_id"`
	Number       int64     `json:"number"`
	Name         string    `json:"name"`
	Document     string    `json:"document"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewAccount(number int64, name, document, passwordHash string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "name must not be empty")
	}
	if passwordHash == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "password hash must not be empty")
	}

	return &Account{
		ID:           uuid.New(),
		Number:       number,
		Name:         name,
		Document:     document,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// GetByIDForUpdate locks the account row for the rest of the enclosing
	// transaction, serializing concurrent writers on the same account.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByNumber(ctx context.Context, number int64) (*Account, error)
	GetByDocument(ctx context.Context, document string) (*Account, error)
	NumberExists(ctx context.Context, number int64) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
