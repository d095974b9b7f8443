package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/errors"
)

type MovementKind string

const (
	KindCredit MovementKind = "C"
	KindDebit  MovementKind = "D"
)

// ParseMovementKind accepts the single-character wire form ("c"/"d") as well
// as the spelled-out kind, case-insensitively.
func ParseMovementKind(s string) (MovementKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C", "CREDIT":
		return KindCredit, nil
	case "D", "DEBIT":
		return KindDebit, nil
	default:
		return "", errors.ErrInvalidKind
	}
}

// Movement is an immutable credit or debit fact. Balance is always derived
// from the movement log; there is no stored balance anywhere.
type Movement struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	CreatedAt time.Time       `json:"created_at"`
	Kind      MovementKind    `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewMovement validates at the creation boundary. Rehydration from storage
// fills the struct directly and does not re-validate.
func NewMovement(accountID uuid.UUID, kind MovementKind, amount decimal.Decimal) (*Movement, error) {
	if kind != KindCredit && kind != KindDebit {
		return nil, errors.ErrInvalidKind
	}
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	return &Movement{
		ID:        uuid.New(),
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
		Kind:      kind,
		Amount:    amount,
	}, nil
}

func (m *Movement) IsCredit() bool { return m.Kind == KindCredit }
func (m *Movement) IsDebit() bool  { return m.Kind == KindDebit }

// Signed is the movement's contribution to the account balance.
func (m *Movement) Signed() decimal.Decimal {
	if m.IsDebit() {
		return m.Amount.Neg()
	}
	return m.Amount
}

type MovementRepository interface {
	// Append writes the movement and, when requestID is non-empty, its
	// idempotency record in one transaction. A unique violation on the
	// idempotency key is reported as ErrDuplicateRequest.
	Append(ctx context.Context, movement *Movement, requestID string) error
	GetByRequestID(ctx context.Context, requestID string) (*Movement, error)
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Movement, error)
}
