package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// Validation happens before any storage access, so these paths run with no
// database at all. Everything that touches the store is covered by the
// integration suite at the repository root.
func TestApplyValidatesBeforeStorage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewMovementService(nil, logger)
	ctx := context.Background()
	accountID := uuid.New()

	_, err := svc.Apply(ctx, accountID, "r1", domain.KindDebit, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = svc.Apply(ctx, accountID, "r1", domain.KindCredit, decimal.RequireFromString("-3"))
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = svc.Apply(ctx, accountID, "r1", domain.MovementKind("X"), decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, errors.ErrInvalidKind)

	_, err = svc.Apply(ctx, accountID, "r1", domain.MovementKind(""), decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, errors.ErrInvalidKind)
}

func TestLegRequestIDsAreDistinctKeyspaces(t *testing.T) {
	// The saga's derived leg ids must never collide with each other or with
	// the transfer's own request id.
	ids := []string{
		debitRequestID("t1"),
		creditRequestID("t1"),
		reversalRequestID("t1"),
		"t1",
	}
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
	assert.Equal(t, "debit-t1", ids[0])
	assert.Equal(t, "credit-t1", ids[1])
	assert.Equal(t, "reversal-t1", ids[2])
}
