package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/errors"
)

func TestParseMovementKind(t *testing.T) {
	tests := []struct {
		input   string
		want    MovementKind
		wantErr bool
	}{
		{"C", KindCredit, false},
		{"c", KindCredit, false},
		{"credit", KindCredit, false},
		{"CREDIT", KindCredit, false},
		{"D", KindDebit, false},
		{"d", KindDebit, false},
		{"debit", KindDebit, false},
		{" d ", KindDebit, false},
		{"", "", true},
		{"x", "", true},
		{"creditt", "", true},
	}

	for _, tt := range tests {
		kind, err := ParseMovementKind(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, errors.ErrInvalidKind, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, kind, "input %q", tt.input)
	}
}

func TestNewMovement(t *testing.T) {
	accountID := uuid.New()

	movement, err := NewMovement(accountID, KindCredit, decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, movement.ID)
	assert.Equal(t, accountID, movement.AccountID)
	assert.True(t, movement.IsCredit())
	assert.False(t, movement.IsDebit())
	assert.False(t, movement.CreatedAt.IsZero())

	_, err = NewMovement(accountID, KindDebit, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = NewMovement(accountID, KindDebit, decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = NewMovement(accountID, MovementKind("X"), decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, errors.ErrInvalidKind)
}

func TestMovementSigned(t *testing.T) {
	accountID := uuid.New()
	amount := decimal.RequireFromString("25.00")

	credit, err := NewMovement(accountID, KindCredit, amount)
	require.NoError(t, err)
	assert.True(t, credit.Signed().Equal(amount))

	debit, err := NewMovement(accountID, KindDebit, amount)
	require.NoError(t, err)
	assert.True(t, debit.Signed().Equal(amount.Neg()))
}
