package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/errors"
)

func TestNewTransfer(t *testing.T) {
	source := uuid.New()
	destination := uuid.New()
	amount := decimal.RequireFromString("50.00")

	transfer, err := NewTransfer("req-1", source, destination, amount)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, transfer.ID)
	assert.Equal(t, "req-1", transfer.RequestID)
	assert.Equal(t, TransferProcessed, transfer.Status)

	_, err = NewTransfer("", source, destination, amount)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, err.(*errors.AppError).Code)

	_, err = NewTransfer("req-2", source, source, amount)
	assert.ErrorIs(t, err, errors.ErrSameAccount)

	_, err = NewTransfer("req-3", source, destination, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = NewTransfer("req-4", source, destination, decimal.RequireFromString("-10"))
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)
}

func TestTransferMarkReversed(t *testing.T) {
	transfer, err := NewTransfer("req-1", uuid.New(), uuid.New(), decimal.RequireFromString("1"))
	require.NoError(t, err)

	transfer.MarkReversed()
	assert.Equal(t, TransferReversed, transfer.Status)
}
