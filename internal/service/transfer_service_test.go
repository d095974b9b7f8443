package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

type fakeTransferRepo struct {
	byRequestID map[string]*domain.Transfer
	// raceWinner simulates a concurrent run committing this transfer between
	// the idempotency lookup and our insert.
	raceWinner *domain.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{byRequestID: map[string]*domain.Transfer{}}
}

func (r *fakeTransferRepo) Create(_ context.Context, transfer *domain.Transfer) error {
	if r.raceWinner != nil && r.raceWinner.RequestID == transfer.RequestID {
		copied := *r.raceWinner
		r.byRequestID[transfer.RequestID] = &copied
		r.raceWinner = nil
		return errors.ErrDuplicateTransfer
	}
	if _, ok := r.byRequestID[transfer.RequestID]; ok {
		return errors.ErrDuplicateTransfer
	}
	copied := *transfer
	r.byRequestID[transfer.RequestID] = &copied
	return nil
}

func (r *fakeTransferRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Transfer, error) {
	for _, t := range r.byRequestID {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTransferRepo) GetByRequestID(_ context.Context, requestID string) (*domain.Transfer, error) {
	if t, ok := r.byRequestID[requestID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

type ledgerCall struct {
	kind      string
	accountID uuid.UUID
	amount    decimal.Decimal
	requestID string
}

// fakeLedger scripts failures per leg request id.
type fakeLedger struct {
	calls    []ledgerCall
	failures map[string]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{failures: map[string]error{}}
}

func (l *fakeLedger) Debit(_ context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error {
	l.calls = append(l.calls, ledgerCall{"debit", accountID, amount, requestID})
	return l.failures[requestID]
}

func (l *fakeLedger) Credit(_ context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error {
	l.calls = append(l.calls, ledgerCall{"credit", accountID, amount, requestID})
	return l.failures[requestID]
}

func newTransferService(repo *fakeTransferRepo, ledger *fakeLedger) *TransferService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTransferService(repo, ledger, logger)
}

func TestTransferHappyPath(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()
	amount := decimal.RequireFromString("50.00")

	transferID, err := svc.Transfer(context.Background(), "t1", source, destination, amount)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, transferID)

	require.Len(t, ledger.calls, 2)
	assert.Equal(t, ledgerCall{"debit", source, amount, "debit-t1"}, ledger.calls[0])
	assert.Equal(t, ledgerCall{"credit", destination, amount, "credit-t1"}, ledger.calls[1])

	stored := repo.byRequestID["t1"]
	require.NotNil(t, stored)
	assert.Equal(t, domain.TransferProcessed, stored.Status)
	assert.Equal(t, transferID, stored.ID)
}

func TestTransferReplayMakesNoLedgerCalls(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()
	amount := decimal.RequireFromString("50.00")

	first, err := svc.Transfer(context.Background(), "t1", source, destination, amount)
	require.NoError(t, err)

	ledger.calls = nil
	second, err := svc.Transfer(context.Background(), "t1", source, destination, amount)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, ledger.calls, "replay must not touch the movement engine")
}

func TestTransferValidationFailsFast(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, "", source, destination, decimal.RequireFromString("1"))
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, err.(*errors.AppError).Code)

	_, err = svc.Transfer(ctx, "t1", source, destination, decimal.Zero)
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = svc.Transfer(ctx, "t1", source, destination, decimal.RequireFromString("-5"))
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)

	_, err = svc.Transfer(ctx, "t1", source, source, decimal.RequireFromString("5"))
	assert.ErrorIs(t, err, errors.ErrSameAccount)

	assert.Empty(t, ledger.calls, "validation failures must not reach the ledger")
	assert.Empty(t, repo.byRequestID, "validation failures must persist nothing")
}

func TestTransferDebitFailurePersistsNothing(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	ledger.failures["debit-t1"] = errors.ErrInsufficientBalance
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()

	_, err := svc.Transfer(context.Background(), "t1", source, destination, decimal.RequireFromString("50"))
	assert.ErrorIs(t, err, errors.ErrInsufficientBalance)

	require.Len(t, ledger.calls, 1, "no credit leg after a failed debit")
	assert.Empty(t, repo.byRequestID, "no transfer record after a failed debit")
}

func TestTransferCreditFailureCompensates(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	ledger.failures["credit-t1"] = errors.ErrInactiveAccount
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()
	amount := decimal.RequireFromString("50.00")

	_, err := svc.Transfer(context.Background(), "t1", source, destination, amount)
	assert.ErrorIs(t, err, errors.ErrInactiveAccount, "the original credit failure surfaces")

	require.Len(t, ledger.calls, 3)
	assert.Equal(t, ledgerCall{"debit", source, amount, "debit-t1"}, ledger.calls[0])
	assert.Equal(t, ledgerCall{"credit", destination, amount, "credit-t1"}, ledger.calls[1])
	assert.Equal(t, ledgerCall{"credit", source, amount, "reversal-t1"}, ledger.calls[2],
		"compensation credits the source back")

	stored := repo.byRequestID["t1"]
	require.NotNil(t, stored)
	assert.Equal(t, domain.TransferReversed, stored.Status)
}

func TestTransferCompensationFailureEscalates(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	ledger.failures["credit-t1"] = errors.ErrInactiveAccount
	ledger.failures["reversal-t1"] = errors.NewAppError(errors.StorageError, "db down")
	svc := newTransferService(repo, ledger)

	_, err := svc.Transfer(context.Background(), "t1", uuid.New(), uuid.New(), decimal.RequireFromString("50"))
	require.Error(t, err)
	assert.Equal(t, errors.CompensationFailed, err.(*errors.AppError).Code)

	assert.Empty(t, repo.byRequestID, "no terminal status is known, so nothing is recorded")
}

func TestTransferRecordRaceResolvesToWinner(t *testing.T) {
	repo := newFakeTransferRepo()
	ledger := newFakeLedger()
	svc := newTransferService(repo, ledger)

	source, destination := uuid.New(), uuid.New()
	amount := decimal.RequireFromString("50.00")

	// A concurrent saga run commits this request id after our fast-path
	// lookup but before our insert: the lookup misses once, then the unique
	// constraint fires on Create.
	winner, err := domain.NewTransfer("t1", source, destination, amount)
	require.NoError(t, err)
	repo.raceWinner = winner

	transferID, err := svc.Transfer(context.Background(), "t1", source, destination, amount)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, transferID)
}

func TestGetTransfer(t *testing.T) {
	repo := newFakeTransferRepo()
	svc := newTransferService(repo, newFakeLedger())

	transfer, err := domain.NewTransfer("t1", uuid.New(), uuid.New(), decimal.RequireFromString("5"))
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), transfer))

	got, err := svc.GetTransfer(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, transfer.ID, got.ID)

	_, err = svc.GetTransfer(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.TransferNotFound, err.(*errors.AppError).Code)
}
