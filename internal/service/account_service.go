package service

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
	"bank-ledger/internal/repository"
)

const (
	numberAllocationAttempts = 10
	numberMin                = 100_000_000
	numberMax                = 999_999_999
)

type AccountService struct {
	store  *repository.Store
	hasher auth.PasswordHasher
	tokens *auth.TokenManager
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, hasher auth.PasswordHasher, tokens *auth.TokenManager, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, name, document, password string) (*domain.Account, error) {
	doc, err := domain.ParseDocument(document)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "password must not be empty")
	}

	if _, err := s.store.Accounts().GetByDocument(ctx, doc); err == nil {
		return nil, errors.ErrDuplicateDocument
	} else if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.AccountNotFound {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	// Generate-and-check with a bounded retry budget; the unique constraint
	// on number still decides ties between concurrent openings.
	for attempt := 0; attempt < numberAllocationAttempts; attempt++ {
		number := numberMin + rand.Int64N(numberMax-numberMin+1)

		exists, err := s.store.Accounts().NumberExists(ctx, number)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		account, err := domain.NewAccount(number, name, doc, hash)
		if err != nil {
			return nil, err
		}

		err = s.store.Accounts().Create(ctx, account)
		if err == nil {
			s.logger.Info("Account opened", "account_id", account.ID, "number", account.Number)
			return account, nil
		}
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.AllocationExhausted {
			continue
		}
		return nil, err
	}

	s.logger.Error("Account number allocation exhausted", "attempts", numberAllocationAttempts)
	return nil, errors.ErrAllocationExhausted
}

// Login authenticates by account number or document and returns a signed
// token. Inactive accounts cannot log in.
func (s *AccountService) Login(ctx context.Context, number int64, document, password string) (string, *domain.Account, error) {
	var account *domain.Account
	var err error
	switch {
	case number != 0:
		account, err = s.store.Accounts().GetByNumber(ctx, number)
	case document != "":
		account, err = s.store.Accounts().GetByDocument(ctx, document)
	default:
		return "", nil, errors.NewAppError(errors.InvalidInput, "account number or document is required")
	}

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.AccountNotFound {
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !account.Active || !s.hasher.Verify(password, account.PasswordHash) {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID, account.Name)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("Login succeeded", "account_id", account.ID)
	return token, account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.store.Accounts().GetByID(ctx, id)
}

// DeactivateAccount confirms the password and flips active to false. The
// transition is one-way.
func (s *AccountService) DeactivateAccount(ctx context.Context, id uuid.UUID, password string) error {
	account, err := s.store.Accounts().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return errors.ErrInvalidCredentials
	}

	return s.store.Accounts().Deactivate(ctx, id)
}
