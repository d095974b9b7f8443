package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidAmount       ErrorCode = "invalid_amount"
	InvalidKind         ErrorCode = "invalid_kind"
	InvalidInput        ErrorCode = "invalid_input"
	InvalidDocument     ErrorCode = "invalid_document"
	InvalidCredentials  ErrorCode = "invalid_credentials"
	Forbidden           ErrorCode = "forbidden"
	AccountNotFound     ErrorCode = "account_not_found"
	TransferNotFound    ErrorCode = "transfer_not_found"
	InactiveAccount     ErrorCode = "inactive_account"
	InsufficientBalance ErrorCode = "insufficient_balance"
	SameAccount         ErrorCode = "same_account"
	DuplicateRequest    ErrorCode = "duplicate_request"
	DuplicateDocument   ErrorCode = "duplicate_document"
	DuplicateTransfer   ErrorCode = "duplicate_transfer"
	AllocationExhausted ErrorCode = "allocation_exhausted"
	CompensationFailed  ErrorCode = "compensation_failed"
	StorageError        ErrorCode = "storage_error"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps the error code to the status the handlers respond with.
// StorageError is the only code callers may blindly retry, hence 503.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidAmount, InvalidKind, InvalidInput, InvalidDocument:
		return http.StatusBadRequest
	case InvalidCredentials:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case AccountNotFound, TransferNotFound:
		return http.StatusNotFound
	case DuplicateDocument:
		return http.StatusConflict
	case InactiveAccount, InsufficientBalance, SameAccount:
		return http.StatusUnprocessableEntity
	case StorageError, AllocationExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromCode rebuilds an AppError from a code transported over the wire, so a
// remote ledger failure is indistinguishable from a local one.
func FromCode(code, message string) *AppError {
	switch ErrorCode(code) {
	case InvalidAmount, InvalidKind, InvalidInput, InvalidDocument,
		InvalidCredentials, Forbidden, AccountNotFound, TransferNotFound, InactiveAccount,
		InsufficientBalance, SameAccount, DuplicateRequest, DuplicateDocument,
		DuplicateTransfer, AllocationExhausted, CompensationFailed, StorageError:
		return NewAppError(ErrorCode(code), message)
	default:
		return NewAppError(InternalError, message)
	}
}

// Predefined errors for common cases
var (
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be positive")
	ErrInvalidKind         = NewAppError(InvalidKind, "kind must be 'C' (credit) or 'D' (debit)")
	ErrInvalidCredentials  = NewAppError(InvalidCredentials, "invalid account or password")
	ErrForbidden           = NewAppError(Forbidden, "access to this account is not allowed")
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrInactiveAccount     = NewAppError(InactiveAccount, "account is inactive")
	ErrInsufficientBalance = NewAppError(InsufficientBalance, "insufficient balance")
	ErrSameAccount         = NewAppError(SameAccount, "source and destination accounts must differ")
	ErrDuplicateRequest    = NewAppError(DuplicateRequest, "request already processed")
	ErrDuplicateDocument   = NewAppError(DuplicateDocument, "document already registered")
	ErrDuplicateTransfer   = NewAppError(DuplicateTransfer, "transfer already processed")
	ErrAllocationExhausted = NewAppError(AllocationExhausted, "could not allocate a unique account number")

	ErrCannotBeginTransaction = NewAppError(InternalError, "executor cannot begin a transaction")
)
