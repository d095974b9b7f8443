package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/domain"
	"bank-ledger/internal/errors"
)

// Client calls the ledger service's movement endpoint on behalf of the
// transfer saga, propagating the caller's bearer token from the request
// context. Error codes from the ledger service are rebuilt as the same
// AppError a local movement failure would produce.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) Debit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error {
	return c.apply(ctx, accountID, domain.KindDebit, amount, requestID)
}

func (c *Client) Credit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, requestID string) error {
	return c.apply(ctx, accountID, domain.KindCredit, amount, requestID)
}

type movementRequest struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) apply(ctx context.Context, accountID uuid.UUID, kind domain.MovementKind, amount decimal.Decimal, requestID string) error {
	body, err := json.Marshal(movementRequest{
		RequestID: requestID,
		Kind:      string(kind),
		Amount:    amount.String(),
	})
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to encode movement request").WithDetails(err.Error())
	}

	url := fmt.Sprintf("%s/accounts/%s/movements", c.baseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to build movement request").WithDetails(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Ledger service unreachable",
			"account_id", accountID,
			"request_id", requestID,
			"error", err)
		return errors.NewAppError(errors.StorageError, "ledger service unreachable").WithDetails(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == nil {
		return errors.NewAppErrorf(errors.StorageError, "ledger service returned status %d", resp.StatusCode)
	}

	c.logger.Warn("Movement rejected by ledger service",
		"account_id", accountID,
		"request_id", requestID,
		"code", envelope.Error.Code)
	return errors.FromCode(envelope.Error.Code, envelope.Error.Message)
}
