package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bank-ledger/internal/errors"
)

// TokenManager issues and verifies the bearer tokens both services accept.
// The subject claim carries the account id; handlers only ever see already
// verified account ids.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (m *TokenManager) Issue(accountID uuid.UUID, name string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.NewAppError(errors.InternalError, "failed to sign token").WithDetails(err.Error())
	}
	return signed, nil
}

func (m *TokenManager) Verify(tokenString string) (uuid.UUID, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidCredentials
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errors.ErrInvalidCredentials
	}

	accountID, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidCredentials
	}
	return accountID, nil
}
