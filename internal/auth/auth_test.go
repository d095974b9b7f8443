package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, hasher.Verify("s3cret", hash))
	assert.False(t, hasher.Verify("wrong", hash))
	assert.False(t, hasher.Verify("s3cret", "not-a-hash"))
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)
	accountID := uuid.New()

	token, err := tokens.Issue(accountID, "Alice Smith")
	require.NoError(t, err)

	parsedID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, parsedID)
}

func TestTokenManagerRejects(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour)

	_, err := tokens.Verify("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret.
	other := NewTokenManager("other-secret", time.Hour)
	token, err := other.Issue(uuid.New(), "Mallory")
	require.NoError(t, err)
	_, err = tokens.Verify(token)
	assert.Error(t, err)

	// Expired token.
	expired := NewTokenManager("test-secret", -time.Minute)
	token, err = expired.Issue(uuid.New(), "Late")
	require.NoError(t, err)
	_, err = tokens.Verify(token)
	assert.Error(t, err)
}

func TestContextIdentity(t *testing.T) {
	ctx := context.Background()

	_, ok := AccountIDFromContext(ctx)
	assert.False(t, ok)
	_, ok = TokenFromContext(ctx)
	assert.False(t, ok)

	accountID := uuid.New()
	ctx = ContextWithIdentity(ctx, accountID, "raw-token")

	gotID, ok := AccountIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, accountID, gotID)

	gotToken, ok := TokenFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "raw-token", gotToken)
}
