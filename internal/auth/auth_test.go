package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("s3cret")
	req.NoError(err)
	req.NotEqual("s3cret", hash)

	req.True(ComparePassword("s3cret", hash))
	req.False(ComparePassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("test-secret", time.Hour)

	raw, err := tokens.Issue("u1", "alice")
	req.NoError(err)

	claims, err := tokens.Verify(raw)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("cosync", claims.Issuer)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	req := require.New(t)
	raw, err := NewTokens("secret-a", time.Hour).Issue("u1", "alice")
	req.NoError(err)

	_, err = NewTokens("secret-b", time.Hour).Verify(raw)
	req.Error(err)
}

func TestTokenExpiryRejected(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("test-secret", -time.Minute)

	raw, err := tokens.Issue("u1", "alice")
	req.NoError(err)

	_, err = tokens.Verify(raw)
	req.Error(err)
}

func TestTokenGarbageRejected(t *testing.T) {
	_, err := NewTokens("test-secret", time.Hour).Verify("not-a-token")
	require.Error(t, err)
}
