package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
)

func TestCallerTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "meterai")

	token, err := svc.GenerateCallerToken("alice", time.Hour)
	require.NoError(t, err)

	caller, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.Identity("alice"), caller)
}

func TestValidateTokenFailures(t *testing.T) {
	svc := NewService("test-signing-key", "meterai")

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewService("different-key", "meterai")
		token, err := other.GenerateCallerToken("alice", time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := svc.GenerateCallerToken("alice", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
