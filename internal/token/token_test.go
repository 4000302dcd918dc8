package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "veilcredit/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key")

	raw, err := svc.Generate("alice", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key")

	raw, err := svc.Generate("alice", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(raw)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateWrongKey(t *testing.T) {
	raw, err := NewService("key-one").Generate("alice", time.Hour)
	require.NoError(t, err)

	_, err = NewService("key-two").ValidateToken(raw)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateGarbage(t *testing.T) {
	svc := NewService("test-signing-key")
	_, err := svc.ValidateToken("not.a.token")
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateEmptySubjectRejected(t *testing.T) {
	svc := NewService("test-signing-key")

	raw, err := svc.Generate("", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(raw)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
