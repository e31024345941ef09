package jwt

import (
	"testing"
	"time"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewJWTServiceWithSecret("test-secret")

	token, err := svc.GenerateTokenUser("user-1", domain.RoleProducer)
	require.NoError(t, err)

	id, role, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	assert.Equal(t, domain.RoleProducer, role)
}

func TestSessionTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTServiceWithSecret("a").GenerateTokenUser("user-1", domain.RoleProducer)
	require.NoError(t, err)

	_, _, err = NewJWTServiceWithSecret("b").GetUserIDByToken(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestResetTokenIsNotASessionToken(t *testing.T) {
	svc := NewJWTServiceWithSecret("test-secret")

	reset, err := svc.GenerateTokenPasswordReset("user-1", "$2a$10$abcdefghijklmnopqrstuv", time.Minute)
	require.NoError(t, err)

	_, _, err = svc.GetUserIDByToken(reset)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	claims, err := svc.ValidateTokenPasswordReset(reset)
	require.NoError(t, err)
	assert.True(t, claims.MatchesPassword("$2a$10$abcdefghijklmnopqrstuv"))
	assert.False(t, claims.MatchesPassword("$2a$10$zzzzzzzzzzzzzzzzzzzzzz"))
}

func TestResetTokenExpires(t *testing.T) {
	svc := NewJWTServiceWithSecret("test-secret")

	reset, err := svc.GenerateTokenPasswordReset("user-1", "hash", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateTokenPasswordReset(reset)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
