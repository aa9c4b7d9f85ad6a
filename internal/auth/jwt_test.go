// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-that-is-long-enough-for-hs256",
		AccessTokenExpire:  time.Hour,
		RefreshTokenExpire: 720 * time.Hour,
		Issuer:             "byzip-test",
	}
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testJWTConfig())
	require.NoError(t, err)
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	_, err := NewJWTManager(config.JWTConfig{})
	require.Error(t, err)
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t)

	issued, err := m.CreateAccessToken("alice")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	subject, err := m.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestJWTManager_TokensAreUnique(t *testing.T) {
	m := newTestJWTManager(t)

	a, err := m.CreateRefreshToken("alice")
	require.NoError(t, err)
	b, err := m.CreateRefreshToken("alice")
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestJWTManager_RejectsWrongType(t *testing.T) {
	m := newTestJWTManager(t)

	access, err := m.CreateAccessToken("alice")
	require.NoError(t, err)
	refresh, err := m.CreateRefreshToken("alice")
	require.NoError(t, err)

	_, err = m.VerifyRefreshToken(access.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = m.VerifyAccessToken(context.Background(), refresh.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	m := newTestJWTManager(t)

	cfg := testJWTConfig()
	cfg.Secret = "a-completely-different-signing-secret-value"
	other, err := NewJWTManager(cfg)
	require.NoError(t, err)

	issued, err := other.CreateAccessToken("alice")
	require.NoError(t, err)

	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := newTestJWTManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	issued, err := m.CreateAccessToken("alice")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.VerifyAccessToken(context.Background(), issued.Token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTManager_Garbage(t *testing.T) {
	m := newTestJWTManager(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.VerifyAccessToken(context.Background(), token)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, "token %q", token)
	}
}
