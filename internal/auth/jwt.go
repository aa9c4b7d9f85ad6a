// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	claimType = "type"
)

type JWTManager struct {
	key    jwk.Key
	config config.JWTConfig
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &JWTManager{
		key:    key,
		config: cfg,
		now:    time.Now,
	}, nil
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

func (m *JWTManager) CreateAccessToken(userID string) (*IssuedToken, error) {
	return m.create(userID, TokenTypeAccess, m.config.AccessTokenExpire)
}

func (m *JWTManager) CreateRefreshToken(userID string) (*IssuedToken, error) {
	return m.create(userID, TokenTypeRefresh, m.config.RefreshTokenExpire)
}

func (m *JWTManager) create(
	userID, tokenType string,
	ttl time.Duration,
) (*IssuedToken, error) {
	now := m.now()
	expiresAt := now.Add(ttl)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Subject(userID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(claimType, tokenType).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build %s token: %w", tokenType, err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.key))
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", tokenType, err)
	}

	return &IssuedToken{Token: string(signed), ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken returns the subject (login handle) of a valid access token.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (string, error) {
	return m.verify(tokenString, TokenTypeAccess)
}

func (m *JWTManager) VerifyRefreshToken(tokenString string) (string, error) {
	return m.verify(tokenString, TokenTypeRefresh)
}

func (m *JWTManager) verify(tokenString, expectedType string) (string, error) {
	raw := []byte(tokenString)

	token, err := jwt.Parse(
		raw,
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
	)
	if err != nil {
		if m.isExpired(raw) {
			return "", fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify token: %v: %w", err, core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get(claimType, &tokenType); err != nil || tokenType != expectedType {
		return "", fmt.Errorf(
			"verify token: expected %s token: %w",
			expectedType,
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf("verify token: missing subject: %w", core.ErrTokenInvalid)
	}

	return subject, nil
}

// isExpired reports whether a correctly signed token failed validation only
// because its exp has passed.
func (m *JWTManager) isExpired(raw []byte) bool {
	token, err := jwt.Parse(
		raw,
		jwt.WithKey(jwa.HS256(), m.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		return false
	}

	exp, ok := token.Expiration()
	return ok && !exp.After(time.Now())
}
