// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

const (
	PrincipalKey contextKey = "principal"

	RoleAdmin = "ADMIN"
	RoleUser  = "USER"

	apiKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// Principal is the authenticated user attached to a request.
type Principal struct {
	ID     int64
	UserID string
	Role   string
}

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (string, error)
}

type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*Principal, error)
}

func Authenticator(
	verifier TokenVerifier,
	loader PrincipalLoader,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractToken(r)
			if !ok {
				core.Unauthorized(w, "missing or malformed authorization header")
				return
			}

			userID, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				slog.DebugContext(r.Context(), "access token rejected", "error", err)
				handleAuthError(w, err)
				return
			}

			principal, err := loader.LoadPrincipal(r.Context(), userID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.Unauthorized(w, "user not found")
					return
				}
				core.InternalServerError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipal(r.Context())
			if principal == nil {
				core.Unauthorized(w, "authentication required")
				return
			}

			if _, ok := roleSet[principal.Role]; !ok {
				core.Forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(RoleAdmin)(next)
}

// ExtractToken accepts exactly "Bearer <token>".
func ExtractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := header[len(bearerPrefix):]
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}

// APIKey guards machine-to-machine routes. With no configured key every
// request is rejected.
func APIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				slog.WarnContext(r.Context(), "api key guard has no configured key, rejecting request",
					"path", r.URL.Path,
				)
				core.Unauthorized(w, "api key not configured")
				return
			}

			provided := r.Header.Get(apiKeyHeader)
			if provided == "" {
				core.Unauthorized(w, "missing api key")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				core.Unauthorized(w, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(PrincipalKey).(*Principal); ok {
		return p
	}
	return nil
}

// GetUserID returns the login handle of the authenticated user.
func GetUserID(ctx context.Context) string {
	if p := GetPrincipal(ctx); p != nil {
		return p.UserID
	}
	return ""
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
