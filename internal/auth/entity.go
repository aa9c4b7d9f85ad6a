// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is the persisted half of a refresh JWT. Only the SHA-256
// digest of the token is stored.
type RefreshToken struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
