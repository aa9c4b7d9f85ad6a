// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByUserAndHash(
		ctx context.Context,
		userID, tokenHash string,
	) (*RefreshToken, error)
	Rotate(ctx context.Context, consumedID string, next *RefreshToken) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, expires_at, user_agent, ip_address
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.UserAgent,
		token.IPAddress,
	).Scan(&token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *repository) FindByUserAndHash(
	ctx context.Context,
	userID, tokenHash string,
) (*RefreshToken, error) {
	query := `
		SELECT
			id, user_id, token_hash, expires_at, created_at, updated_at,
			user_agent, ip_address
		FROM refresh_tokens
		WHERE user_id = $1 AND token_hash = $2`

	var token RefreshToken
	err := r.db.GetContext(ctx, &token, query, userID, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}

	return &token, nil
}

// Rotate deletes consumedID and inserts next in one statement. If another
// request already consumed the row nothing is inserted and ErrNotFound is
// returned.
func (r *repository) Rotate(
	ctx context.Context,
	consumedID string,
	next *RefreshToken,
) error {
	query := `
		WITH consumed AS (
			DELETE FROM refresh_tokens WHERE id = $1 RETURNING id
		)
		INSERT INTO refresh_tokens (
			id, user_id, token_hash, expires_at, user_agent, ip_address
		)
		SELECT $2, $3, $4, $5, $6, $7 FROM consumed
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		consumedID,
		next.ID,
		next.UserID,
		next.TokenHash,
		next.ExpiresAt,
		next.UserAgent,
		next.IPAddress,
	).Scan(&next.CreatedAt, &next.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("rotate refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	return nil
}

func (r *repository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM refresh_tokens WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete refresh token: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteAllForUser(
	ctx context.Context,
	userID string,
) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user refresh tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user refresh tokens: %w", err)
	}

	return rows, nil
}
