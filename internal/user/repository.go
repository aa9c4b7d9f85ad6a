// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUserID(ctx context.Context, userID string) (*User, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, user_id, name, email, password, phone_number, profile_image_url,
	birth_date, gender, status, role, email_verified, phone_verified,
	created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (user_id, name, email, password, phone_number, status, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.UserID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.Status,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by user id: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by user id: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsByUserID(
	ctx context.Context,
	userID string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, phone_number = $4, profile_image_url = $5,
		    birth_date = $6, gender = $7, status = $8, role = $9,
		    email_verified = $10, phone_verified = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Email,
		user.PhoneNumber,
		user.ProfileImageURL,
		user.BirthDate,
		user.Gender,
		user.Status,
		user.Role,
		user.EmailVerified,
		user.PhoneVerified,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password = $2, updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteByUserID(
	ctx context.Context,
	userID string,
) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user: %w", err)
	}

	return rows, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var where core.Where
	if params.Search != "" {
		where.ILike(params.Search, "user_id", "name", "email")
	}
	if params.Role != "" {
		where.Eq("role", params.Role)
	}
	if params.Status != "" {
		where.Eq("status", params.Status)
	}

	countQuery := "SELECT COUNT(*) FROM users WHERE " + where.Clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page, args := where.Page(params.ListParams)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY %s %s`,
		userColumns,
		where.Clause(),
		params.OrderBy(sortColumns, defaultSort),
		page,
	)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
