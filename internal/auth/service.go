// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

type UserInfo struct {
	ID           int64
	UserID       string
	Name         string
	Email        string
	PasswordHash string
	Role         string
}

type NewUser struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
}

type UserProvider interface {
	GetByUserID(ctx context.Context, userID string) (*UserInfo, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	now          func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		now:          time.Now,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	meta ClientMeta,
) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req.UserID, req.Password)
	if err != nil {
		return nil, err
	}

	if core.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := core.HashPassword(req.Password); hashErr == nil {
			if upErr := s.userProvider.UpdatePassword(ctx, user.UserID, newHash); upErr != nil {
				slog.WarnContext(ctx, "password rehash failed",
					"user_id", user.UserID,
					"error", upErr,
				)
			}
		}
	}

	tokens, refresh, err := s.issue(user.UserID, meta)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return tokens, nil
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	meta ClientMeta,
) (*TokenResponse, error) {
	exists, err := s.userProvider.ExistsByUserID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		UserID:       req.UserID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		PhoneNumber:  req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, refresh, err := s.issue(user.UserID, meta)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The consumed row is
// replaced atomically, so a token can be redeemed at most once.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	meta ClientMeta,
) (*TokenResponse, error) {
	userID, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	stored, err := s.repo.FindByUserAndHash(ctx, userID, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if stored.IsExpired(s.now()) {
		if delErr := s.repo.DeleteByID(ctx, stored.ID); delErr != nil &&
			!errors.Is(delErr, core.ErrNotFound) {
			slog.WarnContext(ctx, "delete expired refresh token failed",
				"token_id", stored.ID,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	if _, err := s.userProvider.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	tokens, next, err := s.issue(userID, meta)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Rotate(ctx, stored.ID, next); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("rotate token: %w", err)
	}

	return tokens, nil
}

func (s *Service) Logout(ctx context.Context, userID string) (*LogoutResponse, error) {
	removed, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("logout: %w", err)
	}

	slog.InfoContext(ctx, "user logged out",
		"user_id", userID,
		"tokens_removed", removed,
	)

	return &LogoutResponse{
		Message:   "logged out",
		Timestamp: s.now().UTC(),
	}, nil
}

// DeleteUser re-authenticates before removing the account and its tokens.
func (s *Service) DeleteUser(ctx context.Context, userID, password string) error {
	if _, err := s.authenticate(ctx, userID, password); err != nil {
		return err
	}

	if _, err := s.repo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user tokens: %w", err)
	}

	rows, err := s.userProvider.DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if rows == 0 {
		return ErrInvalidCredentials
	}

	return nil
}

func (s *Service) authenticate(
	ctx context.Context,
	userID, password string,
) (*UserInfo, error) {
	user, err := s.userProvider.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing equalization only
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) issue(
	userID string,
	meta ClientMeta,
) (*TokenResponse, *RefreshToken, error) {
	access, err := s.jwt.CreateAccessToken(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("create access token: %w", err)
	}

	refresh, err := s.jwt.CreateRefreshToken(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("create refresh token: %w", err)
	}

	row := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: core.HashToken(refresh.Token),
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}

	return &TokenResponse{
		AccessToken:           access.Token,
		RefreshToken:          refresh.Token,
		TokenType:             "Bearer",
		AccessTokenExpiresAt:  access.ExpiresAt,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
	}, row, nil
}
