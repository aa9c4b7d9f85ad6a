// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/auth"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/middleware"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByUserID(
	ctx context.Context,
	userID string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	return s.repo.ExistsByUserID(ctx, userID)
}

func (s *Service) Create(
	ctx context.Context,
	u auth.NewUser,
) (*auth.UserInfo, error) {
	user := &User{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        strings.ToLower(u.Email),
		PasswordHash: u.PasswordHash,
		Status:       StatusPendingVerification,
		Role:         RoleUser,
	}
	if u.PhoneNumber != "" {
		user.PhoneNumber = &u.PhoneNumber
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteByUserID(ctx, userID)
}

func (s *Service) LoadPrincipal(
	ctx context.Context,
	userID string,
) (*middleware.Principal, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &middleware.Principal{
		ID:     user.ID,
		UserID: user.UserID,
		Role:   user.Role,
	}, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByUserID(ctx, userID)
}

// UpdateMe applies a self-service profile change. Role and status are not
// reachable from here.
func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyProfile(user, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req AdminUpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyProfile(user, req.UpdateProfileRequest); err != nil {
		return nil, err
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.EmailVerified != nil {
		user.EmailVerified = *req.EmailVerified
	}
	if req.PhoneVerified != nil {
		user.PhoneVerified = *req.PhoneVerified
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func applyProfile(user *User, req UpdateProfileRequest) error {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = req.ProfileImageURL
	}
	if req.Gender != nil {
		user.Gender = req.Gender
	}
	if req.BirthDate != nil {
		d, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			return fmt.Errorf("birth date: %w", core.ErrInvalidInput)
		}
		user.BirthDate = &d
	}
	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

var (
	_ auth.UserProvider          = (*Service)(nil)
	_ middleware.PrincipalLoader = (*Service)(nil)
)
