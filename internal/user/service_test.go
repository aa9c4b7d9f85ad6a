// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/auth"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByUserID(ctx context.Context, userID string) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, params ListUsersParams) ([]User, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]User), args.Int(1), args.Error(2)
}

func ptr[T any](v T) *T { return &v }

func sampleUser() *User {
	return &User{
		ID:           7,
		UserID:       "alice",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$stub",
		Status:       StatusActive,
		Role:         RoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestService_CreateDefaults(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
		return u.UserID == "bob" &&
			u.Email == "bob@example.com" &&
			u.Role == RoleUser &&
			u.Status == StatusPendingVerification &&
			u.PhoneNumber == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*User).ID = 42
	}).Return(nil)

	info, err := svc.Create(ctx, auth.NewUser{
		UserID:       "bob",
		Name:         "Bob",
		Email:        "Bob@Example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.ID)
	assert.Equal(t, "hash", info.PasswordHash)
	repo.AssertExpectations(t)
}

func TestService_Create_Duplicate(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).
		Return(fmt.Errorf("create user: %w", core.ErrDuplicateKey))

	_, err := svc.Create(ctx, auth.NewUser{UserID: "alice"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestService_LoadPrincipal(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	u := sampleUser()
	u.Role = RoleAdmin
	repo.On("GetByUserID", ctx, "alice").Return(u, nil)
	repo.On("GetByUserID", ctx, "ghost").Return(nil, fmt.Errorf("get: %w", core.ErrNotFound))

	p, err := svc.LoadPrincipal(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, RoleAdmin, p.Role)

	_, err = svc.LoadPrincipal(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_UpdateMe(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByUserID", ctx, "alice").Return(sampleUser(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Name == "Alicia" &&
			u.Role == RoleUser &&
			u.Status == StatusActive &&
			u.BirthDate != nil && u.BirthDate.Format(dateLayout) == "1990-05-17" &&
			*u.Gender == GenderFemale
	})).Return(nil)

	updated, err := svc.UpdateMe(ctx, "alice", UpdateProfileRequest{
		Name:      ptr("Alicia"),
		BirthDate: ptr("1990-05-17"),
		Gender:    ptr(GenderFemale),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	repo.AssertExpectations(t)
}

func TestService_UpdateMe_Unauthenticated(t *testing.T) {
	svc := NewService(new(MockRepository))

	_, err := svc.UpdateMe(context.Background(), "", UpdateProfileRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestService_UpdateUser_AdminFields(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(7)).Return(sampleUser(), nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Role == RoleAdmin && u.Status == StatusSuspended && u.EmailVerified
	})).Return(nil)

	updated, err := svc.UpdateUser(ctx, 7, AdminUpdateUserRequest{
		Role:          ptr(RoleAdmin),
		Status:        ptr(StatusSuspended),
		EmailVerified: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, updated.Role)
}

func TestService_UpdateUser_NotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(99)).Return(nil, fmt.Errorf("get user: %w", core.ErrNotFound))

	_, err := svc.UpdateUser(ctx, 99, AdminUpdateUserRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestToUserResponse_HidesPassword(t *testing.T) {
	u := sampleUser()
	birth := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	u.BirthDate = &birth

	resp := ToUserResponse(u)
	assert.Equal(t, "1990-05-17", *resp.BirthDate)
	assert.Equal(t, "alice", resp.UserID)
}
