// AngelaMos | 2026
// service_test.go

package bugreport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, report *BugReport) error {
	args := m.Called(ctx, report)
	if fn, ok := args.Get(0).(func(*BugReport) error); ok {
		return fn(report)
	}
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*BugReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BugReport), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, report *BugReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, params ListParams) ([]BugReport, int, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]BugReport), args.Int(1), args.Error(2)
}

func strPtr(s string) *string { return &s }

func TestService_CreateAppliesDefaults(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *BugReport) bool {
		return b.Status == StatusOpen &&
			b.Severity == SeverityMedium &&
			b.ErrorType == ErrorTypeUnknown &&
			b.Metadata["browser"] == "Chrome"
	})).Return(nil)

	report, err := NewService(repo).Create(context.Background(), CreateRequest{
		Title:       "Map does not load",
		Description: "blank page on /map",
		Metadata:    map[string]any{"browser": "Chrome"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, report.Status)
	repo.AssertExpectations(t)
}

func TestService_CreateKeepsGivenSeverity(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	report, err := NewService(repo).Create(context.Background(), CreateRequest{
		Title:       "Crash",
		Description: "TypeError",
		Severity:    strPtr(SeverityCritical),
		ErrorType:   strPtr(ErrorTypeType),
	})
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, report.Severity)
	assert.Equal(t, ErrorTypeType, report.ErrorType)
}

func TestService_UpdateMergesFields(t *testing.T) {
	repo := new(MockRepository)
	existing := &BugReport{
		ID:          3,
		Title:       "Old",
		Description: "desc",
		Status:      StatusOpen,
		Severity:    SeverityLow,
		ErrorType:   ErrorTypeUnknown,
	}
	repo.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(b *BugReport) bool {
		return b.Title == "Old" &&
			b.Status == StatusResolved &&
			b.AssigneeID != nil && *b.AssigneeID == "admin1" &&
			b.Memo != nil && *b.Memo == "fixed in 2.1"
	})).Return(nil)

	report, err := NewService(repo).Update(context.Background(), 3, UpdateRequest{
		Status:     strPtr(StatusResolved),
		AssigneeID: strPtr("admin1"),
		Memo:       strPtr("fixed in 2.1"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, report.Status)
	assert.Equal(t, SeverityLow, report.Severity)
}

func TestService_UpdateNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, int64(8)).Return(nil, core.ErrNotFound)

	_, err := NewService(repo).Update(context.Background(), 8, UpdateRequest{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}
