// AngelaMos | 2026
// service.go

package housing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores an administratively entered supply. The request body is
// kept as raw_data.
func (s *Service) Create(ctx context.Context, body []byte) (*Supply, error) {
	var supply Supply
	if err := json.Unmarshal(body, &supply); err != nil {
		return nil, fmt.Errorf("decode housing supply: %v: %w", err, core.ErrInvalidInput)
	}

	supply.PblancNo = strings.TrimSpace(supply.PblancNo)
	if supply.PblancNo == "" {
		return nil, fmt.Errorf("pblancNo is required: %w", core.ErrInvalidInput)
	}

	supply.ID = 0
	supply.RawData = core.RawJSON(body)
	supply.CollectedAt = s.now()

	if err := s.repo.Create(ctx, &supply); err != nil {
		return nil, err
	}

	return &supply, nil
}

func (s *Service) FindAll(ctx context.Context, params ListParams) ([]Supply, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) FindOne(ctx context.Context, id int64) (*Supply, error) {
	return s.repo.GetByID(ctx, id)
}

// Update merges a JSON patch into the stored supply. Identity and
// bookkeeping fields cannot be patched.
func (s *Service) Update(ctx context.Context, id int64, patch []byte) (*Supply, error) {
	supply, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	original := *supply
	if err := json.Unmarshal(patch, supply); err != nil {
		return nil, fmt.Errorf("decode housing supply patch: %v: %w", err, core.ErrInvalidInput)
	}

	supply.ID = original.ID
	supply.RawData = original.RawData
	supply.CollectedAt = original.CollectedAt
	supply.CreatedAt = original.CreatedAt
	if strings.TrimSpace(supply.PblancNo) == "" {
		supply.PblancNo = original.PblancNo
	}

	if err := s.repo.Update(ctx, supply); err != nil {
		return nil, err
	}

	return supply, nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) MissingCoordinates(
	ctx context.Context,
	params ListParams,
) ([]Supply, int, error) {
	return s.repo.MissingCoordinates(ctx, params)
}

func (s *Service) Coverage(ctx context.Context) (*Coverage, error) {
	return s.repo.Coverage(ctx)
}
