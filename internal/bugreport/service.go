// AngelaMos | 2026
// service.go

package bugreport

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create files a new report. Status always starts open; severity and error
// type fall back to medium and unknown.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*BugReport, error) {
	report := &BugReport{
		Title:        req.Title,
		Description:  req.Description,
		ErrorMessage: req.ErrorMessage,
		ErrorStack:   req.ErrorStack,
		ErrorType:    valueOr(req.ErrorType, ErrorTypeUnknown),
		ErrorCode:    req.ErrorCode,
		URL:          req.URL,
		UserAgent:    req.UserAgent,
		Status:       StatusOpen,
		Severity:     valueOr(req.Severity, SeverityMedium),
		UserID:       req.UserID,
		AssigneeID:   req.AssigneeID,
		Memo:         req.Memo,
		Metadata:     req.Metadata,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *Service) FindAll(ctx context.Context, params ListParams) ([]BugReport, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) FindOne(ctx context.Context, id int64) (*BugReport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*BugReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		report.Title = *req.Title
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.Status != nil {
		report.Status = *req.Status
	}
	if req.Severity != nil {
		report.Severity = *req.Severity
	}
	if req.ErrorType != nil {
		report.ErrorType = *req.ErrorType
	}
	if req.ErrorMessage != nil {
		report.ErrorMessage = req.ErrorMessage
	}
	if req.ErrorStack != nil {
		report.ErrorStack = req.ErrorStack
	}
	if req.ErrorCode != nil {
		report.ErrorCode = req.ErrorCode
	}
	if req.AssigneeID != nil {
		report.AssigneeID = req.AssigneeID
	}
	if req.Memo != nil {
		report.Memo = req.Memo
	}
	if req.Metadata != nil {
		report.Metadata = req.Metadata
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update bug report %d: %w", id, err)
	}

	return report, nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func valueOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}
