// AngelaMos | 2026
// repository.go

package bugreport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, report *BugReport) error
	GetByID(ctx context.Context, id int64) (*BugReport, error)
	Update(ctx context.Context, report *BugReport) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]BugReport, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const reportColumns = `id, title, description, error_message, error_stack, error_type,
	error_code, url, user_agent, status, severity, user_id, assignee_id, memo,
	metadata, created_at, updated_at`

func (r *repository) Create(ctx context.Context, report *BugReport) error {
	query := `
		INSERT INTO bug_reports (
			title, description, error_message, error_stack, error_type, error_code,
			url, user_agent, status, severity, user_id, assignee_id, memo, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		report.Title,
		report.Description,
		report.ErrorMessage,
		report.ErrorStack,
		report.ErrorType,
		report.ErrorCode,
		report.URL,
		report.UserAgent,
		report.Status,
		report.Severity,
		report.UserID,
		report.AssigneeID,
		report.Memo,
		report.Metadata,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create bug report: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*BugReport, error) {
	query := `SELECT ` + reportColumns + ` FROM bug_reports WHERE id = $1`

	var report BugReport
	err := r.db.GetContext(ctx, &report, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get bug report: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get bug report: %w", err)
	}

	return &report, nil
}

func (r *repository) Update(ctx context.Context, report *BugReport) error {
	query := `
		UPDATE bug_reports
		SET title = $2, description = $3, error_message = $4, error_stack = $5,
		    error_type = $6, error_code = $7, status = $8, severity = $9,
		    assignee_id = $10, memo = $11, metadata = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &report.UpdatedAt, query,
		report.ID,
		report.Title,
		report.Description,
		report.ErrorMessage,
		report.ErrorStack,
		report.ErrorType,
		report.ErrorCode,
		report.Status,
		report.Severity,
		report.AssigneeID,
		report.Memo,
		report.Metadata,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update bug report: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update bug report: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bug_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bug report: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bug report: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete bug report: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]BugReport, int, error) {
	params.Normalize()
	where := params.where()

	countQuery := "SELECT COUNT(*) FROM bug_reports WHERE " + where.Clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count bug reports: %w", err)
	}

	page, args := where.Page(params.ListParams)
	query := fmt.Sprintf(`SELECT %s FROM bug_reports WHERE %s ORDER BY %s, id DESC %s`,
		reportColumns,
		where.Clause(),
		params.OrderBy(sortColumns, defaultSort),
		page,
	)

	var reports []BugReport
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bug reports: %w", err)
	}

	return reports, total, nil
}
