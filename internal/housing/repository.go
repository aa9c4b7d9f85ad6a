// AngelaMos | 2026
// repository.go

package housing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

type Repository interface {
	Create(ctx context.Context, s *Supply) error
	GetByID(ctx context.Context, id int64) (*Supply, error)
	FindByPblancNo(ctx context.Context, pblancNo string) (*Supply, error)
	Update(ctx context.Context, s *Supply) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]Supply, int, error)
	MissingCoordinates(ctx context.Context, params ListParams) ([]Supply, int, error)
	Upsert(ctx context.Context, s *Supply) (bool, error)
	Coverage(ctx context.Context) (*Coverage, error)
}

type Coverage struct {
	Total           int        `db:"total"             json:"total"`
	Geocoded        int        `db:"geocoded"          json:"geocoded"`
	Missing         int        `db:"-"                 json:"missing"`
	Hidden          int        `db:"hidden"            json:"hidden"`
	LastCollectedAt *time.Time `db:"last_collected_at" json:"lastCollectedAt"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

var (
	upsertColumns = append(
		[]string{"raw_data", "pblanc_no", "latitude", "longitude", "collected_at"},
		descriptiveColumns...,
	)
	writableColumns = append(append([]string{}, upsertColumns...), "is_hidden")

	selectColumns = "id, " + strings.Join(writableColumns, ", ") +
		", created_at, updated_at"

	insertQuery = fmt.Sprintf(`
		INSERT INTO housing_supplies (%s)
		VALUES (%s)
		RETURNING id, created_at, updated_at`,
		strings.Join(writableColumns, ", "),
		namedValues(writableColumns),
	)

	updateQuery = fmt.Sprintf(`
		UPDATE housing_supplies
		SET %s, updated_at = NOW()
		WHERE id = :id
		RETURNING updated_at`,
		namedAssignments(writableColumns),
	)

	upsertQuery = fmt.Sprintf(`
		INSERT INTO housing_supplies (%s)
		VALUES (%s)
		ON CONFLICT (pblanc_no) DO UPDATE SET
			raw_data = EXCLUDED.raw_data,
			collected_at = EXCLUDED.collected_at,
			%s,
			latitude = CASE
				WHEN housing_supplies.latitude IS NOT NULL AND housing_supplies.longitude IS NOT NULL
				THEN housing_supplies.latitude
				ELSE COALESCE(EXCLUDED.latitude, housing_supplies.latitude)
			END,
			longitude = CASE
				WHEN housing_supplies.latitude IS NOT NULL AND housing_supplies.longitude IS NOT NULL
				THEN housing_supplies.longitude
				ELSE COALESCE(EXCLUDED.longitude, housing_supplies.longitude)
			END,
			updated_at = NOW()
		RETURNING id, latitude, longitude, is_hidden, created_at, updated_at, (xmax = 0) AS inserted`,
		strings.Join(upsertColumns, ", "),
		namedValues(upsertColumns),
		coalesceAssignments(descriptiveColumns),
	)
)

func namedValues(columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = ":" + c
	}
	return strings.Join(out, ", ")
}

func namedAssignments(columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c + " = :" + c
	}
	return strings.Join(out, ", ")
}

// coalesceAssignments keeps the stored value when the incoming one is NULL.
func coalesceAssignments(columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, housing_supplies.%s)", c, c, c)
	}
	return strings.Join(out, ",\n\t\t\t")
}

func (r *repository) namedRow(
	ctx context.Context,
	query string,
	arg any,
) (*sqlx.Row, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return nil, fmt.Errorf("bind named query: %w", err)
	}
	return r.db.QueryRowxContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...), nil
}

func (r *repository) Create(ctx context.Context, s *Supply) error {
	row, err := r.namedRow(ctx, insertQuery, s)
	if err != nil {
		return fmt.Errorf("create housing supply: %w", err)
	}

	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create housing supply: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create housing supply: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Supply, error) {
	query := `SELECT ` + selectColumns + ` FROM housing_supplies WHERE id = $1`

	var s Supply
	err := r.db.GetContext(ctx, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get housing supply: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get housing supply: %w", err)
	}

	return &s, nil
}

func (r *repository) FindByPblancNo(
	ctx context.Context,
	pblancNo string,
) (*Supply, error) {
	query := `SELECT ` + selectColumns + ` FROM housing_supplies WHERE pblanc_no = $1`

	var s Supply
	err := r.db.GetContext(ctx, &s, query, pblancNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find housing supply: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find housing supply: %w", err)
	}

	return &s, nil
}

func (r *repository) Update(ctx context.Context, s *Supply) error {
	row, err := r.namedRow(ctx, updateQuery, s)
	if err != nil {
		return fmt.Errorf("update housing supply: %w", err)
	}

	err = row.Scan(&s.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update housing supply: %w", core.ErrNotFound)
	case core.IsDuplicateKey(err):
		return fmt.Errorf("update housing supply: %w", core.ErrDuplicateKey)
	case err != nil:
		return fmt.Errorf("update housing supply: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM housing_supplies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete housing supply: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete housing supply: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete housing supply: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Supply, int, error) {
	params.Normalize()
	return r.page(ctx, params.where(), params.ListParams)
}

// MissingCoordinates applies the same filters as List, restricted to rows
// lacking a latitude or longitude.
func (r *repository) MissingCoordinates(
	ctx context.Context,
	params ListParams,
) ([]Supply, int, error) {
	params.Normalize()

	where := params.where()
	where.Raw("(latitude IS NULL OR longitude IS NULL)")

	return r.page(ctx, where, params.ListParams)
}

func (r *repository) page(
	ctx context.Context,
	where core.Where,
	params core.ListParams,
) ([]Supply, int, error) {
	countQuery := "SELECT COUNT(*) FROM housing_supplies WHERE " + where.Clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, where.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count housing supplies: %w", err)
	}

	limit, args := where.Page(params)
	query := fmt.Sprintf(
		`SELECT %s FROM housing_supplies WHERE %s ORDER BY %s NULLS LAST, id DESC %s`,
		selectColumns,
		where.Clause(),
		params.OrderBy(sortColumns, defaultSort),
		limit,
	)

	var supplies []Supply
	if err := r.db.SelectContext(ctx, &supplies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list housing supplies: %w", err)
	}

	return supplies, total, nil
}

// Upsert inserts s or refreshes the row with the same pblanc_no. Stored
// coordinates survive when both are already present, and is_hidden is never
// touched. It reports whether a new row was inserted.
func (r *repository) Upsert(ctx context.Context, s *Supply) (bool, error) {
	row, err := r.namedRow(ctx, upsertQuery, s)
	if err != nil {
		return false, fmt.Errorf("upsert housing supply: %w", err)
	}

	var inserted bool
	if err := row.Scan(
		&s.ID,
		&s.Latitude,
		&s.Longitude,
		&s.IsHidden,
		&s.CreatedAt,
		&s.UpdatedAt,
		&inserted,
	); err != nil {
		return false, fmt.Errorf("upsert housing supply %s: %w", s.PblancNo, err)
	}

	return inserted, nil
}

func (r *repository) Coverage(ctx context.Context) (*Coverage, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE latitude IS NOT NULL AND longitude IS NOT NULL) AS geocoded,
			COUNT(*) FILTER (WHERE is_hidden) AS hidden,
			MAX(collected_at) AS last_collected_at
		FROM housing_supplies`

	var c Coverage
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return nil, fmt.Errorf("housing coverage: %w", err)
	}
	c.Missing = c.Total - c.Geocoded

	return &c, nil
}
