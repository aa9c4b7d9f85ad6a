// AngelaMos | 2026
// query.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// ListParams carries the paging and ordering options every list endpoint
// accepts.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.SortOrder = strings.ToUpper(p.SortOrder)
	if p.SortOrder != SortAsc {
		p.SortOrder = SortDesc
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy resolves SortBy against columns (API name to SQL column). Unknown
// names fall back to fallback.
func (p *ListParams) OrderBy(columns map[string]string, fallback string) string {
	column, ok := columns[p.SortBy]
	if !ok {
		column = columns[fallback]
	}
	return column + " " + p.SortOrder
}

func ParseListParams(r *http.Request) ListParams {
	q := r.URL.Query()
	p := ListParams{
		Page:      QueryInt(r, "page", DefaultPage),
		Limit:     QueryInt(r, "limit", DefaultLimit),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	p.Normalize()
	return p
}

func QueryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

// PathID reads a positive integer route parameter.
func PathID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %w", key, ErrInvalidInput)
	}
	return id, nil
}

// Where accumulates AND-ed SQL conditions with positional pgx arguments.
type Where struct {
	conditions []string
	args       []any
}

func (w *Where) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *Where) Raw(condition string) {
	w.conditions = append(w.conditions, condition)
}

func (w *Where) Eq(column string, value any) {
	w.conditions = append(w.conditions, column+" = "+w.next(value))
}

func (w *Where) Gte(column string, value any) {
	w.conditions = append(w.conditions, column+" >= "+w.next(value))
}

func (w *Where) Lte(column string, value any) {
	w.conditions = append(w.conditions, column+" <= "+w.next(value))
}

// ILike matches term as a substring of any of columns.
func (w *Where) ILike(term string, columns ...string) {
	placeholder := w.next("%" + EscapeLike(term) + "%")
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, c+" ILIKE "+placeholder)
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (w *Where) Clause() string {
	if len(w.conditions) == 0 {
		return "TRUE"
	}
	return strings.Join(w.conditions, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}

// Page appends LIMIT and OFFSET placeholders and returns them with the full
// argument list.
func (w *Where) Page(p ListParams) (string, []any) {
	args := append(append([]any{}, w.args...), p.Limit, p.Offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
