// AngelaMos | 2026
// repository_test.go

package housing

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRepository_ListExcludesHiddenByDefault(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM housing_supplies WHERE is_hidden = false",
	)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta(
		"ORDER BY rcrit_pblanc_de DESC NULLS LAST, id DESC LIMIT $1 OFFSET $2",
	)).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pblanc_no", "is_hidden"}).
			AddRow(1, "2025000001", false))

	supplies, total, err := repo.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, supplies, 1)
	assert.Equal(t, "2025000001", supplies[0].PblancNo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListIncludeHiddenDropsFilter(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM housing_supplies WHERE TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`FROM housing_supplies WHERE TRUE ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "pblanc_no", "is_hidden"}).
			AddRow(1, "a", false).
			AddRow(2, "b", true))

	supplies, total, err := repo.List(context.Background(), ListParams{IncludeHidden: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.True(t, supplies[1].IsHidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListFiltersAndRanges(t *testing.T) {
	repo, mock := newMockRepository(t)
	from := NewDate(2025, time.January, 1)

	params := ListParams{
		ListParams:        core.ListParams{Search: "seoul", SortBy: "houseName", SortOrder: core.SortAsc},
		Equal:             map[string]string{"house_secd": "01", "rent_secd": "0"},
		RcritPblancDeFrom: &from,
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM housing_supplies WHERE is_hidden = false AND "+
			"(house_nm ILIKE $1 OR hssply_adres ILIKE $1 OR pblanc_no ILIKE $1 OR house_manage_no ILIKE $1) AND "+
			"house_secd = $2 AND rent_secd = $3 AND rcrit_pblanc_de >= $4",
	)).
		WithArgs("%seoul%", "01", "0", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY house_nm ASC NULLS LAST, id DESC LIMIT $5 OFFSET $6")).
		WithArgs("%seoul%", "01", "0", from, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.List(context.Background(), params)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MissingCoordinatesExcludesHiddenByDefault(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM housing_supplies " +
			"WHERE is_hidden = false AND (latitude IS NULL OR longitude IS NULL)",
	)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE is_hidden = false AND (latitude IS NULL OR longitude IS NULL) ORDER BY",
	)).WillReturnRows(sqlmock.NewRows([]string{"id", "pblanc_no"}).AddRow(3, "c"))

	supplies, total, err := repo.MissingCoordinates(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, supplies, 1)
	assert.Nil(t, supplies[0].Latitude)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MissingCoordinatesAppliesListFilters(t *testing.T) {
	repo, mock := newMockRepository(t)
	to := NewDate(2025, time.June, 30)

	params := ListParams{
		ListParams:    core.ListParams{Search: "busan"},
		Equal:         map[string]string{"house_secd": "01"},
		RceptBgndeTo:  &to,
		IncludeHidden: false,
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM housing_supplies WHERE is_hidden = false AND "+
			"(house_nm ILIKE $1 OR hssply_adres ILIKE $1 OR pblanc_no ILIKE $1 OR house_manage_no ILIKE $1) AND "+
			"house_secd = $2 AND rcept_bgnde <= $3 AND (latitude IS NULL OR longitude IS NULL)",
	)).
		WithArgs("%busan%", "01", to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(regexp.QuoteMeta("(latitude IS NULL OR longitude IS NULL) ORDER BY")).
		WithArgs("%busan%", "01", to, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := repo.MissingCoordinates(context.Background(), params)
	require.NoError(t, err)
	assert.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_MissingCoordinatesIncludeHidden(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM housing_supplies WHERE (latitude IS NULL OR longitude IS NULL)",
	)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`WHERE \(latitude IS NULL OR longitude IS NULL\) ORDER BY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := repo.MissingCoordinates(context.Background(), ListParams{IncludeHidden: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpsertReportsInsert(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()
	lat, lng := 37.1, 127.2

	mock.ExpectQuery(`ON CONFLICT \(pblanc_no\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "latitude", "longitude", "is_hidden", "created_at", "updated_at", "inserted",
		}).AddRow(int64(5), lat, lng, true, now, now, false))

	s := &Supply{PblancNo: "2025000001", CollectedAt: now}
	inserted, err := repo.Upsert(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, inserted)
	assert.Equal(t, int64(5), s.ID)
	assert.True(t, s.IsHidden)
	require.True(t, s.HasCoordinates())
	assert.InDelta(t, lat, *s.Latitude, 1e-9)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertQueryKeepsHiddenAndCoordinates(t *testing.T) {
	assert.NotContains(t, upsertQuery, "is_hidden =")
	assert.Contains(t, upsertQuery, "house_nm = COALESCE(EXCLUDED.house_nm, housing_supplies.house_nm)")
	assert.Contains(t, upsertQuery, "THEN housing_supplies.latitude")
	assert.Contains(t, upsertQuery, "raw_data = EXCLUDED.raw_data")
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO housing_supplies`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &Supply{PblancNo: "dup"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepository_DeleteNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM housing_supplies WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_Coverage(t *testing.T) {
	repo, mock := newMockRepository(t)
	last := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "geocoded", "hidden", "last_collected_at"}).
			AddRow(10, 7, 1, last))

	c, err := repo.Coverage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Missing)
	assert.Equal(t, last, *c.LastCollectedAt)
}
