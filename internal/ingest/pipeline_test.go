// AngelaMos | 2026
// pipeline_test.go

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/housing"
)

// memoryRepository mirrors the upsert rules of the SQL repository. Like a
// database driver it refuses to work on a cancelled context. failFind and
// failUpsert make the matching call for a pblancNo return the given error.
type memoryRepository struct {
	housing.Repository

	mu         sync.Mutex
	rows       map[string]*housing.Supply
	nextID     int64
	failFind   map[string]error
	failUpsert map[string]error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		rows:       make(map[string]*housing.Supply),
		failFind:   make(map[string]error),
		failUpsert: make(map[string]error),
	}
}

func (m *memoryRepository) seed(s *housing.Supply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.rows[s.PblancNo] = s
}

func (m *memoryRepository) FindByPblancNo(ctx context.Context, pblancNo string) (*housing.Supply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.failFind[pblancNo]; err != nil {
		return nil, err
	}
	s, ok := m.rows[pblancNo]
	if !ok {
		return nil, fmt.Errorf("find housing supply: %w", core.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (m *memoryRepository) Upsert(ctx context.Context, s *housing.Supply) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := m.failUpsert[s.PblancNo]; err != nil {
		return false, err
	}

	existing, ok := m.rows[s.PblancNo]
	if !ok {
		m.nextID++
		s.ID = m.nextID
		cp := *s
		m.rows[s.PblancNo] = &cp
		return true, nil
	}

	existing.RawData = s.RawData
	existing.CollectedAt = s.CollectedAt
	if s.HouseName != nil {
		existing.HouseName = s.HouseName
	}
	if s.HssplyAdres != nil {
		existing.HssplyAdres = s.HssplyAdres
	}
	if !existing.HasCoordinates() {
		if s.Latitude != nil {
			existing.Latitude = s.Latitude
		}
		if s.Longitude != nil {
			existing.Longitude = s.Longitude
		}
	}
	*s = *existing
	return false, nil
}

func (m *memoryRepository) get(pblancNo string) *housing.Supply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[pblancNo]
}

type stubGeocoder struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]bool
	panicOn map[string]bool
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (*Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, address)
	if g.panicOn[address] {
		panic("geocoder exploded")
	}
	if g.fail[address] {
		return nil, ErrNoGeocodeResult
	}
	return &Coordinates{Latitude: 37.0, Longitude: 127.0}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	runs []*RunResult
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, run *RunResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, run)
	return n.err
}

type staticFetcher struct {
	configured bool
	items      map[string][]any
	errs       map[string]error
	// onFetch runs before each fetch, with the fetch's context.
	onFetch func(ctx context.Context, src Source)
}

func (f *staticFetcher) Configured() bool { return f.configured }

func (f *staticFetcher) Fetch(ctx context.Context, src Source) ([]any, error) {
	if f.onFetch != nil {
		f.onFetch(ctx, src)
	}
	if err := f.errs[src.Name]; err != nil {
		return nil, err
	}
	return f.items[src.Name], nil
}

func item(kv ...any) any {
	m := map[string]any{}
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func TestPipeline_PartialRunAgainstPublicDataAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "getUrbtyOfctlLttotPblancDetail") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"PBLANC_NO":"N1","HOUSE_NM":"First","HSSPLY_ADRES":"Seoul 1"},
			{"PBLANC_NO":"N2","HOUSE_NM":"Second","HSSPLY_ADRES":"Seoul 2"},
			{"PBLANC_NO":"D1","HOUSE_NM":"Renamed","HSSPLY_ADRES":"Seoul 3"},
			{"HOUSE_NM":"no key"}
		]}`)
	}))
	defer server.Close()

	repo := newMemoryRepository()
	repo.seed(&housing.Supply{
		PblancNo:  "D1",
		Latitude:  floatPtr(35.5),
		Longitude: floatPtr(129.3),
		IsHidden:  true,
	})

	geo := &stubGeocoder{}
	notifier := &recordingNotifier{}
	fetcher := NewPublicDataClient(testBreaker("public-data-partial"), config.PublicDataConfig{
		BaseURL: server.URL,
		APIKey:  "key",
		PerPage: 10,
	}, slog.Default())

	p := NewPipeline(Deps{
		Repo:     repo,
		Fetcher:  fetcher,
		Geocoder: geo,
		Notifier: notifier,
	})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, run.Success)
	assert.Equal(t, StatusPartial, run.Status)
	require.Len(t, run.Results, 2)
	assert.True(t, run.Results[0].Success)
	assert.Equal(t, 3, run.Results[0].SavedCount)
	assert.False(t, run.Results[1].Success)
	assert.Contains(t, run.Results[1].Error, "500")
	assert.Equal(t, 3, run.SavedCount())

	assert.ElementsMatch(t, []string{"Seoul 1", "Seoul 2"}, geo.calls)

	dup := repo.get("D1")
	assert.Equal(t, "Renamed", *dup.HouseName)
	assert.InDelta(t, 35.5, *dup.Latitude, 1e-9)
	assert.True(t, dup.IsHidden)

	require.Len(t, notifier.runs, 1)
	assert.Same(t, run, notifier.runs[0])
}

func TestPipeline_IdempotentUpsertAdvancesCollectedAt(t *testing.T) {
	repo := newMemoryRepository()
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt": {item("PBLANC_NO", "X1", "HSSPLY_ADRES", "Daegu 1")},
		},
	}
	geo := &stubGeocoder{}
	p := NewPipeline(Deps{
		Repo:     repo,
		Fetcher:  fetcher,
		Geocoder: geo,
		Sources:  DefaultSources[:1],
	})

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return first }
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	second := first.Add(24 * time.Hour)
	p.now = func() time.Time { return second }
	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, run.Success)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, second, repo.get("X1").CollectedAt)
	assert.Len(t, geo.calls, 1, "stored coordinates make a second geocode unnecessary")
}

func TestPipeline_GeocodeFailuresAreCounted(t *testing.T) {
	repo := newMemoryRepository()
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt": {
				item("PBLANC_NO", "G1", "HSSPLY_ADRES", "bad address"),
				item("PBLANC_NO", "G2", "HSSPLY_ADRES", "good address"),
				item("PBLANC_NO", "G3", "LATITUDE", 1.5, "LONGITUDE", 2.5, "HSSPLY_ADRES", "has coords"),
				"unparseable",
			},
		},
	}
	geo := &stubGeocoder{fail: map[string]bool{"bad address": true}}
	p := NewPipeline(Deps{Repo: repo, Fetcher: fetcher, Geocoder: geo, Sources: DefaultSources[:1]})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Results, 1)
	assert.Equal(t, 3, run.Results[0].SavedCount)
	assert.Equal(t, 1, run.Results[0].GeocodingFailedCount)
	assert.False(t, repo.get("G1").HasCoordinates())
	assert.True(t, repo.get("G2").HasCoordinates())
	assert.NotContains(t, geo.calls, "has coords")
}

func TestPipeline_MissingAPIKeyFailsAndNotifies(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	p := NewPipeline(Deps{
		Repo:     newMemoryRepository(),
		Fetcher:  &staticFetcher{configured: false},
		Geocoder: &stubGeocoder{},
		Notifier: notifier,
	})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, run.Success)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, ErrMissingAPIKey.Error(), run.Error)
	require.Len(t, notifier.runs, 1)
}

func TestPipeline_PanicIsRecovered(t *testing.T) {
	repo := newMemoryRepository()
	notifier := &recordingNotifier{}
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt": {
				item("PBLANC_NO", "A1", "HSSPLY_ADRES", "boom"),
				item("PBLANC_NO", "A2", "HSSPLY_ADRES", "Seoul 2"),
			},
			"urbty": {item("PBLANC_NO", "U1", "HSSPLY_ADRES", "Seoul 3")},
		},
	}
	p := NewPipeline(Deps{
		Repo:     repo,
		Fetcher:  fetcher,
		Geocoder: &stubGeocoder{panicOn: map[string]bool{"boom": true}},
		Notifier: notifier,
	})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.True(t, run.Results[0].Success)
	assert.Equal(t, 1, run.Results[0].SavedCount)
	assert.True(t, run.Results[1].Success)
	assert.Equal(t, 1, run.Results[1].SavedCount)
	assert.Equal(t, StatusCompleted, run.Status)

	assert.Nil(t, repo.get("A1"), "the panicking item is skipped")
	assert.NotNil(t, repo.get("A2"))
	assert.NotNil(t, repo.get("U1"))
	require.Len(t, notifier.runs, 1)
}

func TestPipeline_FetchPanicFailsOnlyItsSource(t *testing.T) {
	repo := newMemoryRepository()
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"urbty": {item("PBLANC_NO", "U1")},
		},
		onFetch: func(_ context.Context, src Source) {
			if src.Name == "apt" {
				panic("decoder exploded")
			}
		},
	}
	p := NewPipeline(Deps{Repo: repo, Fetcher: fetcher, Geocoder: &stubGeocoder{}})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.False(t, run.Results[0].Success)
	assert.Contains(t, run.Results[0].Error, "decoder exploded")
	assert.True(t, run.Results[1].Success)
	assert.Equal(t, 1, run.Results[1].SavedCount)
	assert.Equal(t, StatusPartial, run.Status)
	assert.False(t, run.Success)
	assert.NotNil(t, repo.get("U1"))
}

func TestPipeline_ItemStorageErrorsSkipOnlyThatItem(t *testing.T) {
	repo := newMemoryRepository()
	repo.failFind["F1"] = errors.New("connection reset")
	repo.failUpsert["F2"] = errors.New("deadlock detected")
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt": {
				item("PBLANC_NO", "F1", "HSSPLY_ADRES", "Seoul 1"),
				item("PBLANC_NO", "OK1", "HSSPLY_ADRES", "Seoul 2"),
				item("PBLANC_NO", "F2"),
				item("PBLANC_NO", "OK2"),
			},
		},
	}
	geo := &stubGeocoder{}
	p := NewPipeline(Deps{Repo: repo, Fetcher: fetcher, Geocoder: geo, Sources: DefaultSources[:1]})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, run.Results, 1)
	assert.True(t, run.Results[0].Success)
	assert.Equal(t, 2, run.Results[0].SavedCount)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.NotNil(t, repo.get("OK1"))
	assert.NotNil(t, repo.get("OK2"))
	assert.Nil(t, repo.get("F1"))
	assert.Nil(t, repo.get("F2"))
	assert.NotContains(t, geo.calls, "Seoul 1", "a failed lookup stops the item before geocoding")
}

func TestPipeline_UpsertErrorOnExistingRowKeepsStoredCopy(t *testing.T) {
	repo := newMemoryRepository()
	repo.seed(&housing.Supply{PblancNo: "S2", HouseName: strPtr("Old")})
	repo.failUpsert["S2"] = errors.New("disk full")
	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt": {item("PBLANC_NO", "S1"), item("PBLANC_NO", "S2", "HOUSE_NM", "New")},
		},
	}
	p := NewPipeline(Deps{Repo: repo, Fetcher: fetcher, Geocoder: &stubGeocoder{}, Sources: DefaultSources[:1]})

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, run.Results[0].Success)
	assert.Equal(t, 1, run.SavedCount())
	assert.Equal(t, "Old", *repo.get("S2").HouseName)
}

func TestPipeline_CallerCancellationDoesNotAbortRun(t *testing.T) {
	repo := newMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &staticFetcher{
		configured: true,
		items: map[string][]any{
			"apt":   {item("PBLANC_NO", "C1"), item("PBLANC_NO", "C2")},
			"urbty": {item("PBLANC_NO", "C3")},
		},
		onFetch: func(fetchCtx context.Context, src Source) {
			if src.Name == "apt" {
				cancel()
				assert.NoError(t, fetchCtx.Err())
			}
		},
	}
	p := NewPipeline(Deps{Repo: repo, Fetcher: fetcher, Geocoder: &stubGeocoder{}})

	run, err := p.Run(ctx)
	require.NoError(t, err)

	require.Error(t, ctx.Err())
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 3, run.SavedCount())
	assert.NotNil(t, repo.get("C3"))
}

func TestPipeline_ConcurrentRunConflicts(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := &core.Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	require.NoError(t, mr.Set(LockKey, "someone-else"))

	p := NewPipeline(Deps{
		Repo:     newMemoryRepository(),
		Fetcher:  &staticFetcher{configured: true},
		Geocoder: &stubGeocoder{},
		Redis:    rdb,
	})

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, core.ErrConflict)

	mr.Del(LockKey)
	run, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, run.Success)
	assert.False(t, mr.Exists(LockKey), "lock is released after the run")
}

func TestPipeline_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := &core.Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})}
	mr.Close()

	p := NewPipeline(Deps{
		Repo:     newMemoryRepository(),
		Fetcher:  &staticFetcher{configured: true},
		Geocoder: &stubGeocoder{},
		Redis:    rdb,
	})

	run, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, run.Success)
}
