// AngelaMos | 2026
// pipeline.go

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/byzip-v2/byzip-backend-v2/internal/core"
	"github.com/byzip-v2/byzip-backend-v2/internal/housing"
)

const (
	LockKey        = "ingest:lock"
	defaultLockTTL = 10 * time.Minute

	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

var ErrMissingAPIKey = errors.New("DATA_HOME_API_KEY is not configured")

type SourceResult struct {
	ServiceName          string `json:"serviceName"`
	Success              bool   `json:"success"`
	SavedCount           int    `json:"savedCount"`
	GeocodingFailedCount int    `json:"geocodingFailedCount"`
	Error                string `json:"error,omitempty"`
}

type RunResult struct {
	Success    bool           `json:"success"`
	Status     string         `json:"status"`
	Message    string         `json:"message"`
	Error      string         `json:"error,omitempty"`
	Results    []SourceResult `json:"results"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

func (r *RunResult) SavedCount() int {
	n := 0
	for _, s := range r.Results {
		n += s.SavedCount
	}
	return n
}

func (r *RunResult) GeocodingFailedCount() int {
	n := 0
	for _, s := range r.Results {
		n += s.GeocodingFailedCount
	}
	return n
}

// finalize derives status from the per-source results. A run-level error
// always makes the run unsuccessful.
func (r *RunResult) finalize() {
	succeeded := 0
	for _, s := range r.Results {
		if s.Success {
			succeeded++
		}
	}

	switch {
	case succeeded > 0 && succeeded == len(r.Results) && r.Error == "":
		r.Status = StatusCompleted
	case succeeded > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusFailed
	}
	r.Success = r.Status == StatusCompleted

	switch r.Status {
	case StatusCompleted:
		r.Message = "public data ingestion completed"
	case StatusPartial:
		r.Message = "public data ingestion partially completed"
	default:
		r.Message = "public data ingestion failed"
	}
}

type Deps struct {
	Repo     housing.Repository
	Fetcher  Fetcher
	Geocoder Geocoder
	Notifier Notifier
	// Redis may be nil, in which case runs are not serialized.
	Redis   *core.Redis
	Sources []Source
	LockTTL time.Duration
	Logger  *slog.Logger
}

// Pipeline pulls every source, maps and geocodes the items, and upserts
// them into housing_supplies.
type Pipeline struct {
	repo     housing.Repository
	fetcher  Fetcher
	geocoder Geocoder
	notifier Notifier
	redis    *core.Redis
	sources  []Source
	lockTTL  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewPipeline(d Deps) *Pipeline {
	if d.Sources == nil {
		d.Sources = DefaultSources
	}
	if d.LockTTL <= 0 {
		d.LockTTL = defaultLockTTL
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	return &Pipeline{
		repo:     d.Repo,
		fetcher:  d.Fetcher,
		geocoder: d.Geocoder,
		notifier: d.Notifier,
		redis:    d.Redis,
		sources:  d.Sources,
		lockTTL:  d.LockTTL,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// Run executes one ingestion. It returns core.ErrConflict when another run
// holds the lock; every other failure is reported inside the result.
// Cancellation of ctx is ignored once Run starts: a run triggered over HTTP
// must finish even if the caller disconnects.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	ctx = context.WithoutCancel(ctx)

	lock, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(ctx); err != nil {
				p.logger.WarnContext(ctx, "release ingest lock", "error", err)
			}
		}()
	}

	ctx, span := core.StartSpan(ctx, "ingest.run")
	defer span.End()

	run := &RunResult{StartedAt: p.now(), Results: []SourceResult{}}
	p.execute(ctx, run)
	run.FinishedAt = p.now()

	runsTotal.WithLabelValues(run.Status).Inc()
	runDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	p.logger.InfoContext(ctx, "ingestion finished",
		"status", run.Status,
		"saved", run.SavedCount(),
		"geocoding_failed", run.GeocodingFailedCount(),
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)

	p.notify(ctx, run)

	return run, nil
}

func (p *Pipeline) acquire(ctx context.Context) (*core.Lock, error) {
	if p.redis == nil {
		return nil, nil
	}

	lock, err := p.redis.TryLock(ctx, LockKey, p.lockTTL)
	switch {
	case errors.Is(err, core.ErrLockHeld):
		return nil, core.ConflictError("ingestion already running")
	case err != nil:
		p.logger.WarnContext(ctx, "ingest lock unavailable, running without it", "error", err)
		return nil, nil
	}

	return lock, nil
}

func (p *Pipeline) execute(ctx context.Context, run *RunResult) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "ingestion panicked",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			run.Error = fmt.Sprintf("unexpected failure: %v", rec)
			core.SetSpanError(ctx, errors.New(run.Error))
			run.finalize()
		}
	}()

	if !p.fetcher.Configured() {
		p.logger.ErrorContext(ctx, ErrMissingAPIKey.Error())
		run.Error = ErrMissingAPIKey.Error()
		for _, src := range p.sources {
			run.Results = append(run.Results, SourceResult{
				ServiceName: src.Name,
				Error:       ErrMissingAPIKey.Error(),
			})
		}
		run.finalize()
		return
	}

	for _, src := range p.sources {
		run.Results = append(run.Results, SourceResult{ServiceName: src.Name})
		p.runSource(ctx, src, &run.Results[len(run.Results)-1])
	}
	run.finalize()
}

// runSource fills result in place so counts gathered before a panic survive.
func (p *Pipeline) runSource(ctx context.Context, src Source, result *SourceResult) {
	ctx, span := core.StartSpan(ctx, "ingest.source", attribute.String("source", src.Name))
	defer span.End()

	logger := p.logger.With("source", src.Name)

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "source panicked",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			result.Success = false
			result.Error = fmt.Sprintf("unexpected failure: %v", rec)
			core.SetSpanError(ctx, errors.New(result.Error))
		}
	}()

	items, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		logger.ErrorContext(ctx, "fetch source failed", "error", err)
		core.SetSpanError(ctx, err)
		result.Error = err.Error()
		return
	}

	for _, raw := range items {
		outcome := p.processItem(ctx, logger, raw)
		if outcome.saved {
			result.SavedCount++
		}
		if outcome.geocodeFailed {
			result.GeocodingFailedCount++
		}
	}

	result.Success = true
	itemsSaved.WithLabelValues(src.Name).Add(float64(result.SavedCount))
	geocodeFailures.WithLabelValues(src.Name).Add(float64(result.GeocodingFailedCount))
	core.AddSpanEvent(ctx, "source.done",
		attribute.Int("saved", result.SavedCount),
		attribute.Int("geocoding_failed", result.GeocodingFailedCount),
	)
}

type itemOutcome struct {
	saved         bool
	geocodeFailed bool
}

// processItem never panics: a panic while handling one item skips that item
// and leaves the rest of the source untouched.
func (p *Pipeline) processItem(
	ctx context.Context,
	logger *slog.Logger,
	raw any,
) (out itemOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "item panicked, skipping",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			out = itemOutcome{}
		}
	}()

	m, ok := raw.(map[string]any)
	if !ok {
		logger.WarnContext(ctx, "skipping non-object item", "type", fmt.Sprintf("%T", raw))
		return out
	}
	item := Item(m)

	pblancNo := item.PblancNo()
	if pblancNo == "" {
		logger.WarnContext(ctx, "skipping item without PBLANC_NO")
		return out
	}
	logger = logger.With("pblanc_no", pblancNo)

	existing, err := p.repo.FindByPblancNo(ctx, pblancNo)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		logger.ErrorContext(ctx, "lookup existing supply failed", "error", err)
		return out
	}

	supply, err := MapSupply(item)
	if err != nil {
		logger.ErrorContext(ctx, "map item failed", "error", err)
		return out
	}

	address := item.Address()
	if address != "" &&
		(existing == nil || !existing.HasCoordinates()) &&
		!supply.HasCoordinates() {
		coords, geoErr := p.geocoder.Geocode(ctx, address)
		if geoErr != nil {
			out.geocodeFailed = true
			logger.WarnContext(ctx, "geocoding failed", "address", address, "error", geoErr)
		} else {
			supply.Latitude = &coords.Latitude
			supply.Longitude = &coords.Longitude
		}
	}

	supply.CollectedAt = p.now()

	inserted, err := p.repo.Upsert(ctx, supply)
	if err != nil {
		logger.ErrorContext(ctx, "save supply failed", "error", err)
		return out
	}

	logger.DebugContext(ctx, "supply saved", "inserted", inserted)
	out.saved = true
	return out
}

func (p *Pipeline) notify(ctx context.Context, run *RunResult) {
	if p.notifier == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.logger.ErrorContext(ctx, "notifier panicked", "panic", rec)
		}
	}()

	if err := p.notifier.Notify(context.WithoutCancel(ctx), run); err != nil {
		p.logger.WarnContext(ctx, "send ingestion notification failed", "error", err)
	}
}
