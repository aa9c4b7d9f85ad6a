// AngelaMos | 2026
// metrics.go

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Public data ingestion runs by final status",
		},
		[]string{"status"},
	)

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_run_duration_seconds",
		Help:    "Wall time of a full ingestion run",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	itemsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_items_saved_total",
			Help: "Housing supplies inserted or refreshed per source",
		},
		[]string{"source"},
	)

	geocodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_geocode_failures_total",
			Help: "Addresses that could not be geocoded per source",
		},
		[]string{"source"},
	)
)
