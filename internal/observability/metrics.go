// Package observability exposes Prometheus metrics for the dashboard
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// RendersTotal counts pipeline runs by figure and outcome
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_renders_total",
			Help: "Total number of dashboard pipeline runs",
		},
		[]string{"figure", "status"}, // figure: all, trends, weather; status: success, empty, failed
	)

	// RenderDuration measures pipeline duration in seconds
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bikeshare_render_duration_seconds",
			Help:    "Dashboard pipeline duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"figure"},
	)

	// DatasetRows tracks the row count of each loaded dataset
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bikeshare_dataset_rows",
			Help: "Number of rows in the loaded dataset",
		},
		[]string{"source"},
	)

	// DatasetLoads counts dataset reads by outcome
	DatasetLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_dataset_loads_total",
			Help: "Total number of dataset reads",
		},
		[]string{"source", "status"}, // status: success, failed
	)

	// CacheLookups counts table cache lookups by result
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_cache_lookups_total",
			Help: "Total number of dataset cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	// AssetFetches counts remote asset fetches by outcome
	AssetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bikeshare_asset_fetches_total",
			Help: "Total number of remote asset fetches",
		},
		[]string{"status"}, // status: success, cached, failed
	)
)
