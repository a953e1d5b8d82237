package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codefacts_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codefacts_extraction_seconds",
		Help:    "Time spent extracting facts from a parsed file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FactsExtracted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "codefacts_facts_total",
		Help: "Number of facts in the most recent snapshot, by kind.",
	}, []string{"kind"})

	FilesScanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codefacts_files_scanned",
		Help: "Number of files scanned in the most recent snapshot.",
	})

	FilesFailed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codefacts_files_failed",
		Help: "Number of files that failed parsing in the most recent snapshot.",
	})

	DeltaAdded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codefacts_delta_added",
		Help: "Facts added in the most recent delta.",
	})

	DeltaRemoved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codefacts_delta_removed",
		Help: "Facts removed in the most recent delta.",
	})

	DeltaModified = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codefacts_delta_modified",
		Help: "Facts modified in the most recent delta.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "codefacts_run_seconds",
		Help:    "End-to-end duration of an extraction run.",
		Buckets: prometheus.DefBuckets,
	})

	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codefacts_runs_total",
		Help: "Total number of extraction runs, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codefacts_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codefacts_watcher_rebuilds_total",
		Help: "Total number of rebuilds triggered by watch mode.",
	})
)
