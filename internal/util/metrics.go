package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_files_processed_total",
		Help: "Total number of files ingested and committed",
	})

	FilesFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_files_failed_total",
		Help: "Total number of files rolled back",
	})

	RowsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_ingested_total",
		Help: "Total number of purchase rows written",
	})

	RowsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_skipped_total",
		Help: "Total number of purchase rows skipped",
	}, []string{"reason"})

	StoresCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_stores_created_total",
		Help: "Total number of new store rows",
	})

	ProvidersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_providers_created_total",
		Help: "Total number of new provider rows",
	})

	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_products_created_total",
		Help: "Total number of new product rows",
	})

	PricesUpsertedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_prices_upserted_total",
		Help: "Total number of price upserts",
	})

	CoercionStringFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_coercion_string_fallbacks_total",
		Help: "Values that failed numeric conversion and degraded to string",
	})

	ProbeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_probe_latency_seconds",
		Help:    "Latency of provider reachability probes",
		Buckets: prometheus.DefBuckets,
	})

	ProbeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_probe_failures_total",
		Help: "Reachability probes that failed or returned non-200",
	})
)
