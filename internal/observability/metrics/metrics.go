package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "clientdesk_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	dashboardRequests *prometheus.CounterVec
	dashboardLatency  *prometheus.HistogramVec

	statementGenerateTotal   *prometheus.CounterVec
	statementGenerateLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	digestRuns *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		dashboardRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dashboard_requests_total",
				Help: "Total dashboard snapshot requests by result",
			},
			[]string{"result"},
		)
		dashboardLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dashboard_request_seconds",
				Help:    "Dashboard snapshot latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		statementGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "statement_generate_total",
				Help: "Total revenue statement builds by result",
			},
			[]string{"result"},
		)
		statementGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "statement_generate_seconds",
				Help:    "Revenue statement build latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_requests_total",
				Help: "Total statement export requests by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_request_seconds",
				Help:    "Statement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		digestRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "digest_runs_total",
				Help: "Total daily digest runs by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			dashboardRequests,
			dashboardLatency,
			statementGenerateTotal,
			statementGenerateLatency,
			exportTotal,
			exportLatency,
			digestRuns,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveDashboard records dashboard request duration and result.
func ObserveDashboard(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if dashboardRequests != nil {
		dashboardRequests.WithLabelValues(result).Inc()
	}
	if dashboardLatency != nil {
		dashboardLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveStatementGenerate records statement build latency and result.
func ObserveStatementGenerate(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if statementGenerateTotal != nil {
		statementGenerateTotal.WithLabelValues(result).Inc()
	}
	if statementGenerateLatency != nil {
		statementGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency, format and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncDigestRun increments the digest run counter.
func IncDigestRun(result string) {
	if result == "" {
		result = resultSuccess
	}
	if digestRuns != nil {
		digestRuns.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
