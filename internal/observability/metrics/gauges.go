package metrics

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const gaugeQueryTimeout = 2 * time.Second

// registerDBMetrics registers gauges evaluated with a COUNT query per
// scrape. The counts are store-wide, not per user; they size the data
// set, they do not leak row contents.
func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	gauges := []struct {
		name  string
		help  string
		query string
	}{
		{
			name:  "implementations_active",
			help:  "Implementations currently in active status",
			query: `SELECT COUNT(*) FROM implementations WHERE status = 'active'`,
		},
		{
			name:  "deliveries_pending",
			help:  "Active implementations with delivery outstanding",
			query: `SELECT COUNT(*) FROM implementations WHERE status = 'active' AND delivery_completed = FALSE`,
		},
		{
			name:  "tasks_open",
			help:  "Tasks still in pending status",
			query: `SELECT COUNT(*) FROM tasks WHERE status = 'pending'`,
		},
	}

	for _, gauge := range gauges {
		query := gauge.query
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + gauge.name,
				Help: gauge.help,
			},
			func() float64 {
				ctx, cancel := context.WithTimeout(context.Background(), gaugeQueryTimeout)
				defer cancel()
				var count int64
				if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
					if logger != nil {
						logger.Printf("metrics: gauge query failed: %v", err)
					}
					return 0
				}
				return float64(count)
			},
		))
	}
}
