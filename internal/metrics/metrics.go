// Package metrics exposes the process-wide Prometheus instruments. The
// server mounts Handler() on /metrics; the engine records runs and trades as
// they happen.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BacktestRunsTotal counts completed backtest runs by outcome.
	BacktestRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "strata_backtest_runs_total",
		Help: "Number of backtest runs, partitioned by outcome.",
	}, []string{"status"})

	// BacktestDurationSeconds observes wall-clock run duration.
	BacktestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "strata_backtest_duration_seconds",
		Help:    "Wall-clock duration of backtest runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// TradesSimulatedTotal counts closed positions across all runs.
	TradesSimulatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strata_trades_simulated_total",
		Help: "Number of simulated round-trip trades across all runs.",
	})

	// HistorySaveFailuresTotal counts best-effort history writes that failed.
	HistorySaveFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "strata_history_save_failures_total",
		Help: "Number of failed best-effort history saves.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
