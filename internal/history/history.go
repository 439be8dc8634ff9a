package history

import (
	"context"

	"github.com/quantvis/strata/internal/types"
)

// Store persists completed backtest runs. Persistence is best-effort from
// the engine's point of view: a failed save never fails the run that
// produced the result.
type Store interface {
	// SaveRun persists one completed run.
	SaveRun(ctx context.Context, result types.BacktestResult) error
	// ListRuns returns run summaries for a strategy, newest first. Summaries
	// omit trades, equity curves and candles.
	ListRuns(ctx context.Context, strategyID string) ([]types.BacktestResult, error)
	// GetRun returns one full run by ID.
	GetRun(ctx context.Context, id string) (types.BacktestResult, error)
}
