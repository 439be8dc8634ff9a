package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/history"
	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/marketdata"
	"github.com/quantvis/strata/internal/metrics"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

// cancellationCheckInterval is how many bars the run loop processes between
// context checks. The loop itself never blocks, so a coarse interval keeps
// the check off the hot path.
const cancellationCheckInterval = 256

// ProgressCallback reports run progress as processed bars over total bars.
type ProgressCallback func(current, total int)

// Backtest drives a full run: fetch candles once, compile the strategy,
// walk the bars through the position manager and aggregate the result.
// Identical candles, strategy and config always reproduce identical trades,
// equity curves and metrics.
type Backtest struct {
	provider marketdata.Provider
	registry indicator.Registry
	calendar calendar.Calendar
	history  history.Store
	logger   *logger.Logger
}

// NewBacktest wires a backtest over its collaborators. history may be nil
// when runs should not be persisted.
func NewBacktest(provider marketdata.Provider, registry indicator.Registry, cal calendar.Calendar, store history.Store, logger *logger.Logger) *Backtest {
	return &Backtest{
		provider: provider,
		registry: registry,
		calendar: cal,
		history:  store,
		logger:   logger,
	}
}

// Run executes one backtest. The error is non-nil only for setup failures
// and cancellation; a run over valid inputs always yields a complete result,
// even when no trade ever opens.
func (b *Backtest) Run(ctx context.Context, strategy types.VisualStrategy, config RunConfig, onProgress optional.Option[ProgressCallback]) (types.BacktestResult, error) {
	startedAt := time.Now()

	result, err := b.run(ctx, strategy, config, onProgress)

	metrics.BacktestDurationSeconds.Observe(time.Since(startedAt).Seconds())
	if err != nil {
		metrics.BacktestRunsTotal.WithLabelValues("error").Inc()
		return types.BacktestResult{}, err
	}

	metrics.BacktestRunsTotal.WithLabelValues("ok").Inc()
	metrics.TradesSimulatedTotal.Add(float64(len(result.Trades)))

	return result, nil
}

func (b *Backtest) run(ctx context.Context, strategy types.VisualStrategy, config RunConfig, onProgress optional.Option[ProgressCallback]) (types.BacktestResult, error) {
	if err := config.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if b.provider == nil {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestNoDatasource, "no market data provider configured")
	}

	candles, err := b.provider.GetCandles(ctx, strategy.Asset, config.StartTime, config.EndTime)
	if err != nil {
		return types.BacktestResult{}, err
	}

	if len(candles) == 0 {
		return types.BacktestResult{}, errors.Newf(errors.ErrCodeDataNotFound, "no candles for asset %s in the requested window", strategy.Asset)
	}

	evaluator, err := CompileStrategy(strategy, b.registry, indicator.Context{
		Candles:  candles,
		Calendar: b.calendar,
	})
	if err != nil {
		return types.BacktestResult{}, err
	}

	b.logger.Info("starting backtest",
		zap.String("strategy", strategy.Name),
		zap.String("asset", string(strategy.Asset)),
		zap.Int("candles", len(candles)),
	)

	manager := NewPositionManager(strategy.Direction, strategy.StopLossPct, strategy.TakeProfitPct, config.InitialCapital)
	equityCurve := make([]types.EquityPoint, 0, len(candles))

	for bar, candle := range candles {
		if bar%cancellationCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
			}
		}

		manager.ProcessBar(bar, candle, evaluator.EvaluateEntry(bar), evaluator.EvaluateExit(bar))

		equityCurve = append(equityCurve, types.EquityPoint{
			Time:   candle.Time,
			Equity: manager.Equity(candle.Close),
		})

		if onProgress.IsSome() && (bar+1)%cancellationCheckInterval == 0 {
			onProgress.Unwrap()(bar+1, len(candles))
		}
	}

	lastBar := len(candles) - 1
	manager.CloseAtEnd(lastBar, candles[lastBar])
	equityCurve[lastBar].Equity = manager.Equity(candles[lastBar].Close)

	if onProgress.IsSome() {
		onProgress.Unwrap()(len(candles), len(candles))
	}

	trades := manager.Completed()

	result := types.BacktestResult{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		StrategyID:     strategy.ID,
		StrategyName:   strategy.Name,
		Asset:          strategy.Asset,
		InitialCapital: config.InitialCapital,
		FinalEquity:    equityCurve[lastBar].Equity,
		Trades:         trades,
		EquityCurve:    equityCurve,
		Metrics:        ComputeMetrics(trades, equityCurve, config.InitialCapital),
		Candles:        candles,
	}

	b.persistRun(result)

	b.logger.Info("backtest finished",
		zap.String("run_id", result.ID),
		zap.Int("trades", len(trades)),
		zap.Float64("final_equity", result.FinalEquity),
	)

	return result, nil
}

// persistRun hands the result to the history store without blocking the
// caller. A failed save is logged and counted, never propagated.
func (b *Backtest) persistRun(result types.BacktestResult) {
	if b.history == nil {
		return
	}

	go func() {
		if err := b.history.SaveRun(context.Background(), result); err != nil {
			metrics.HistorySaveFailuresTotal.Inc()
			b.logger.Warn("failed to save run history",
				zap.String("run_id", result.ID),
				zap.Error(err),
			)
		}
	}()
}
