package engine

import (
	"math"

	"github.com/quantvis/strata/internal/types"
)

// periodsPerYear annualizes the Sharpe ratio for daily bars.
const periodsPerYear = 252

// ComputeMetrics aggregates a run's trades and equity curve into summary
// metrics. Degenerate inputs (no trades, flat equity, too few points) yield
// zeros, never NaN or Inf.
func ComputeMetrics(trades []types.Position, equityCurve []types.EquityPoint, initialCapital float64) types.Metrics {
	metrics := types.Metrics{
		TradeCount: len(trades),
	}

	for _, trade := range trades {
		if trade.IsWin() {
			metrics.WinningTrades++
		} else {
			metrics.LosingTrades++
		}
	}

	if metrics.TradeCount > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TradeCount)
	}

	if len(equityCurve) > 0 && initialCapital > 0 {
		finalEquity := equityCurve[len(equityCurve)-1].Equity
		metrics.TotalReturn = finalEquity/initialCapital - 1
	}

	metrics.MaxDrawdown = maxDrawdown(equityCurve)
	metrics.SharpeRatio = sharpeRatio(equityCurve)

	return metrics
}

// maxDrawdown is the largest peak-to-trough equity decline, as a positive
// fraction of the peak.
func maxDrawdown(equityCurve []types.EquityPoint) float64 {
	var peak, worst float64

	for _, point := range equityCurve {
		if point.Equity > peak {
			peak = point.Equity
		}

		if peak <= 0 {
			continue
		}

		drawdown := (peak - point.Equity) / peak
		if drawdown > worst {
			worst = drawdown
		}
	}

	return worst
}

// sharpeRatio annualizes the mean over the standard deviation of per-bar
// equity returns. Fewer than two points or zero variance gives 0.
func sharpeRatio(equityCurve []types.EquityPoint) float64 {
	if len(equityCurve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equityCurve)-1)

	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, equityCurve[i].Equity/prev-1)
	}

	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}

	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(len(returns))

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(periodsPerYear)
}
