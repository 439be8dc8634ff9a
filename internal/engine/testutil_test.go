package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testCandles builds daily candles with a flat range at each close.
func testCandles(closes ...float64) []types.Candle {
	candles := make([]types.Candle, len(closes))

	for i, close := range closes {
		candles[i] = types.Candle{
			Time:   testStart.AddDate(0, 0, i),
			Asset:  types.AssetGold,
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1000,
		}
	}

	return candles
}

// testCandlesOHLC builds daily candles from parallel slices.
func testCandlesOHLC(highs, lows, closes []float64) []types.Candle {
	candles := make([]types.Candle, len(closes))

	for i := range closes {
		candles[i] = types.Candle{
			Time:   testStart.AddDate(0, 0, i),
			Asset:  types.AssetGold,
			Open:   closes[i],
			High:   highs[i],
			Low:    lows[i],
			Close:  closes[i],
			Volume: 1000,
		}
	}

	return candles
}

// closeIndicator references the raw close series.
func closeIndicator() types.IndicatorConfig {
	return types.IndicatorConfig{Kind: types.IndicatorKindClose}
}

// thresholdCondition compares an indicator against a constant.
func thresholdCondition(left types.IndicatorConfig, comparator types.Comparator, threshold float64) types.StrategyCondition {
	return types.StrategyCondition{
		Left:       left,
		Comparator: comparator,
		Threshold:  optional.Some(threshold),
	}
}

// pairCondition compares two indicators.
func pairCondition(left types.IndicatorConfig, comparator types.Comparator, right types.IndicatorConfig) types.StrategyCondition {
	return types.StrategyCondition{
		Left:       left,
		Comparator: comparator,
		Right:      optional.Some(right),
	}
}

// group wraps nodes in a logic group.
func group(operator types.LogicOperator, children ...types.RuleNode) types.LogicGroup {
	return types.LogicGroup{Operator: operator, Children: children}
}

// testStrategy builds a valid strategy around the given trees.
func testStrategy(entry, exit types.LogicGroup) types.VisualStrategy {
	return types.VisualStrategy{
		ID:            "strategy-1",
		Name:          "test strategy",
		Asset:         types.AssetGold,
		Direction:     types.DirectionLong,
		Entry:         entry,
		Exit:          exit,
		StopLossPct:   0.5,
		TakeProfitPct: 10,
	}
}
