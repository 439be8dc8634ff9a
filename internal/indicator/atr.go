package indicator

import (
	"math"

	"github.com/quantvis/strata/internal/types"
)

const defaultATRPeriod = 14

// ATR is the Average True Range indicator, Wilder-smoothed.
type ATR struct{}

// NewATR creates a new ATR indicator.
func NewATR() Indicator {
	return &ATR{}
}

// Kind implements Indicator.
func (a *ATR) Kind() types.IndicatorKind {
	return types.IndicatorKindATR
}

// Compute implements Indicator. The first value is the simple average of the
// first period true ranges; values are defined from bar period-1 onward.
func (a *ATR) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultATRPeriod)
	candles := ctx.Candles
	series := NewSeries(len(candles))

	if len(candles) < period {
		return series, nil
	}

	trueRanges := make([]float64, len(candles))

	for i, candle := range candles {
		if i == 0 {
			trueRanges[i] = candle.High - candle.Low

			continue
		}

		previousClose := candles[i-1].Close
		trueRanges[i] = math.Max(candle.High-candle.Low,
			math.Max(math.Abs(candle.High-previousClose), math.Abs(candle.Low-previousClose)))
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trueRanges[i]
	}

	atr := sum / float64(period)
	series.Set(period-1, atr)

	for i := period; i < len(candles); i++ {
		atr = (atr*float64(period-1) + trueRanges[i]) / float64(period)
		series.Set(i, atr)
	}

	return series, nil
}
