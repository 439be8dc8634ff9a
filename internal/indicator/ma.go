package indicator

import (
	"github.com/quantvis/strata/internal/types"
)

const defaultMAPeriod = 20

// SMA is the simple moving average indicator.
type SMA struct{}

// NewSMA creates a new SMA indicator.
func NewSMA() Indicator {
	return &SMA{}
}

// Kind implements Indicator.
func (s *SMA) Kind() types.IndicatorKind {
	return types.IndicatorKindSMA
}

// Compute implements Indicator. Values are defined from bar period-1 onward.
func (s *SMA) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultMAPeriod)
	values := sourceValues(ctx.Candles, config.Source)

	return smaSeries(values, period), nil
}

// smaSeries computes a rolling mean over raw values using a running sum.
func smaSeries(values []float64, period int) Series {
	series := NewSeries(len(values))

	sum := 0.0

	for i, value := range values {
		sum += value
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			series.Set(i, sum/float64(period))
		}
	}

	return series
}

// EMA is the exponential moving average indicator.
type EMA struct{}

// NewEMA creates a new EMA indicator.
func NewEMA() Indicator {
	return &EMA{}
}

// Kind implements Indicator.
func (e *EMA) Kind() types.IndicatorKind {
	return types.IndicatorKindEMA
}

// Compute implements Indicator. The average is seeded with the SMA of the
// first period bars, so values are defined from bar period-1 onward.
func (e *EMA) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultMAPeriod)
	values := sourceValues(ctx.Candles, config.Source)

	return emaSeries(values, period), nil
}

func emaSeries(values []float64, period int) Series {
	series := NewSeries(len(values))
	if len(values) < period {
		return series
	}

	// Seed with the SMA of the first period bars.
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}

	ema := sum / float64(period)
	series.Set(period-1, ema)

	multiplier := 2.0 / (float64(period) + 1.0)

	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
		series.Set(i, ema)
	}

	return series
}
