package indicator

import (
	"github.com/quantvis/strata/internal/types"
)

const defaultRSIPeriod = 14

// RSI is the Relative Strength Index indicator, Wilder-smoothed.
type RSI struct{}

// NewRSI creates a new RSI indicator.
func NewRSI() Indicator {
	return &RSI{}
}

// Kind implements Indicator.
func (r *RSI) Kind() types.IndicatorKind {
	return types.IndicatorKindRSI
}

// Compute implements Indicator. A period-bar RSI needs period price changes,
// so the first period bars are undefined. When the mean loss over the window
// is zero the RSI is defined as 100, not a division error.
func (r *RSI) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultRSIPeriod)
	values := sourceValues(ctx.Candles, config.Source)
	series := NewSeries(len(values))

	if len(values) < period+1 {
		return series, nil
	}

	// First averages over the initial window.
	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	series.Set(period, rsiValue(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method.
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		series.Set(i, rsiValue(avgGain, avgLoss))
	}

	return series, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
