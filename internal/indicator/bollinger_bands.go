package indicator

import (
	"math"

	"github.com/quantvis/strata/internal/types"
)

const (
	defaultBollingerPeriod = 20
	bollingerStdDevFactor  = 2.0
)

// BollingerBands computes the upper, middle or lower Bollinger band
// depending on the kind it was constructed with.
type BollingerBands struct {
	kind types.IndicatorKind
}

// NewBollingerBands creates a Bollinger band indicator for one band kind.
func NewBollingerBands(kind types.IndicatorKind) Indicator {
	return &BollingerBands{kind: kind}
}

// Kind implements Indicator.
func (b *BollingerBands) Kind() types.IndicatorKind {
	return b.kind
}

// Compute implements Indicator. Bands are the period SMA plus/minus two
// population standard deviations. When the variance over the window is zero
// the bands collapse onto the moving average instead of going NaN.
func (b *BollingerBands) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultBollingerPeriod)
	values := sourceValues(ctx.Candles, config.Source)
	series := NewSeries(len(values))

	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}

		mean := sum / float64(period)

		variance := 0.0

		for j := i - period + 1; j <= i; j++ {
			deviation := values[j] - mean
			variance += deviation * deviation
		}

		variance /= float64(period)

		stdDev := 0.0
		if variance > 0 {
			stdDev = math.Sqrt(variance)
		}

		switch b.kind {
		case types.IndicatorKindBollingerUpper:
			series.Set(i, mean+bollingerStdDevFactor*stdDev)
		case types.IndicatorKindBollingerLower:
			series.Set(i, mean-bollingerStdDevFactor*stdDev)
		default:
			series.Set(i, mean)
		}
	}

	return series, nil
}
