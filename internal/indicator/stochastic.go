package indicator

import (
	"github.com/quantvis/strata/internal/types"
)

const (
	defaultStochPeriod = 14
	// %D is the 3-period simple average of %K.
	stochSmoothPeriod = 3
)

// Stochastic computes the stochastic oscillator %K or %D line.
type Stochastic struct {
	kind types.IndicatorKind
}

// NewStochastic creates a stochastic indicator for %K or %D.
func NewStochastic(kind types.IndicatorKind) Indicator {
	return &Stochastic{kind: kind}
}

// Kind implements Indicator.
func (s *Stochastic) Kind() types.IndicatorKind {
	return s.kind
}

// Compute implements Indicator. %K is defined from bar period-1; %D needs
// two more bars for its smoothing window. A flat high/low range defines %K
// as 50 rather than dividing by zero.
func (s *Stochastic) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	period := periodOrDefault(config.Period, defaultStochPeriod)
	candles := ctx.Candles

	percentK := NewSeries(len(candles))

	for i := period - 1; i < len(candles); i++ {
		highest := candles[i].High
		lowest := candles[i].Low

		for j := i - period + 1; j <= i; j++ {
			if candles[j].High > highest {
				highest = candles[j].High
			}

			if candles[j].Low < lowest {
				lowest = candles[j].Low
			}
		}

		if highest == lowest {
			percentK.Set(i, 50)

			continue
		}

		percentK.Set(i, 100*(candles[i].Close-lowest)/(highest-lowest))
	}

	if s.kind == types.IndicatorKindStochK {
		return percentK, nil
	}

	// %D: simple average over the defined region of %K.
	percentD := NewSeries(len(candles))

	for i := period - 1 + stochSmoothPeriod - 1; i < len(candles); i++ {
		sum := 0.0

		for j := i - stochSmoothPeriod + 1; j <= i; j++ {
			value, _ := percentK.At(j)
			sum += value
		}

		percentD.Set(i, sum/float64(stochSmoothPeriod))
	}

	return percentD, nil
}
