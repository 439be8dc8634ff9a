package indicator

import (
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// Pivot computes central-pivot-range levels from the prior bar's OHLC:
// pivot = (H+L+C)/3, bottom central = (H+L)/2, top central = 2*pivot - BC.
type Pivot struct {
	kind types.IndicatorKind
}

// NewPivot creates a pivot-range indicator for one level kind.
func NewPivot(kind types.IndicatorKind) Indicator {
	return &Pivot{kind: kind}
}

// Kind implements Indicator.
func (p *Pivot) Kind() types.IndicatorKind {
	return p.kind
}

// Compute implements Indicator. Levels derive from the prior period, so
// bar 0 is undefined.
func (p *Pivot) Compute(ctx Context, _ types.IndicatorConfig) (Series, error) {
	candles := ctx.Candles
	series := NewSeries(len(candles))

	for i := 1; i < len(candles); i++ {
		prior := candles[i-1]

		pivot := (prior.High + prior.Low + prior.Close) / 3
		bottomCentral := (prior.High + prior.Low) / 2
		topCentral := 2*pivot - bottomCentral

		switch p.kind {
		case types.IndicatorKindPivot:
			series.Set(i, pivot)
		case types.IndicatorKindPivotBC:
			series.Set(i, bottomCentral)
		case types.IndicatorKindPivotTC:
			series.Set(i, topCentral)
		default:
			return Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "pivot indicator cannot compute kind %s", p.kind)
		}
	}

	return series, nil
}
