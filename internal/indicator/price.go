package indicator

import (
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// Price exposes raw candle fields, prior-bar levels and auxiliary overlay
// values as indicator series, so conditions can compare against them like
// any computed indicator.
type Price struct {
	kind types.IndicatorKind
}

// NewPrice creates a price-field indicator for the given kind.
func NewPrice(kind types.IndicatorKind) Indicator {
	return &Price{kind: kind}
}

// Kind implements Indicator.
func (p *Price) Kind() types.IndicatorKind {
	return p.kind
}

// Compute implements Indicator. Raw fields are defined on every bar;
// prior-bar levels are undefined on bar 0; the FX rate is defined only on
// bars whose candle carries the auxiliary value.
func (p *Price) Compute(ctx Context, _ types.IndicatorConfig) (Series, error) {
	candles := ctx.Candles
	series := NewSeries(len(candles))

	for i, candle := range candles {
		switch p.kind {
		case types.IndicatorKindOpen:
			series.Set(i, candle.Open)
		case types.IndicatorKindHigh:
			series.Set(i, candle.High)
		case types.IndicatorKindLow:
			series.Set(i, candle.Low)
		case types.IndicatorKindClose:
			series.Set(i, candle.Close)
		case types.IndicatorKindVolume:
			series.Set(i, candle.Volume)
		case types.IndicatorKindPrevHigh:
			if i > 0 {
				series.Set(i, candles[i-1].High)
			}
		case types.IndicatorKindPrevLow:
			if i > 0 {
				series.Set(i, candles[i-1].Low)
			}
		case types.IndicatorKindFXRate:
			if rate, ok := candle.AuxValue(types.AuxFXRate); ok {
				series.Set(i, rate)
			}
		default:
			return Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "price indicator cannot compute kind %s", p.kind)
		}
	}

	return series, nil
}
