package indicator

import (
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// Standard MACD convention: 12/26 EMAs with a 9-period signal line.
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// MACD computes the MACD line, signal line or histogram depending on the
// kind it was constructed with.
type MACD struct {
	kind types.IndicatorKind
}

// NewMACD creates a MACD indicator for one of the MACD kinds.
func NewMACD(kind types.IndicatorKind) Indicator {
	return &MACD{kind: kind}
}

// Kind implements Indicator.
func (m *MACD) Kind() types.IndicatorKind {
	return m.kind
}

// Compute implements Indicator. The MACD line is defined once the slow EMA
// is (bar 25); the signal and histogram need 9 MACD values on top of that.
func (m *MACD) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	values := sourceValues(ctx.Candles, config.Source)

	fast := emaSeries(values, macdFastPeriod)
	slow := emaSeries(values, macdSlowPeriod)

	macdLine := NewSeries(len(values))

	for i := 0; i < len(values); i++ {
		fastValue, fastOK := fast.At(i)

		slowValue, slowOK := slow.At(i)
		if fastOK && slowOK {
			macdLine.Set(i, fastValue-slowValue)
		}
	}

	if m.kind == types.IndicatorKindMACD {
		return macdLine, nil
	}

	signal := emaOfSeries(macdLine, macdSignalPeriod)
	if m.kind == types.IndicatorKindMACDSignal {
		return signal, nil
	}

	if m.kind == types.IndicatorKindMACDHistogram {
		histogram := NewSeries(len(values))

		for i := 0; i < len(values); i++ {
			macdValue, macdOK := macdLine.At(i)

			signalValue, signalOK := signal.At(i)
			if macdOK && signalOK {
				histogram.Set(i, macdValue-signalValue)
			}
		}

		return histogram, nil
	}

	return Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "MACD cannot compute kind %s", m.kind)
}

// emaOfSeries computes an EMA over the defined region of an input series,
// seeding with the SMA of the first period defined values.
func emaOfSeries(input Series, period int) Series {
	series := NewSeries(input.Len())

	// Find where the input becomes defined.
	start := -1

	for i := 0; i < input.Len(); i++ {
		if _, ok := input.At(i); ok {
			start = i

			break
		}
	}

	if start < 0 || input.Len()-start < period {
		return series
	}

	sum := 0.0

	for i := start; i < start+period; i++ {
		value, _ := input.At(i)
		sum += value
	}

	ema := sum / float64(period)
	series.Set(start+period-1, ema)

	multiplier := 2.0 / (float64(period) + 1.0)

	for i := start + period; i < input.Len(); i++ {
		value, _ := input.At(i)
		ema = (value-ema)*multiplier + ema
		series.Set(i, ema)
	}

	return series
}
