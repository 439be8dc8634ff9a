package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/types"
)

// Series is a dense per-bar value sequence aligned to candle index. Bars
// inside an indicator's warm-up window are undefined rather than zero, so a
// consumer can always tell "no value yet" apart from a real zero.
type Series struct {
	values  []float64
	defined []bool
}

// NewSeries creates an all-undefined series of the given length.
func NewSeries(length int) Series {
	return Series{
		values:  make([]float64, length),
		defined: make([]bool, length),
	}
}

// Len returns the number of bars in the series.
func (s Series) Len() int {
	return len(s.values)
}

// At returns the value at bar index i and whether it is defined. Out-of-range
// indexes are undefined, never a panic.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) {
		return 0, false
	}

	if !s.defined[i] {
		return 0, false
	}

	return s.values[i], true
}

// Set defines the value at bar index i.
func (s *Series) Set(i int, value float64) {
	s.values[i] = value
	s.defined[i] = true
}

// Context carries the immutable per-run inputs an indicator computes from.
type Context struct {
	// Candles is the full price series of the run, ordered by time.
	Candles []types.Candle
	// Calendar resolves seasonal event lookups. May be nil when the
	// strategy uses no seasonal kinds.
	Calendar calendar.Calendar
}

// Indicator computes one per-bar value series for a single indicator kind.
// Compute is pure: the same context and config always produce the same
// series, and the context is never mutated.
type Indicator interface {
	// Kind returns the indicator kind this instance computes.
	Kind() types.IndicatorKind
	// Compute returns one value (or undefined) per input candle.
	Compute(ctx Context, config types.IndicatorConfig) (Series, error)
}

// periodOrDefault resolves the configured lookback period, falling back to
// the kind's documented default.
func periodOrDefault(period optional.Option[int], fallback int) int {
	if period.IsSome() {
		return period.Unwrap()
	}

	return fallback
}

// sourceValues extracts the configured price field from each candle,
// defaulting to close.
func sourceValues(candles []types.Candle, source optional.Option[types.PriceSource]) []float64 {
	selected := types.PriceSourceClose
	if source.IsSome() {
		selected = source.Unwrap()
	}

	values := make([]float64, len(candles))

	for i, candle := range candles {
		switch selected {
		case types.PriceSourceOpen:
			values[i] = candle.Open
		case types.PriceSourceHigh:
			values[i] = candle.High
		case types.PriceSourceLow:
			values[i] = candle.Low
		default:
			values[i] = candle.Close
		}
	}

	return values
}
