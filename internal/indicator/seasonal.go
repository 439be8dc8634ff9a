package indicator

import (
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// Seasonal resolves calendar-event markers as indicator series. Favorable
// months materialize as 1/0 so they can participate in ordinary comparisons.
type Seasonal struct {
	kind types.IndicatorKind
}

// NewSeasonal creates a seasonal marker indicator for the given kind.
func NewSeasonal(kind types.IndicatorKind) Indicator {
	return &Seasonal{kind: kind}
}

// Kind implements Indicator.
func (s *Seasonal) Kind() types.IndicatorKind {
	return s.kind
}

// Compute implements Indicator. Seasonal series are defined on every bar;
// an unknown event or missing calendar is a configuration error surfaced
// before the run starts.
func (s *Seasonal) Compute(ctx Context, config types.IndicatorConfig) (Series, error) {
	if ctx.Calendar == nil {
		return Series{}, errors.New(errors.ErrCodeInvalidConfiguration, "seasonal indicator requires a calendar")
	}

	if config.Event.IsNone() {
		return Series{}, errors.Newf(errors.ErrCodeMissingParameter, "indicator %s requires a calendar event", s.kind)
	}

	event := config.Event.Unwrap()
	series := NewSeries(len(ctx.Candles))

	for i, candle := range ctx.Candles {
		switch s.kind {
		case types.IndicatorKindDaysToEvent:
			days, err := ctx.Calendar.DaysToEvent(event, candle.Time)
			if err != nil {
				return Series{}, err
			}

			series.Set(i, float64(days))
		case types.IndicatorKindFavorableMonth:
			favorable, err := ctx.Calendar.IsFavorableMonth(event, candle.Time)
			if err != nil {
				return Series{}, err
			}

			if favorable {
				series.Set(i, 1)
			} else {
				series.Set(i, 0)
			}
		default:
			return Series{}, errors.Newf(errors.ErrCodeIndicatorCalculation, "seasonal indicator cannot compute kind %s", s.kind)
		}
	}

	return series, nil
}
