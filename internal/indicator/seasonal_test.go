package indicator

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/calendar"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SeasonalTestSuite struct {
	suite.Suite
	ctx Context
}

func TestSeasonalSuite(t *testing.T) {
	suite.Run(t, new(SeasonalTestSuite))
}

func (suite *SeasonalTestSuite) SetupTest() {
	cal := calendar.NewStaticCalendar([]calendar.Event{
		{
			Name:            "planting",
			Month:           time.April,
			Day:             10,
			FavorableMonths: []time.Month{time.January},
		},
	})

	candles := candlesFromCloses(1, 2, 3)
	suite.ctx = Context{Candles: candles, Calendar: cal}
}

func (suite *SeasonalTestSuite) TestDaysToEvent() {
	config := types.IndicatorConfig{
		Kind:  types.IndicatorKindDaysToEvent,
		Event: optional.Some("planting"),
	}

	series, err := NewSeasonal(types.IndicatorKindDaysToEvent).Compute(suite.ctx, config)
	suite.Require().NoError(err)

	// Candles start 2024-01-01; the event is 2024-04-10, 100 days out.
	value, defined := series.At(0)
	suite.True(defined)
	suite.InDelta(100.0, value, 1e-12)

	value, _ = series.At(1)
	suite.InDelta(99.0, value, 1e-12)
}

func (suite *SeasonalTestSuite) TestFavorableMonth() {
	config := types.IndicatorConfig{
		Kind:  types.IndicatorKindFavorableMonth,
		Event: optional.Some("planting"),
	}

	series, err := NewSeasonal(types.IndicatorKindFavorableMonth).Compute(suite.ctx, config)
	suite.Require().NoError(err)

	// All candles are in January, the favorable month.
	for i := 0; i < series.Len(); i++ {
		value, defined := series.At(i)
		suite.True(defined)
		suite.InDelta(1.0, value, 1e-12)
	}
}

func (suite *SeasonalTestSuite) TestUnknownEvent() {
	config := types.IndicatorConfig{
		Kind:  types.IndicatorKindDaysToEvent,
		Event: optional.Some("ghost-event"),
	}

	_, err := NewSeasonal(types.IndicatorKindDaysToEvent).Compute(suite.ctx, config)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeUnknownCalendarEvent, errors.GetCode(err))
}

func (suite *SeasonalTestSuite) TestMissingCalendar() {
	config := types.IndicatorConfig{
		Kind:  types.IndicatorKindDaysToEvent,
		Event: optional.Some("planting"),
	}

	_, err := NewSeasonal(types.IndicatorKindDaysToEvent).Compute(Context{Candles: suite.ctx.Candles}, config)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
}
