package indicator

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/types"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestWarmUpWindow() {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	ctx := Context{Candles: candlesFromCloses(closes...)}
	config := types.IndicatorConfig{Kind: types.IndicatorKindRSI, Period: optional.Some(14)}

	series, err := NewRSI().Compute(ctx, config)
	suite.Require().NoError(err)

	// A 14-period RSI needs 14 price changes: bars 0-13 are undefined.
	for i := 0; i < 14; i++ {
		_, defined := series.At(i)
		suite.False(defined, "bar %d should be undefined", i)
	}

	_, defined := series.At(14)
	suite.True(defined)
}

func (suite *RSITestSuite) TestPerfectUptrendIsHundred() {
	ctx := Context{Candles: candlesFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)}
	config := types.IndicatorConfig{Kind: types.IndicatorKindRSI, Period: optional.Some(3)}

	series, err := NewRSI().Compute(ctx, config)
	suite.Require().NoError(err)

	// Mean loss is zero over every window, so RSI is defined as 100.
	for i := 3; i < series.Len(); i++ {
		value, defined := series.At(i)
		suite.True(defined)
		suite.InDelta(100.0, value, 1e-12)
	}
}

func (suite *RSITestSuite) TestWilderSmoothing() {
	ctx := Context{Candles: candlesFromCloses(1, 2, 3, 2, 2, 3)}
	config := types.IndicatorConfig{Kind: types.IndicatorKindRSI, Period: optional.Some(3)}

	series, err := NewRSI().Compute(ctx, config)
	suite.Require().NoError(err)

	// First window: gains (1,1,0), losses (0,0,1).
	value, defined := series.At(3)
	suite.True(defined)
	suite.InDelta(66.6667, value, 0.001)

	// Flat bar: both averages decay by the same factor, RSI unchanged.
	value, _ = series.At(4)
	suite.InDelta(66.6667, value, 0.001)

	value, _ = series.At(5)
	suite.InDelta(80.9524, value, 0.001)
}
