package indicator

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/types"
	"github.com/stretchr/testify/suite"
)

type ATRTestSuite struct {
	suite.Suite
}

func TestATRSuite(t *testing.T) {
	suite.Run(t, new(ATRTestSuite))
}

func (suite *ATRTestSuite) TestConstantRange() {
	candles := candlesFromOHLC(
		[]float64{10, 11, 12, 13},
		[]float64{8, 9, 10, 11},
		[]float64{9, 10, 11, 12},
	)
	ctx := Context{Candles: candles}
	config := types.IndicatorConfig{Kind: types.IndicatorKindATR, Period: optional.Some(2)}

	series, err := NewATR().Compute(ctx, config)
	suite.Require().NoError(err)

	_, defined := series.At(0)
	suite.False(defined)

	// Every true range is 2, so the smoothed average stays at 2.
	for i := 1; i < series.Len(); i++ {
		value, ok := series.At(i)
		suite.Require().True(ok)
		suite.InDelta(2.0, value, 1e-12)
	}
}

func (suite *ATRTestSuite) TestGapUsesPreviousClose() {
	// Second bar gaps above the prior close: TR = high - prevClose.
	candles := candlesFromOHLC(
		[]float64{10, 20},
		[]float64{8, 18},
		[]float64{9, 19},
	)
	ctx := Context{Candles: candles}
	config := types.IndicatorConfig{Kind: types.IndicatorKindATR, Period: optional.Some(2)}

	series, err := NewATR().Compute(ctx, config)
	suite.Require().NoError(err)

	// TR0 = 2, TR1 = max(2, |20-9|, |18-9|) = 11; ATR = 6.5.
	value, defined := series.At(1)
	suite.True(defined)
	suite.InDelta(6.5, value, 1e-12)
}
