package engine

import (
	"math"
	"testing"

	"github.com/quantvis/strata/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func equityCurveOf(values ...float64) []types.EquityPoint {
	curve := make([]types.EquityPoint, len(values))

	for i, value := range values {
		curve[i] = types.EquityPoint{Time: testStart.AddDate(0, 0, i), Equity: value}
	}

	return curve
}

func (suite *MetricsTestSuite) TestNoTradesYieldsZeros() {
	metrics := ComputeMetrics(nil, equityCurveOf(1000, 1000, 1000), 1000)

	suite.Equal(0, metrics.TradeCount)
	suite.Zero(metrics.WinRate)
	suite.Zero(metrics.TotalReturn)
	suite.Zero(metrics.MaxDrawdown)
	suite.Zero(metrics.SharpeRatio)
	suite.False(math.IsNaN(metrics.WinRate))
}

func (suite *MetricsTestSuite) TestWinRate() {
	trades := []types.Position{
		{Status: types.PositionStatusClosed, PnL: 50},
		{Status: types.PositionStatusClosed, PnL: -20},
		{Status: types.PositionStatusClosed, PnL: 10},
		{Status: types.PositionStatusClosed, PnL: -5},
	}

	metrics := ComputeMetrics(trades, equityCurveOf(1000, 1035), 1000)

	suite.Equal(4, metrics.TradeCount)
	suite.Equal(2, metrics.WinningTrades)
	suite.Equal(2, metrics.LosingTrades)
	suite.InDelta(0.5, metrics.WinRate, 1e-12)
}

func (suite *MetricsTestSuite) TestTotalReturn() {
	metrics := ComputeMetrics(nil, equityCurveOf(1000, 1100, 1250), 1000)

	suite.InDelta(0.25, metrics.TotalReturn, 1e-12)
}

func (suite *MetricsTestSuite) TestMaxDrawdown() {
	// Peak 1200, trough 900: drawdown 25%.
	metrics := ComputeMetrics(nil, equityCurveOf(1000, 1200, 900, 1100, 1300), 1000)

	suite.InDelta(0.25, metrics.MaxDrawdown, 1e-12)
}

func (suite *MetricsTestSuite) TestSharpeZeroVariance() {
	// Constant per-bar return, zero standard deviation.
	metrics := ComputeMetrics(nil, equityCurveOf(1000, 2000, 4000), 1000)

	suite.Zero(metrics.SharpeRatio)
	suite.False(math.IsNaN(metrics.SharpeRatio))
}

func (suite *MetricsTestSuite) TestSharpeAnnualized() {
	// Returns +10% then -5%: mean 0.025, population stddev 0.075.
	metrics := ComputeMetrics(nil, equityCurveOf(1000, 1100, 1045), 1000)

	expected := 0.025 / 0.075 * math.Sqrt(252)
	suite.InDelta(expected, metrics.SharpeRatio, 1e-9)
}

func (suite *MetricsTestSuite) TestSingleEquityPoint() {
	metrics := ComputeMetrics(nil, equityCurveOf(1000), 1000)

	suite.Zero(metrics.SharpeRatio)
	suite.Zero(metrics.MaxDrawdown)
	suite.Zero(metrics.TotalReturn)
}
