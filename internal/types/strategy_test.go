package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

// testStrategy builds a valid two-level strategy:
// entry: RSI(14) < 30 AND close > EMA(200); exit: RSI(14) > 70.
func testStrategy() VisualStrategy {
	return VisualStrategy{
		ID:        uuid.NewString(),
		Name:      "rsi-dip-buyer",
		Asset:     AssetGold,
		Direction: DirectionLong,
		Entry: LogicGroup{
			Operator: LogicOperatorAnd,
			Children: []RuleNode{
				StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(14)},
					Comparator: ComparatorLessThan,
					Threshold:  optional.Some(30.0),
				},
				StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindClose},
					Comparator: ComparatorGreaterThan,
					Right:      optional.Some(IndicatorConfig{Kind: IndicatorKindEMA, Period: optional.Some(200)}),
				},
			},
		},
		Exit: LogicGroup{
			Operator: LogicOperatorOr,
			Children: []RuleNode{
				StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(14)},
					Comparator: ComparatorGreaterThan,
					Threshold:  optional.Some(70.0),
				},
			},
		},
		StopLossPct:   0.02,
		TakeProfitPct: 0.05,
	}
}

func countNodes(node RuleNode) int {
	group, ok := node.(LogicGroup)
	if !ok {
		return 1
	}

	count := 1
	for _, child := range group.Children {
		count += countNodes(child)
	}

	return count
}

func (suite *StrategyTestSuite) TestValidStrategy() {
	strategy := testStrategy()
	suite.NoError(strategy.Validate())
}

func (suite *StrategyTestSuite) TestJSONRoundTrip() {
	original := testStrategy()

	data, err := json.Marshal(original)
	suite.Require().NoError(err)

	restored, err := ParseVisualStrategy(data)
	suite.Require().NoError(err)

	suite.Equal(original.ID, restored.ID)
	suite.Equal(original.Asset, restored.Asset)
	suite.Equal(countNodes(original.Entry), countNodes(restored.Entry))
	suite.Equal(countNodes(original.Exit), countNodes(restored.Exit))
	suite.Equal(original.Entry.Operator, restored.Entry.Operator)
	suite.Equal(original.Exit.Operator, restored.Exit.Operator)

	// Leaf-level equality: comparators and indicator configs survive intact.
	originalLeaf := original.Entry.Children[0].(StrategyCondition)
	restoredLeaf := restored.Entry.Children[0].(StrategyCondition)
	suite.Equal(originalLeaf.Comparator, restoredLeaf.Comparator)
	suite.Equal(originalLeaf.Left.Key(), restoredLeaf.Left.Key())
	suite.Equal(originalLeaf.Threshold.Unwrap(), restoredLeaf.Threshold.Unwrap())

	// A second encode of the restored strategy is byte-identical.
	again, err := json.Marshal(restored)
	suite.Require().NoError(err)
	suite.JSONEq(string(data), string(again))
}

func (suite *StrategyTestSuite) TestNestedGroupRoundTrip() {
	strategy := testStrategy()
	strategy.Entry.Children = append(strategy.Entry.Children, LogicGroup{
		Operator: LogicOperatorOr,
		Children: []RuleNode{
			StrategyCondition{
				Left:       IndicatorConfig{Kind: IndicatorKindMACDHistogram},
				Comparator: ComparatorGreaterThan,
				Threshold:  optional.Some(0.0),
			},
		},
	})

	data, err := json.Marshal(strategy)
	suite.Require().NoError(err)

	restored, err := ParseVisualStrategy(data)
	suite.Require().NoError(err)
	suite.Equal(countNodes(strategy.Entry), countNodes(restored.Entry))

	nested, ok := restored.Entry.Children[2].(LogicGroup)
	suite.Require().True(ok, "nested group should decode as LogicGroup")
	suite.Equal(LogicOperatorOr, nested.Operator)
}

func (suite *StrategyTestSuite) TestEmptyGroupIsValid() {
	strategy := testStrategy()
	strategy.Exit = LogicGroup{Operator: LogicOperatorOr, Children: nil}
	suite.NoError(strategy.Validate())
}

func (suite *StrategyTestSuite) TestValidationErrors() {
	testCases := []struct {
		name     string
		mutate   func(s *VisualStrategy)
		wantCode errors.ErrorCode
	}{
		{
			name: "condition with both right forms",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindClose},
					Comparator: ComparatorGreaterThan,
					Right:      optional.Some(IndicatorConfig{Kind: IndicatorKindOpen}),
					Threshold:  optional.Some(1.0),
				}}
			},
			wantCode: errors.ErrCodeInvalidCondition,
		},
		{
			name: "condition with neither right form",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindClose},
					Comparator: ComparatorGreaterThan,
				}}
			},
			wantCode: errors.ErrCodeInvalidCondition,
		},
		{
			name: "unknown comparator",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindClose},
					Comparator: Comparator("approximately"),
					Threshold:  optional.Some(1.0),
				}}
			},
			wantCode: errors.ErrCodeInvalidComparator,
		},
		{
			name: "unknown indicator kind",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKind("vibes")},
					Comparator: ComparatorGreaterThan,
					Threshold:  optional.Some(1.0),
				}}
			},
			wantCode: errors.ErrCodeUnknownIndicator,
		},
		{
			name: "non-positive period",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(0)},
					Comparator: ComparatorGreaterThan,
					Threshold:  optional.Some(1.0),
				}}
			},
			wantCode: errors.ErrCodeInvalidPeriod,
		},
		{
			name: "seasonal kind without event",
			mutate: func(s *VisualStrategy) {
				s.Entry.Children = []RuleNode{StrategyCondition{
					Left:       IndicatorConfig{Kind: IndicatorKindDaysToEvent},
					Comparator: ComparatorLessThan,
					Threshold:  optional.Some(10.0),
				}}
			},
			wantCode: errors.ErrCodeMissingParameter,
		},
		{
			name:     "zero stop loss",
			mutate:   func(s *VisualStrategy) { s.StopLossPct = 0 },
			wantCode: errors.ErrCodeInvalidParameter,
		},
		{
			name:     "negative take profit",
			mutate:   func(s *VisualStrategy) { s.TakeProfitPct = -0.05 },
			wantCode: errors.ErrCodeInvalidParameter,
		},
		{
			name:     "unknown asset",
			mutate:   func(s *VisualStrategy) { s.Asset = Asset("TULIPS") },
			wantCode: errors.ErrCodeInvalidParameter,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			strategy := testStrategy()
			tc.mutate(&strategy)

			err := strategy.Validate()
			suite.Require().Error(err)
			suite.Equal(tc.wantCode, errors.GetCode(err))
			suite.True(errors.IsValidation(err))
		})
	}
}

func (suite *StrategyTestSuite) TestParseRejectsUnknownNodeType() {
	payload := `{
		"id": "x", "name": "x", "asset": "GOLD", "direction": "LONG",
		"entry": {"type": "group", "operator": "and", "children": [{"type": "mystery"}]},
		"exit": {"type": "group", "operator": "or", "children": []},
		"stop_loss_pct": 0.02, "take_profit_pct": 0.05
	}`

	_, err := ParseVisualStrategy([]byte(payload))
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeStrategyParseError, errors.GetCode(err))
}

func (suite *StrategyTestSuite) TestGenerateSchemaJSON() {
	strategy := testStrategy()

	schema, err := strategy.GenerateSchemaJSON()
	suite.Require().NoError(err)
	suite.Contains(schema, "visual-strategy")
	suite.Contains(schema, "stop_loss_pct")
}

func (suite *StrategyTestSuite) TestIndicatorConfigKey() {
	a := IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(14)}
	b := IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(14)}
	c := IndicatorConfig{Kind: IndicatorKindRSI, Period: optional.Some(21)}

	suite.Equal(a.Key(), b.Key())
	suite.NotEqual(a.Key(), c.Key())

	d := IndicatorConfig{Kind: IndicatorKindSMA, Period: optional.Some(10), Source: optional.Some(PriceSourceHigh)}
	e := IndicatorConfig{Kind: IndicatorKindSMA, Period: optional.Some(10), Source: optional.Some(PriceSourceLow)}
	suite.NotEqual(d.Key(), e.Key())
}
