package engine

import (
	"math"

	"github.com/quantvis/strata/internal/indicator"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// equalsEpsilon is the relative tolerance for the equals comparator. Exact
// equality on floating values is not reliable.
const equalsEpsilon = 1e-9

// Evaluator answers "is this rule tree true at bar t" against series that
// were computed exactly once at compile time. Crossover comparators read the
// current and previous bar from the same precomputed series, so the two
// reads can never drift.
type Evaluator struct {
	strategy types.VisualStrategy
	series   map[string]indicator.Series
}

// CompileStrategy validates the strategy and precomputes every distinct
// indicator series it references. All structural and configuration errors
// surface here, before any bar is evaluated; Evaluate itself never fails.
func CompileStrategy(strategy types.VisualStrategy, registry indicator.Registry, ctx indicator.Context) (*Evaluator, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	configs := collectConfigs(strategy)
	series := make(map[string]indicator.Series, len(configs))

	for _, config := range configs {
		key := config.Key()
		if _, exists := series[key]; exists {
			continue
		}

		ind, err := registry.Get(config.Kind)
		if err != nil {
			return nil, err
		}

		computed, err := ind.Compute(ctx, config)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute indicator %s", config.Kind)
		}

		series[key] = computed
	}

	return &Evaluator{
		strategy: strategy,
		series:   series,
	}, nil
}

// collectConfigs gathers every indicator configuration referenced by the
// strategy's entry and exit trees.
func collectConfigs(strategy types.VisualStrategy) []types.IndicatorConfig {
	var configs []types.IndicatorConfig

	var walk func(node types.RuleNode)
	walk = func(node types.RuleNode) {
		switch n := node.(type) {
		case types.LogicGroup:
			for _, child := range n.Children {
				walk(child)
			}
		case types.StrategyCondition:
			configs = append(configs, n.Left)
			if n.Right.IsSome() {
				configs = append(configs, n.Right.Unwrap())
			}
		}
	}

	walk(strategy.Entry)
	walk(strategy.Exit)

	return configs
}

// EvaluateEntry evaluates the strategy's entry tree at the given bar.
func (e *Evaluator) EvaluateEntry(bar int) bool {
	return e.evaluateNode(e.strategy.Entry, bar)
}

// EvaluateExit evaluates the strategy's exit tree at the given bar.
func (e *Evaluator) EvaluateExit(bar int) bool {
	return e.evaluateNode(e.strategy.Exit, bar)
}

func (e *Evaluator) evaluateNode(node types.RuleNode, bar int) bool {
	switch n := node.(type) {
	case types.LogicGroup:
		if n.Operator == types.LogicOperatorAnd {
			// AND over an empty child list is vacuously true.
			for _, child := range n.Children {
				if !e.evaluateNode(child, bar) {
					return false
				}
			}

			return true
		}

		// OR over an empty child list is false.
		for _, child := range n.Children {
			if e.evaluateNode(child, bar) {
				return true
			}
		}

		return false
	case types.StrategyCondition:
		return e.evaluateCondition(n, bar)
	default:
		return false
	}
}

// evaluateCondition resolves both operands and applies the comparator.
// Any operand still inside its warm-up window makes the condition false
// (fail-closed), never an error.
func (e *Evaluator) evaluateCondition(condition types.StrategyCondition, bar int) bool {
	left, leftOK := e.operand(condition.Left, bar)
	right, rightOK := e.rightOperand(condition, bar)

	switch condition.Comparator {
	case types.ComparatorGreaterThan:
		return leftOK && rightOK && left > right
	case types.ComparatorLessThan:
		return leftOK && rightOK && left < right
	case types.ComparatorEquals:
		return leftOK && rightOK && approximatelyEqual(left, right)
	case types.ComparatorCrossesAbove, types.ComparatorCrossesBelow:
		if !leftOK || !rightOK {
			return false
		}

		prevLeft, prevLeftOK := e.operand(condition.Left, bar-1)

		prevRight, prevRightOK := e.rightOperand(condition, bar-1)
		if !prevLeftOK || !prevRightOK {
			return false
		}

		if condition.Comparator == types.ComparatorCrossesAbove {
			return prevLeft <= prevRight && left > right
		}

		return prevLeft >= prevRight && left < right
	default:
		return false
	}
}

func (e *Evaluator) operand(config types.IndicatorConfig, bar int) (float64, bool) {
	series, exists := e.series[config.Key()]
	if !exists {
		return 0, false
	}

	return series.At(bar)
}

func (e *Evaluator) rightOperand(condition types.StrategyCondition, bar int) (float64, bool) {
	if condition.Threshold.IsSome() {
		return condition.Threshold.Unwrap(), true
	}

	if condition.Right.IsSome() {
		return e.operand(condition.Right.Unwrap(), bar)
	}

	return 0, false
}

func approximatelyEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))

	return math.Abs(a-b) <= equalsEpsilon*scale
}
