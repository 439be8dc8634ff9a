package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/pkg/errors"
)

// IndicatorKind identifies one computable per-bar value series.
type IndicatorKind string

const (
	IndicatorKindSMA            IndicatorKind = "sma"
	IndicatorKindEMA            IndicatorKind = "ema"
	IndicatorKindRSI            IndicatorKind = "rsi"
	IndicatorKindMACD           IndicatorKind = "macd"
	IndicatorKindMACDSignal     IndicatorKind = "macd_signal"
	IndicatorKindMACDHistogram  IndicatorKind = "macd_histogram"
	IndicatorKindStochK         IndicatorKind = "stoch_k"
	IndicatorKindStochD         IndicatorKind = "stoch_d"
	IndicatorKindATR            IndicatorKind = "atr"
	IndicatorKindBollingerUpper IndicatorKind = "bollinger_upper"
	IndicatorKindBollingerMid   IndicatorKind = "bollinger_middle"
	IndicatorKindBollingerLower IndicatorKind = "bollinger_lower"
	IndicatorKindOpen           IndicatorKind = "open"
	IndicatorKindHigh           IndicatorKind = "high"
	IndicatorKindLow            IndicatorKind = "low"
	IndicatorKindClose          IndicatorKind = "close"
	IndicatorKindVolume         IndicatorKind = "volume"
	IndicatorKindPrevHigh       IndicatorKind = "prev_high"
	IndicatorKindPrevLow        IndicatorKind = "prev_low"
	IndicatorKindFXRate         IndicatorKind = "fx_rate"
	IndicatorKindPivot          IndicatorKind = "pivot"
	IndicatorKindPivotBC        IndicatorKind = "pivot_bc"
	IndicatorKindPivotTC        IndicatorKind = "pivot_tc"
	IndicatorKindDaysToEvent    IndicatorKind = "days_to_event"
	IndicatorKindFavorableMonth IndicatorKind = "favorable_month"
)

// AllIndicatorKinds returns every indicator kind the engine can compute.
func AllIndicatorKinds() []IndicatorKind {
	return []IndicatorKind{
		IndicatorKindSMA,
		IndicatorKindEMA,
		IndicatorKindRSI,
		IndicatorKindMACD,
		IndicatorKindMACDSignal,
		IndicatorKindMACDHistogram,
		IndicatorKindStochK,
		IndicatorKindStochD,
		IndicatorKindATR,
		IndicatorKindBollingerUpper,
		IndicatorKindBollingerMid,
		IndicatorKindBollingerLower,
		IndicatorKindOpen,
		IndicatorKindHigh,
		IndicatorKindLow,
		IndicatorKindClose,
		IndicatorKindVolume,
		IndicatorKindPrevHigh,
		IndicatorKindPrevLow,
		IndicatorKindFXRate,
		IndicatorKindPivot,
		IndicatorKindPivotBC,
		IndicatorKindPivotTC,
		IndicatorKindDaysToEvent,
		IndicatorKindFavorableMonth,
	}
}

// IsValid reports whether the kind is known to the engine.
func (k IndicatorKind) IsValid() bool {
	for _, kind := range AllIndicatorKinds() {
		if k == kind {
			return true
		}
	}

	return false
}

// AcceptsPeriod reports whether the kind uses a lookback period.
func (k IndicatorKind) AcceptsPeriod() bool {
	switch k {
	case IndicatorKindSMA, IndicatorKindEMA, IndicatorKindRSI,
		IndicatorKindStochK, IndicatorKindStochD, IndicatorKindATR,
		IndicatorKindBollingerUpper, IndicatorKindBollingerMid, IndicatorKindBollingerLower:
		return true
	default:
		return false
	}
}

// IsSeasonal reports whether the kind resolves through the seasonal calendar
// and therefore requires a named event.
func (k IndicatorKind) IsSeasonal() bool {
	return k == IndicatorKindDaysToEvent || k == IndicatorKindFavorableMonth
}

// PriceSource selects which candle field feeds a price-based indicator.
type PriceSource string

const (
	PriceSourceClose PriceSource = "close"
	PriceSourceOpen  PriceSource = "open"
	PriceSourceHigh  PriceSource = "high"
	PriceSourceLow   PriceSource = "low"
)

// IsValid reports whether the price source is recognized.
func (s PriceSource) IsValid() bool {
	switch s {
	case PriceSourceClose, PriceSourceOpen, PriceSourceHigh, PriceSourceLow:
		return true
	default:
		return false
	}
}

// Comparator is the relational operator of a strategy condition.
type Comparator string

const (
	ComparatorGreaterThan  Comparator = "gt"
	ComparatorLessThan     Comparator = "lt"
	ComparatorEquals       Comparator = "eq"
	ComparatorCrossesAbove Comparator = "crosses_above"
	ComparatorCrossesBelow Comparator = "crosses_below"
)

// IsValid reports whether the comparator is recognized.
func (c Comparator) IsValid() bool {
	switch c {
	case ComparatorGreaterThan, ComparatorLessThan, ComparatorEquals,
		ComparatorCrossesAbove, ComparatorCrossesBelow:
		return true
	default:
		return false
	}
}

// LogicOperator is the boolean combinator of a logic group.
type LogicOperator string

const (
	LogicOperatorAnd LogicOperator = "and"
	LogicOperatorOr  LogicOperator = "or"
)

// IsValid reports whether the operator is recognized.
func (o LogicOperator) IsValid() bool {
	return o == LogicOperatorAnd || o == LogicOperatorOr
}

// Direction is the trade direction of a strategy. Direction is an explicit
// strategy field; it is never inferred from the condition tree.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// IndicatorConfig selects one indicator series: a kind plus its optional
// lookback period, price source and calendar event name.
type IndicatorConfig struct {
	Kind IndicatorKind `yaml:"kind" json:"kind" jsonschema:"title=Kind,description=Indicator kind to compute"`
	// Period is the lookback window. None selects the kind's default
	// (e.g. 14 for RSI, 20 for Bollinger bands).
	Period optional.Option[int] `yaml:"period" json:"period" jsonschema:"title=Period"`
	// Source selects the candle price field. None selects close.
	Source optional.Option[PriceSource] `yaml:"source" json:"source" jsonschema:"title=Price Source"`
	// Event names the seasonal calendar event. Required for seasonal kinds.
	Event optional.Option[string] `yaml:"event" json:"event" jsonschema:"title=Calendar Event"`
}

// Key returns a stable identity for this configuration, used to memoize
// computed series per run.
func (c IndicatorConfig) Key() string {
	period := -1
	if c.Period.IsSome() {
		period = c.Period.Unwrap()
	}

	source := PriceSourceClose
	if c.Source.IsSome() {
		source = c.Source.Unwrap()
	}

	event := ""
	if c.Event.IsSome() {
		event = c.Event.Unwrap()
	}

	return fmt.Sprintf("%s|%d|%s|%s", c.Kind, period, source, event)
}

// RuleNode is one node of a strategy rule tree: either a StrategyCondition
// leaf or a LogicGroup internal node. The tree is a closed two-variant sum;
// nodes own their children by value so a tree is acyclic by construction.
type RuleNode interface {
	isRuleNode()
}

// StrategyCondition is a leaf node comparing a left indicator against either
// a right indicator or a literal threshold. Exactly one of Right and
// Threshold must be present.
type StrategyCondition struct {
	Left       IndicatorConfig                  `yaml:"left" json:"left"`
	Comparator Comparator                       `yaml:"comparator" json:"comparator"`
	Right      optional.Option[IndicatorConfig] `yaml:"right" json:"right"`
	Threshold  optional.Option[float64]         `yaml:"threshold" json:"threshold"`
}

func (StrategyCondition) isRuleNode() {}

// LogicGroup is an internal node combining child nodes with AND or OR.
// An empty child list is legal: AND evaluates vacuously true, OR false.
type LogicGroup struct {
	Operator LogicOperator `yaml:"operator" json:"operator"`
	Children []RuleNode    `yaml:"children" json:"children"`
}

func (LogicGroup) isRuleNode() {}

// VisualStrategy is a fully-specified strategy definition as produced by the
// dashboard's strategy builder. The engine receives it as an immutable input
// and never applies implicit defaults beyond the documented indicator ones.
type VisualStrategy struct {
	ID            string     `yaml:"id" json:"id" validate:"required"`
	Name          string     `yaml:"name" json:"name" validate:"required"`
	Asset         Asset      `yaml:"asset" json:"asset" validate:"required"`
	Direction     Direction  `yaml:"direction" json:"direction" validate:"required,oneof=LONG SHORT"`
	Entry         LogicGroup `yaml:"entry" json:"entry"`
	Exit          LogicGroup `yaml:"exit" json:"exit"`
	StopLossPct   float64    `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"required,gt=0" jsonschema:"title=Stop Loss,description=Stop loss as a fraction of entry price,minimum=0"`
	TakeProfitPct float64    `yaml:"take_profit_pct" json:"take_profit_pct" validate:"required,gt=0" jsonschema:"title=Take Profit,description=Take profit as a fraction of entry price,minimum=0"`
}

// maxRuleTreeDepth bounds tree recursion so a hand-built pathological tree
// fails validation instead of overflowing the stack.
const maxRuleTreeDepth = 64

// Validate checks the strategy structurally. It is called once at strategy
// load time; evaluation itself never raises for malformed trees.
func (s *VisualStrategy) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy fields", err)
	}

	if !s.Asset.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown asset %q", s.Asset)
	}

	if err := validateNode(s.Entry, 0); err != nil {
		return fmt.Errorf("invalid entry tree: %w", err)
	}

	if err := validateNode(s.Exit, 0); err != nil {
		return fmt.Errorf("invalid exit tree: %w", err)
	}

	return nil
}

func validateNode(node RuleNode, depth int) error {
	if depth > maxRuleTreeDepth {
		return errors.Newf(errors.ErrCodeInvalidCondition, "rule tree exceeds maximum depth of %d", maxRuleTreeDepth)
	}

	switch n := node.(type) {
	case LogicGroup:
		if !n.Operator.IsValid() {
			return errors.Newf(errors.ErrCodeInvalidParameter, "unknown logic operator %q", n.Operator)
		}

		for _, child := range n.Children {
			if err := validateNode(child, depth+1); err != nil {
				return err
			}
		}

		return nil
	case StrategyCondition:
		return validateCondition(n)
	default:
		return errors.Newf(errors.ErrCodeInvalidCondition, "unknown rule node type %T", node)
	}
}

func validateCondition(c StrategyCondition) error {
	if !c.Comparator.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidComparator, "unknown comparator %q", c.Comparator)
	}

	if c.Right.IsSome() == c.Threshold.IsSome() {
		return errors.New(errors.ErrCodeInvalidCondition,
			"condition must carry exactly one of a right indicator or a literal threshold")
	}

	if err := validateIndicatorConfig(c.Left); err != nil {
		return err
	}

	if c.Right.IsSome() {
		return validateIndicatorConfig(c.Right.Unwrap())
	}

	return nil
}

func validateIndicatorConfig(c IndicatorConfig) error {
	if !c.Kind.IsValid() {
		return errors.Newf(errors.ErrCodeUnknownIndicator, "unknown indicator kind %q", c.Kind)
	}

	if c.Period.IsSome() && c.Period.Unwrap() <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be positive, got %d", c.Period.Unwrap())
	}

	if c.Source.IsSome() && !c.Source.Unwrap().IsValid() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unknown price source %q", c.Source.Unwrap())
	}

	if c.Kind.IsSeasonal() && c.Event.IsNone() {
		return errors.Newf(errors.ErrCodeMissingParameter, "indicator %q requires a calendar event", c.Kind)
	}

	return nil
}
