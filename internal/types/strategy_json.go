package types

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/quantvis/strata/pkg/errors"
)

const (
	nodeTypeCondition = "condition"
	nodeTypeGroup     = "group"
)

// MarshalJSON implements json.Marshaler. Each node is tagged with its variant
// so the closed sum can be reconstructed on the way back in.
func (c StrategyCondition) MarshalJSON() ([]byte, error) {
	type alias StrategyCondition

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: nodeTypeCondition, alias: alias(c)})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *StrategyCondition) UnmarshalJSON(data []byte) error {
	type alias StrategyCondition

	var out alias
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}

	*c = StrategyCondition(out)

	return nil
}

// MarshalJSON implements json.Marshaler.
func (g LogicGroup) MarshalJSON() ([]byte, error) {
	children := make([]json.RawMessage, 0, len(g.Children))

	for _, child := range g.Children {
		data, err := json.Marshal(child)
		if err != nil {
			return nil, err
		}

		children = append(children, data)
	}

	return json.Marshal(struct {
		Type     string            `json:"type"`
		Operator LogicOperator     `json:"operator"`
		Children []json.RawMessage `json:"children"`
	}{Type: nodeTypeGroup, Operator: g.Operator, Children: children})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching each child on its
// "type" tag.
func (g *LogicGroup) UnmarshalJSON(data []byte) error {
	var raw struct {
		Operator LogicOperator     `json:"operator"`
		Children []json.RawMessage `json:"children"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	children := make([]RuleNode, 0, len(raw.Children))

	for _, childData := range raw.Children {
		child, err := decodeRuleNode(childData)
		if err != nil {
			return err
		}

		children = append(children, child)
	}

	g.Operator = raw.Operator
	g.Children = children

	return nil
}

func decodeRuleNode(data []byte) (RuleNode, error) {
	var header struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &header); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyParseError, "failed to decode rule node", err)
	}

	switch header.Type {
	case nodeTypeCondition:
		var condition StrategyCondition
		if err := json.Unmarshal(data, &condition); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStrategyParseError, "failed to decode condition node", err)
		}

		return condition, nil
	case nodeTypeGroup:
		var group LogicGroup
		if err := json.Unmarshal(data, &group); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStrategyParseError, "failed to decode group node", err)
		}

		return group, nil
	default:
		return nil, errors.Newf(errors.ErrCodeStrategyParseError, "unknown rule node type %q", header.Type)
	}
}

// ParseVisualStrategy decodes and structurally validates a strategy from its
// JSON form. This is the single entry point for strategy loading; a strategy
// that parses here never raises during evaluation.
func ParseVisualStrategy(data []byte) (VisualStrategy, error) {
	var strategy VisualStrategy
	if err := json.Unmarshal(data, &strategy); err != nil {
		return VisualStrategy{}, errors.Wrap(errors.ErrCodeStrategyParseError, "failed to parse strategy JSON", err)
	}

	if err := strategy.Validate(); err != nil {
		return VisualStrategy{}, err
	}

	return strategy, nil
}

// GenerateSchema generates a JSON schema for VisualStrategy, used by the
// dashboard's strategy builder for client-side validation.
func (s *VisualStrategy) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t == reflect.TypeOf((*RuleNode)(nil)).Elem():
				return &jsonschema.Schema{Type: "object"}
			case t.String() == "optional.Option[int]":
				return &jsonschema.Schema{Type: "integer"}
			case t.String() == "optional.Option[float64]":
				return &jsonschema.Schema{Type: "number"}
			case t.String() == "optional.Option[string]":
				return &jsonschema.Schema{Type: "string"}
			case strings.Contains(t.String(), "optional.Option[github.com/quantvis/strata/internal/types.PriceSource]"):
				return &jsonschema.Schema{Type: "string"}
			case strings.Contains(t.String(), "optional.Option[github.com/quantvis/strata/internal/types.IndicatorConfig]"):
				return &jsonschema.Schema{Type: "object"}
			default:
				return nil
			}
		},
	}

	schema := reflector.Reflect(s)

	schema.Title = "visual-strategy"
	schema.Description = "Strategy definition produced by the visual strategy builder"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates the VisualStrategy JSON schema as a string.
func (s *VisualStrategy) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(s.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
