package indicator

import (
	"sync"

	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// Registry manages all available indicators.
type Registry interface {
	Register(indicator Indicator) error
	Get(kind types.IndicatorKind) (Indicator, error)
	List() []types.IndicatorKind
	Remove(kind types.IndicatorKind) error
}

// RegistryV1 manages all available indicators.
type RegistryV1 struct {
	indicators map[types.IndicatorKind]Indicator
	mu         sync.RWMutex
}

// NewRegistry creates an empty indicator registry.
func NewRegistry() Registry {
	return &RegistryV1{
		indicators: make(map[types.IndicatorKind]Indicator),
		mu:         sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry with every built-in indicator kind
// registered.
func NewDefaultRegistry() Registry {
	registry := NewRegistry()

	builtins := []Indicator{
		NewSMA(),
		NewEMA(),
		NewRSI(),
		NewMACD(types.IndicatorKindMACD),
		NewMACD(types.IndicatorKindMACDSignal),
		NewMACD(types.IndicatorKindMACDHistogram),
		NewStochastic(types.IndicatorKindStochK),
		NewStochastic(types.IndicatorKindStochD),
		NewATR(),
		NewBollingerBands(types.IndicatorKindBollingerUpper),
		NewBollingerBands(types.IndicatorKindBollingerMid),
		NewBollingerBands(types.IndicatorKindBollingerLower),
		NewPrice(types.IndicatorKindOpen),
		NewPrice(types.IndicatorKindHigh),
		NewPrice(types.IndicatorKindLow),
		NewPrice(types.IndicatorKindClose),
		NewPrice(types.IndicatorKindVolume),
		NewPrice(types.IndicatorKindPrevHigh),
		NewPrice(types.IndicatorKindPrevLow),
		NewPrice(types.IndicatorKindFXRate),
		NewPivot(types.IndicatorKindPivot),
		NewPivot(types.IndicatorKindPivotBC),
		NewPivot(types.IndicatorKindPivotTC),
		NewSeasonal(types.IndicatorKindDaysToEvent),
		NewSeasonal(types.IndicatorKindFavorableMonth),
	}

	for _, builtin := range builtins {
		// Register only fails on duplicates; the builtin list has none.
		_ = registry.Register(builtin)
	}

	return registry
}

// Register adds an indicator to the registry.
func (r *RegistryV1) Register(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := indicator.Kind()
	if _, exists := r.indicators[kind]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator %s already registered", kind)
	}

	r.indicators[kind] = indicator

	return nil
}

// Get retrieves an indicator by kind.
func (r *RegistryV1) Get(kind types.IndicatorKind) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[kind]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", kind)
	}

	return indicator, nil
}

// List returns all registered indicator kinds.
func (r *RegistryV1) List() []types.IndicatorKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]types.IndicatorKind, 0, len(r.indicators))
	for kind := range r.indicators {
		kinds = append(kinds, kind)
	}

	return kinds
}

// Remove removes an indicator from the registry.
func (r *RegistryV1) Remove(kind types.IndicatorKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[kind]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", kind)
	}

	delete(r.indicators, kind)

	return nil
}
