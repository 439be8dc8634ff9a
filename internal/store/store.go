package store

import (
	"context"

	"github.com/quantvis/strata/internal/types"
)

// StrategyStore persists strategy definitions between dashboard sessions.
type StrategyStore interface {
	// SaveStrategy inserts or replaces a strategy by ID. The strategy is
	// validated before it is written.
	SaveStrategy(ctx context.Context, strategy types.VisualStrategy) error
	// GetStrategy returns one strategy by ID.
	GetStrategy(ctx context.Context, id string) (types.VisualStrategy, error)
	// ListStrategies returns all stored strategies ordered by name.
	ListStrategies(ctx context.Context) ([]types.VisualStrategy, error)
	// DeleteStrategy removes a strategy by ID. Deleting a missing strategy
	// is an error.
	DeleteStrategy(ctx context.Context, id string) error
}
