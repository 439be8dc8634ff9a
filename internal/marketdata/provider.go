package marketdata

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/types"
)

// Provider serves historical candles for one backtest run. Candles come back
// sorted by time ascending; an open bound means "from the first candle" or
// "to the last candle" respectively.
type Provider interface {
	// GetCandles returns the asset's candles inside the inclusive window.
	GetCandles(ctx context.Context, asset types.Asset, start, end optional.Option[time.Time]) ([]types.Candle, error)
	// GetDateRange returns the first and last candle times available for the
	// asset.
	GetDateRange(ctx context.Context, asset types.Asset) (types.DateRange, error)
}

// inWindow reports whether t falls inside the inclusive optional bounds.
func inWindow(t time.Time, start, end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
