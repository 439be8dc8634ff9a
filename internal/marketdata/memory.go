package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
)

// MemoryProvider serves candles from in-process slices. It backs tests and
// programmatic runs where no database is involved.
type MemoryProvider struct {
	candles map[types.Asset][]types.Candle
}

// NewMemoryProvider builds a provider over the given candles. Each asset's
// candles are copied and sorted by time so callers can hand over slices in
// any order.
func NewMemoryProvider(candles map[types.Asset][]types.Candle) *MemoryProvider {
	byAsset := make(map[types.Asset][]types.Candle, len(candles))

	for asset, assetCandles := range candles {
		sorted := make([]types.Candle, len(assetCandles))
		copy(sorted, assetCandles)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Time.Before(sorted[j].Time)
		})
		byAsset[asset] = sorted
	}

	return &MemoryProvider{candles: byAsset}
}

// GetCandles implements Provider.
func (p *MemoryProvider) GetCandles(_ context.Context, asset types.Asset, start, end optional.Option[time.Time]) ([]types.Candle, error) {
	assetCandles, exists := p.candles[asset]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no candles for asset %s", asset)
	}

	result := make([]types.Candle, 0, len(assetCandles))

	for _, candle := range assetCandles {
		if inWindow(candle.Time, start, end) {
			result = append(result, candle)
		}
	}

	return result, nil
}

// GetDateRange implements Provider.
func (p *MemoryProvider) GetDateRange(_ context.Context, asset types.Asset) (types.DateRange, error) {
	assetCandles, exists := p.candles[asset]
	if !exists || len(assetCandles) == 0 {
		return types.DateRange{}, errors.Newf(errors.ErrCodeDataNotFound, "no candles for asset %s", asset)
	}

	return types.DateRange{
		Min: assetCandles[0].Time,
		Max: assetCandles[len(assetCandles)-1].Time,
	}, nil
}
