package indicator

import (
	"time"

	"github.com/quantvis/strata/internal/types"
)

// candlesFromCloses builds a daily candle series where each bar's OHLC all
// sit on the given close. Convenient for close-driven indicators.
func candlesFromCloses(closes ...float64) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))

	for i, close := range closes {
		candles[i] = types.Candle{
			Time:   start.AddDate(0, 0, i),
			Asset:  types.AssetGold,
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1000,
		}
	}

	return candles
}

// candlesFromOHLC builds a daily candle series from explicit high/low/close
// triples (open is set to the close of the prior bar).
func candlesFromOHLC(highs, lows, closes []float64) []types.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))

	for i := range closes {
		open := closes[i]
		if i > 0 {
			open = closes[i-1]
		}

		candles[i] = types.Candle{
			Time:   start.AddDate(0, 0, i),
			Asset:  types.AssetGold,
			Open:   open,
			High:   highs[i],
			Low:    lows[i],
			Close:  closes[i],
			Volume: 1000,
		}
	}

	return candles
}
