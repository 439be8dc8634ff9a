package marketdata

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

// insertBatchSize is how many candles are buffered before each write.
const insertBatchSize = 1000

// assetTickers maps each supported asset onto the exchange-traded proxy
// whose daily aggregates Polygon serves.
var assetTickers = map[types.Asset]string{
	types.AssetGold:       "GLD",
	types.AssetSilver:     "SLV",
	types.AssetCrudeOil:   "USO",
	types.AssetNaturalGas: "UNG",
	types.AssetWheat:      "WEAT",
	types.AssetCorn:       "CORN",
	types.AssetCopper:     "CPER",
	types.AssetCoffee:     "JO",
}

// PolygonDownloader pulls daily aggregates from Polygon and writes them into
// a DuckDB candle store.
type PolygonDownloader struct {
	client *polygon.Client
	logger *logger.Logger
}

// NewPolygonDownloader builds a downloader for the given API key.
func NewPolygonDownloader(apiKey string, logger *logger.Logger) (*PolygonDownloader, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon api key is required")
	}

	return &PolygonDownloader{
		client: polygon.New(apiKey),
		logger: logger,
	}, nil
}

// Download fetches the asset's daily candles for the date range and writes
// them in batches. It returns the number of candles written.
func (d *PolygonDownloader) Download(ctx context.Context, asset types.Asset, start, end time.Time, store *DuckDBProvider, onProgress func(count int)) (int, error) {
	ticker, exists := assetTickers[asset]
	if !exists {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "no polygon ticker for asset %s", asset)
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := d.client.ListAggs(ctx, params)

	batch := make([]types.Candle, 0, insertBatchSize)
	written := 0

	for iter.Next() {
		agg := iter.Item()
		batch = append(batch, types.Candle{
			Time:   time.Time(agg.Timestamp).UTC(),
			Asset:  asset,
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})

		if len(batch) >= insertBatchSize {
			if err := store.InsertCandles(ctx, batch); err != nil {
				return written, err
			}

			written += len(batch)
			batch = batch[:0]

			if onProgress != nil {
				onProgress(written)
			}
		}
	}

	if err := iter.Err(); err != nil {
		return written, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "polygon download failed for %s", ticker)
	}

	if len(batch) > 0 {
		if err := store.InsertCandles(ctx, batch); err != nil {
			return written, err
		}

		written += len(batch)

		if onProgress != nil {
			onProgress(written)
		}
	}

	d.logger.Info("download finished",
		zap.String("asset", string(asset)),
		zap.String("ticker", ticker),
		zap.Int("candles", written),
	)

	return written, nil
}
