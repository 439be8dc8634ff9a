package marketdata

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

const candlesTableSchema = `
CREATE TABLE IF NOT EXISTS candles (
	time TIMESTAMP NOT NULL,
	asset VARCHAR NOT NULL,
	open DOUBLE NOT NULL,
	high DOUBLE NOT NULL,
	low DOUBLE NOT NULL,
	close DOUBLE NOT NULL,
	volume DOUBLE NOT NULL,
	fx_rate DOUBLE,
	PRIMARY KEY (asset, time)
);
`

// DuckDBProvider serves candles from a DuckDB database file. Pass an empty
// path for an in-memory database.
type DuckDBProvider struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewDuckDBProvider opens the database and ensures the candles table exists.
func NewDuckDBProvider(path string, logger *logger.Logger) (*DuckDBProvider, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	if _, err := db.Exec(candlesTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create candles table", err)
	}

	return &DuckDBProvider{db: db, logger: logger}, nil
}

// GetCandles implements Provider.
func (p *DuckDBProvider) GetCandles(ctx context.Context, asset types.Asset, start, end optional.Option[time.Time]) ([]types.Candle, error) {
	builder := sq.Select("time", "asset", "open", "high", "low", "close", "volume", "fx_rate").
		From("candles").
		Where(sq.Eq{"asset": string(asset)}).
		OrderBy("time ASC")

	if start.IsSome() {
		builder = builder.Where(sq.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(sq.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build candles query", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query candles", err)
	}
	defer rows.Close()

	var candles []types.Candle

	for rows.Next() {
		var (
			candle types.Candle
			asset  string
			fxRate sql.NullFloat64
		)

		if err := rows.Scan(&candle.Time, &asset, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume, &fxRate); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan candle row", err)
		}

		candle.Asset = types.Asset(asset)
		if fxRate.Valid {
			candle.Aux = map[string]float64{types.AuxFXRate: fxRate.Float64}
		}

		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "candle row iteration failed", err)
	}

	return candles, nil
}

// GetDateRange implements Provider.
func (p *DuckDBProvider) GetDateRange(ctx context.Context, asset types.Asset) (types.DateRange, error) {
	query, args, err := sq.Select("MIN(time)", "MAX(time)").
		From("candles").
		Where(sq.Eq{"asset": string(asset)}).
		ToSql()
	if err != nil {
		return types.DateRange{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build date range query", err)
	}

	var minTime, maxTime sql.NullTime

	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&minTime, &maxTime); err != nil {
		return types.DateRange{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query date range", err)
	}

	if !minTime.Valid || !maxTime.Valid {
		return types.DateRange{}, errors.Newf(errors.ErrCodeDataNotFound, "no candles for asset %s", asset)
	}

	return types.DateRange{Min: minTime.Time, Max: maxTime.Time}, nil
}

// InsertCandles writes candles in one transaction, replacing rows that share
// an (asset, time) key. The downloader calls this in batches.
func (p *DuckDBProvider) InsertCandles(ctx context.Context, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (time, asset, open, high, low, close, volume, fx_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, candle := range candles {
		fxRate := sql.NullFloat64{}
		if value, exists := candle.Aux[types.AuxFXRate]; exists {
			fxRate = sql.NullFloat64{Float64: value, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, candle.Time, string(candle.Asset), candle.Open, candle.High, candle.Low, candle.Close, candle.Volume, fxRate); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert candle", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit candles", err)
	}

	p.logger.Debug("inserted candles", zap.Int("count", len(candles)))

	return nil
}

// Close releases the underlying database handle.
func (p *DuckDBProvider) Close() error {
	return p.db.Close()
}
