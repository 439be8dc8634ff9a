package history

import (
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

const runsTableSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id VARCHAR PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	strategy_id VARCHAR NOT NULL,
	strategy_name VARCHAR NOT NULL,
	asset VARCHAR NOT NULL,
	initial_capital DOUBLE NOT NULL,
	final_equity DOUBLE NOT NULL,
	metrics VARCHAR NOT NULL,
	payload VARCHAR NOT NULL
);
`

// DuckDBStore persists runs in a DuckDB database. Summary columns back
// ListRuns; the full result (trades and equity curve included) lives in the
// payload column and is only decoded for GetRun.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewDuckDBStore opens the database and ensures the runs table exists. Pass
// an empty path for an in-memory store.
func NewDuckDBStore(path string, logger *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open history database", err)
	}

	if _, err := db.Exec(runsTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create runs table", err)
	}

	return &DuckDBStore{db: db, logger: logger}, nil
}

// SaveRun implements Store.
func (s *DuckDBStore) SaveRun(ctx context.Context, result types.BacktestResult) error {
	// Candles are charting payload, not history.
	result.Candles = nil

	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to encode run payload", err)
	}

	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to encode run metrics", err)
	}

	query, args, err := sq.Insert("runs").
		Columns("id", "created_at", "strategy_id", "strategy_name", "asset", "initial_capital", "final_equity", "metrics", "payload").
		Values(result.ID, result.CreatedAt, result.StrategyID, result.StrategyName, string(result.Asset), result.InitialCapital, result.FinalEquity, string(metrics), string(payload)).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to build run insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to insert run", err)
	}

	s.logger.Debug("saved run", zap.String("id", result.ID), zap.String("strategy_id", result.StrategyID))

	return nil
}

// ListRuns implements Store.
func (s *DuckDBStore) ListRuns(ctx context.Context, strategyID string) ([]types.BacktestResult, error) {
	query, args, err := sq.Select("id", "created_at", "strategy_id", "strategy_name", "asset", "initial_capital", "final_equity", "metrics").
		From("runs").
		Where(sq.Eq{"strategy_id": strategyID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to build runs query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to query runs", err)
	}
	defer rows.Close()

	var results []types.BacktestResult

	for rows.Next() {
		var (
			result  types.BacktestResult
			asset   string
			metrics string
		)

		if err := rows.Scan(&result.ID, &result.CreatedAt, &result.StrategyID, &result.StrategyName, &asset, &result.InitialCapital, &result.FinalEquity, &metrics); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to scan run row", err)
		}

		result.Asset = types.Asset(asset)
		if err := json.Unmarshal([]byte(metrics), &result.Metrics); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to decode run metrics", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryReadFailed, "run row iteration failed", err)
	}

	return results, nil
}

// GetRun implements Store.
func (s *DuckDBStore) GetRun(ctx context.Context, id string) (types.BacktestResult, error) {
	query, args, err := sq.Select("payload").
		From("runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to build run query", err)
	}

	var payload string

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return types.BacktestResult{}, errors.Newf(errors.ErrCodeDataNotFound, "run %s not found", id)
		}

		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to query run", err)
	}

	var result types.BacktestResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeHistoryReadFailed, "failed to decode run payload", err)
	}

	return result, nil
}

// Close releases the underlying database handle.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
