package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/quantvis/strata/internal/logger"
	"github.com/quantvis/strata/internal/types"
	"github.com/quantvis/strata/pkg/errors"
	"go.uber.org/zap"
)

const strategiesTableSchema = `
CREATE TABLE IF NOT EXISTS strategies (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	asset VARCHAR NOT NULL,
	payload VARCHAR NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// DuckDBStore persists strategies as JSON payloads keyed by ID. The name and
// asset columns exist for listing and ad-hoc queries; the payload is the
// source of truth.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewDuckDBStore opens the database and ensures the strategies table exists.
// Pass an empty path for an in-memory store.
func NewDuckDBStore(path string, logger *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open strategy database", err)
	}

	if _, err := db.Exec(strategiesTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create strategies table", err)
	}

	return &DuckDBStore{db: db, logger: logger}, nil
}

// SaveStrategy implements StrategyStore.
func (s *DuckDBStore) SaveStrategy(ctx context.Context, strategy types.VisualStrategy) error {
	if err := strategy.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(strategy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStrategyParseError, "failed to encode strategy", err)
	}

	query, args, err := sq.Insert("strategies").
		Columns("id", "name", "asset", "payload", "updated_at").
		Values(strategy.ID, strategy.Name, string(strategy.Asset), string(payload), time.Now().UTC()).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, asset = excluded.asset, payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategy upsert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to save strategy", err)
	}

	s.logger.Debug("saved strategy", zap.String("id", strategy.ID), zap.String("name", strategy.Name))

	return nil
}

// GetStrategy implements StrategyStore.
func (s *DuckDBStore) GetStrategy(ctx context.Context, id string) (types.VisualStrategy, error) {
	query, args, err := sq.Select("payload").
		From("strategies").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.VisualStrategy{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategy query", err)
	}

	var payload string

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return types.VisualStrategy{}, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
		}

		return types.VisualStrategy{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query strategy", err)
	}

	return types.ParseVisualStrategy([]byte(payload))
}

// ListStrategies implements StrategyStore.
func (s *DuckDBStore) ListStrategies(ctx context.Context) ([]types.VisualStrategy, error) {
	query, args, err := sq.Select("payload").
		From("strategies").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategies query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query strategies", err)
	}
	defer rows.Close()

	var strategies []types.VisualStrategy

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan strategy row", err)
		}

		strategy, err := types.ParseVisualStrategy([]byte(payload))
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, strategy)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "strategy row iteration failed", err)
	}

	return strategies, nil
}

// DeleteStrategy implements StrategyStore.
func (s *DuckDBStore) DeleteStrategy(ctx context.Context, id string) error {
	query, args, err := sq.Delete("strategies").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build strategy delete", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete strategy", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read delete result", err)
	}

	if affected == 0 {
		return errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", id)
	}

	return nil
}

// Close releases the underlying database handle.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
