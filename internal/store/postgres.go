package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements HistoryStore using pgxpool
type PostgresStore struct {
	pool  Pool
	limit int
}

// NewPostgresStore creates a PostgresStore with a connection pool and
// applies the schema
func NewPostgresStore(ctx context.Context, connString string, limit int) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	s := newPostgresStore(pool, limit)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func newPostgresStore(pool Pool, limit int) *PostgresStore {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	return &PostgresStore{pool: pool, limit: limit}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS calculation_history (
	id            TEXT PRIMARY KEY,
	project_name  TEXT NOT NULL,
	mode          TEXT NOT NULL,
	input         JSONB NOT NULL,
	system_result JSONB NOT NULL,
	expert_days   INTEGER NOT NULL DEFAULT 0,
	expert_note   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_calculation_history_created_at ON calculation_history(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) SaveCalculation(ctx context.Context, record *model.HistoryRecord) (string, error) {
	inputJSON, err := json.Marshal(record.Input)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal input")
	}

	resultJSON, err := json.Marshal(record.SystemResult)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal system result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO calculation_history (id, project_name, mode, input, system_result, expert_days, expert_note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.ProjectName, string(record.Mode), inputJSON, resultJSON,
		record.ExpertConclusion.Days, record.ExpertConclusion.Note, record.CreatedAt,
	)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: insert history %s", record.ID)
	}

	s.prune(ctx)

	return record.ID, nil
}

// prune keeps the newest records up to the retention limit
func (s *PostgresStore) prune(ctx context.Context) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM calculation_history WHERE id IN (
			SELECT id FROM calculation_history ORDER BY created_at DESC OFFSET $1
		)`,
		s.limit,
	)
	if err != nil {
		zap.L().Warn("postgres: could not prune history", zap.Error(err))
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		zap.L().Debug("postgres: pruned history", zap.Int64("deleted", n))
	}
}

func (s *PostgresStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_name, mode, input, system_result, expert_days, expert_note, created_at
		 FROM calculation_history ORDER BY created_at DESC LIMIT $1`,
		recentLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list history")
	}
	defer rows.Close()

	records := []*model.HistoryRecord{}
	for rows.Next() {
		var (
			record     model.HistoryRecord
			mode       string
			inputJSON  []byte
			resultJSON []byte
		)
		err := rows.Scan(
			&record.ID, &record.ProjectName, &mode, &inputJSON, &resultJSON,
			&record.ExpertConclusion.Days, &record.ExpertConclusion.Note, &record.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan history")
		}

		record.Mode = model.CalculationMode(mode)

		if err := json.Unmarshal(inputJSON, &record.Input); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal input of %s", record.ID)
		}
		if err := json.Unmarshal(resultJSON, &record.SystemResult); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal system result of %s", record.ID)
		}

		records = append(records, &record)
	}

	return records, eris.Wrap(rows.Err(), "postgres: list history")
}

func (s *PostgresStore) DeleteHistory(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM calculation_history WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete history %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ClearHistory(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM calculation_history`)
	return eris.Wrap(err, "postgres: clear history")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ HistoryStore = (*PostgresStore)(nil)
