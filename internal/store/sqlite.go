package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements HistoryStore using modernc.org/sqlite
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

// NewSQLiteStore opens a SQLite database at the given path, configures WAL
// mode and applies the schema
func NewSQLiteStore(ctx context.Context, dsn string, limit int) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, eris.New("sqlite: missing database path")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}

	s := &SQLiteStore{db: db, limit: limit}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS calculation_history (
	id            TEXT PRIMARY KEY,
	project_name  TEXT NOT NULL,
	mode          TEXT NOT NULL,
	input         TEXT NOT NULL,
	system_result TEXT NOT NULL,
	expert_days   INTEGER NOT NULL DEFAULT 0,
	expert_note   TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculation_history_created_at ON calculation_history(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) SaveCalculation(ctx context.Context, record *model.HistoryRecord) (string, error) {
	inputJSON, err := json.Marshal(record.Input)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal input")
	}

	resultJSON, err := json.Marshal(record.SystemResult)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal system result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO calculation_history (id, project_name, mode, input, system_result, expert_days, expert_note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ProjectName, string(record.Mode), string(inputJSON), string(resultJSON),
		record.ExpertConclusion.Days, record.ExpertConclusion.Note, record.CreatedAt.UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: insert history %s", record.ID)
	}

	s.prune(ctx)

	return record.ID, nil
}

// prune keeps the newest records up to the retention limit
func (s *SQLiteStore) prune(ctx context.Context) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM calculation_history WHERE id NOT IN (
			SELECT id FROM calculation_history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		s.limit,
	)
	if err != nil {
		zap.L().Warn("sqlite: could not prune history", zap.Error(err))
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		zap.L().Debug("sqlite: pruned history", zap.Int64("deleted", n))
	}
}

func (s *SQLiteStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_name, mode, input, system_result, expert_days, expert_note, created_at
		 FROM calculation_history ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		recentLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list history")
	}
	defer rows.Close()

	records := []*model.HistoryRecord{}
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, eris.Wrap(rows.Err(), "sqlite: list history")
}

func (s *SQLiteStore) DeleteHistory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM calculation_history WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete history %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ClearHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM calculation_history`)
	return eris.Wrap(err, "sqlite: clear history")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanHistory(row scannable) (*model.HistoryRecord, error) {
	var (
		record     model.HistoryRecord
		mode       string
		inputJSON  string
		resultJSON string
		createdAt  time.Time
	)

	err := row.Scan(
		&record.ID, &record.ProjectName, &mode, &inputJSON, &resultJSON,
		&record.ExpertConclusion.Days, &record.ExpertConclusion.Note, &createdAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan history")
	}

	record.Mode = model.CalculationMode(mode)
	record.CreatedAt = createdAt.UTC()

	if err := json.Unmarshal([]byte(inputJSON), &record.Input); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal input of %s", record.ID)
	}
	if err := json.Unmarshal([]byte(resultJSON), &record.SystemResult); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal system result of %s", record.ID)
	}

	return &record, nil
}

var _ HistoryStore = (*SQLiteStore)(nil)
