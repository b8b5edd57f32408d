package store

import (
	"context"
	"io"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/refdata"
	"github.com/rotisserie/eris"
)

// DefaultRecentLimit is the number of records returned when no limit is given
const DefaultRecentLimit = 10

// ErrNotFound is returned when a history record does not exist
var ErrNotFound = eris.New("history record not found")

// HistoryStore persists saved calculations. After each save only the
// newest records, up to the configured retention limit, are kept.
type HistoryStore interface {
	SaveCalculation(ctx context.Context, record *model.HistoryRecord) (string, error)
	RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	Close() error
}

// Open creates the history store selected by the configuration. Database
// backends are wrapped with a local fallback.
func Open(ctx context.Context, cfg *model.Config) (HistoryStore, error) {
	limit := cfg.GetHistoryLimit()

	var (
		primary HistoryStore
		err     error
	)

	switch driver := cfg.GetStoreDriver(); driver {
	case model.DriverMemory:
		return NewMemoryStore(limit), nil
	case model.DriverSQLite:
		primary, err = NewSQLiteStore(ctx, cfg.Store.DSN, limit)
	case model.DriverPostgres:
		primary, err = NewPostgresStore(ctx, cfg.Store.DSN, limit)
	case model.DriverMongo:
		primary, err = NewMongoStore(ctx, cfg.Store.DSN, cfg.Store.Database, limit)
	default:
		return nil, eris.Errorf("unknown store driver '%s'", driver)
	}
	if err != nil {
		return nil, err
	}

	return NewFallbackStore(primary, limit), nil
}

// OpenProvider creates the reference data provider selected by the
// configuration. The returned closer releases its resources.
func OpenProvider(ctx context.Context, cfg *model.Config) (refdata.Provider, io.Closer, error) {
	switch source := cfg.GetRefDataSource(); source {
	case model.SourceDefaults:
		return refdata.DefaultsProvider{}, nopCloser{}, nil
	case model.SourceYAML:
		return NewYAMLStore(cfg.RefData.File), nopCloser{}, nil
	case model.SourceMongo:
		s, err := NewMongoStore(ctx, cfg.Store.DSN, cfg.Store.Database, cfg.GetHistoryLimit())
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, eris.Errorf("unknown reference data source '%s'", source)
	}
}

func recentLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
