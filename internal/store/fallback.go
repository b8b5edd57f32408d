package store

import (
	"context"
	"slices"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FallbackStore saves to a primary store and keeps records in memory when
// the primary store fails, so a calculation is never lost for the session.
type FallbackStore struct {
	primary HistoryStore
	local   *MemoryStore
}

// NewFallbackStore wraps primary with a local in-memory fallback
func NewFallbackStore(primary HistoryStore, limit int) *FallbackStore {
	return &FallbackStore{
		primary: primary,
		local:   NewMemoryStore(limit),
	}
}

// SaveCalculation saves to the primary store, or locally if it fails
func (s *FallbackStore) SaveCalculation(ctx context.Context, record *model.HistoryRecord) (string, error) {
	id, err := s.primary.SaveCalculation(ctx, record)
	if err == nil {
		return id, nil
	}

	zap.L().Warn("could not save calculation, keeping it locally",
		zap.String("id", record.ID),
		zap.Error(err),
	)

	return s.local.SaveCalculation(ctx, record)
}

// RecentHistory merges primary and locally kept records, newest first.
// When the primary store fails only local records are returned.
func (s *FallbackStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryRecord, error) {
	limit = recentLimit(limit)

	local, err := s.local.RecentHistory(ctx, limit)
	if err != nil {
		return nil, err
	}

	records, err := s.primary.RecentHistory(ctx, limit)
	if err != nil {
		zap.L().Warn("could not load history, using local records", zap.Error(err))
		return local, nil
	}

	if len(local) == 0 {
		return records, nil
	}

	records = append(records, local...)
	slices.SortStableFunc(records, func(a, b *model.HistoryRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// DeleteHistory removes a record from whichever store holds it
func (s *FallbackStore) DeleteHistory(ctx context.Context, id string) error {
	if err := s.local.DeleteHistory(ctx, id); err == nil {
		return nil
	}
	return s.primary.DeleteHistory(ctx, id)
}

// ClearHistory removes every record from both stores
func (s *FallbackStore) ClearHistory(ctx context.Context) error {
	if err := s.local.ClearHistory(ctx); err != nil {
		return err
	}
	return s.primary.ClearHistory(ctx)
}

// Pending returns the number of records only kept locally
func (s *FallbackStore) Pending() int {
	return s.local.Len()
}

func (s *FallbackStore) Close() error {
	return eris.Wrap(s.primary.Close(), "could not close history store")
}

var _ HistoryStore = (*FallbackStore)(nil)
