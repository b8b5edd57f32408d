package store

import (
	"context"
	"slices"
	"sync"

	"github.com/bornholm/fieldwork/internal/model"
)

// MemoryStore keeps history in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records []*model.HistoryRecord
	limit   int
}

// NewMemoryStore creates an empty in-memory store keeping at most limit records
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	return &MemoryStore{limit: limit}
}

// SaveCalculation stores a copy of the record
func (s *MemoryStore) SaveCalculation(_ context.Context, record *model.HistoryRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *record
	s.records = append(s.records, &saved)

	// Newest first
	slices.SortStableFunc(s.records, func(a, b *model.HistoryRecord) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(s.records) > s.limit {
		s.records = s.records[:s.limit]
	}

	return saved.ID, nil
}

// RecentHistory returns the newest records first
func (s *MemoryStore) RecentHistory(_ context.Context, limit int) ([]*model.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = min(recentLimit(limit), len(s.records))

	records := make([]*model.HistoryRecord, 0, limit)
	for _, r := range s.records[:limit] {
		record := *r
		records = append(records, &record)
	}

	return records, nil
}

// DeleteHistory removes a record
func (s *MemoryStore) DeleteHistory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := slices.IndexFunc(s.records, func(r *model.HistoryRecord) bool { return r.ID == id })
	if index < 0 {
		return ErrNotFound
	}

	s.records = slices.Delete(s.records, index, index+1)

	return nil
}

// ClearHistory removes every record
func (s *MemoryStore) ClearHistory(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil

	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ HistoryStore = (*MemoryStore)(nil)
