package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(name string, createdAt time.Time) *model.HistoryRecord {
	input := model.ProjectInput{
		ProjectName: name,
		SampleSize:  300,
		LOI:         10,
		IR:          50,
		Quota:       model.QuotaSimple,
		Locations:   []string{"hcm"},
	}
	record := model.NewHistoryRecord(input, model.ModeDetailed, model.SystemResult{
		CaseID:        "interpolated",
		Difficulty:    "Easy",
		SamplesPerDay: 90,
		FWDaysMin:     3,
		FWDaysMax:     4,
	}, model.ExpertConclusion{Days: 5, Note: "client deadline"})
	record.CreatedAt = createdAt
	return record
}

// exerciseHistoryStore runs the behaviour every HistoryStore must share
func exerciseHistoryStore(t *testing.T, s HistoryStore, limit int) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < limit+2; i++ {
		id, err := s.SaveCalculation(ctx, newTestRecord(fmt.Sprintf("project %d", i), base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	records, err := s.RecentHistory(ctx, 100)
	require.NoError(t, err)
	require.Len(t, records, limit, "retention limit applies after each save")

	// Newest first, oldest pruned
	assert.Equal(t, ids[len(ids)-1], records[0].ID)
	assert.Equal(t, fmt.Sprintf("project %d", limit+1), records[0].ProjectName)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].CreatedAt.After(records[i].CreatedAt))
	}

	first := records[0]
	assert.Equal(t, model.ModeDetailed, first.Mode)
	assert.Equal(t, 300, first.Input.SampleSize)
	assert.Equal(t, []string{"hcm"}, first.Input.Locations)
	assert.Equal(t, 90.0, first.SystemResult.SamplesPerDay)
	assert.Equal(t, 5, first.ExpertConclusion.Days)
	assert.Equal(t, "client deadline", first.ExpertConclusion.Note)
	assert.True(t, first.CreatedAt.Equal(base.Add(time.Duration(limit+1)*time.Hour)))

	limited, err := s.RecentHistory(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, s.DeleteHistory(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteHistory(ctx, first.ID), ErrNotFound)

	records, err = s.RecentHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, min(limit-1, DefaultRecentLimit))

	require.NoError(t, s.ClearHistory(ctx))
	records, err = s.RecentHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseHistoryStore(t, NewMemoryStore(3), 3)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(5)

	record := newTestRecord("original", time.Now())
	_, err := s.SaveCalculation(ctx, record)
	require.NoError(t, err)

	record.ProjectName = "mutated"

	records, err := s.RecentHistory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "original", records[0].ProjectName)
}

func newTestSQLiteStore(t *testing.T, limit int) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLiteStore(context.Background(), dbPath, limit)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	return st
}

func TestSQLiteStore(t *testing.T) {
	exerciseHistoryStore(t, newTestSQLiteStore(t, 4), 4)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	st, err := NewSQLiteStore(ctx, dbPath, 10)
	require.NoError(t, err)
	_, err = st.SaveCalculation(ctx, newTestRecord("persisted", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(ctx, dbPath, 10)
	require.NoError(t, err)
	defer st.Close()

	records, err := st.RecentHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "persisted", records[0].ProjectName)
}

func TestSQLiteStore_MissingPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "", 10)
	assert.Error(t, err)
}

type failingStore struct {
	MemoryStore
}

var errUnavailable = errors.New("database unavailable")

func (f *failingStore) SaveCalculation(context.Context, *model.HistoryRecord) (string, error) {
	return "", errUnavailable
}

func (f *failingStore) RecentHistory(context.Context, int) ([]*model.HistoryRecord, error) {
	return nil, errUnavailable
}

func TestFallbackStore(t *testing.T) {
	t.Parallel()
	exerciseHistoryStore(t, NewFallbackStore(NewMemoryStore(3), 3), 3)
}

func TestFallbackStore_KeepsRecordsLocally(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewFallbackStore(&failingStore{}, 10)

	record := newTestRecord("offline", time.Now())
	id, err := s.SaveCalculation(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, id)
	assert.Equal(t, 1, s.Pending())

	records, err := s.RecentHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "offline", records[0].ProjectName)

	require.NoError(t, s.DeleteHistory(ctx, id))
	assert.Equal(t, 0, s.Pending())
}

func TestFallbackStore_MergesLocalRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	primary := NewMemoryStore(10)
	s := NewFallbackStore(primary, 10)
	base := time.Now().UTC()

	_, err := primary.SaveCalculation(ctx, newTestRecord("old", base.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = s.local.SaveCalculation(ctx, newTestRecord("local", base))
	require.NoError(t, err)

	records, err := s.RecentHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "local", records[0].ProjectName)
	assert.Equal(t, "old", records[1].ProjectName)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := model.DefaultConfig()
	cfg.Store.Driver = model.DriverMemory
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Store.Driver = model.DriverSQLite
	cfg.Store.DSN = filepath.Join(t.TempDir(), "open.db")
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &FallbackStore{}, s)
	require.NoError(t, s.Close())

	cfg.Store.Driver = "cassandra"
	_, err = Open(ctx, cfg)
	assert.Error(t, err)
}
