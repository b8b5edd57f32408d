package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T, limit int) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return newPostgresStore(mock, limit), mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t, 10)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS calculation_history`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCalculation_Prunes(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)
	record := newTestRecord("saved", time.Now().UTC())

	mock.ExpectExec(`INSERT INTO calculation_history`).
		WithArgs(record.ID, "saved", "detailed", pgxmock.AnyArg(), pgxmock.AnyArg(), 5, "client deadline", record.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM calculation_history WHERE id IN`).
		WithArgs(25).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	id, err := s.SaveCalculation(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, record.ID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCalculation_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)
	record := newTestRecord("saved", time.Now().UTC())

	mock.ExpectExec(`INSERT INTO calculation_history`).
		WillReturnError(errors.New("connection reset"))

	_, err := s.SaveCalculation(context.Background(), record)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveCalculation_PruneErrorIsIgnored(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)
	record := newTestRecord("saved", time.Now().UTC())

	mock.ExpectExec(`INSERT INTO calculation_history`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM calculation_history WHERE id IN`).
		WillReturnError(errors.New("lock timeout"))

	_, err := s.SaveCalculation(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecentHistory(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)
	createdAt := time.Date(2026, time.May, 4, 8, 30, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "project_name", "mode", "input", "system_result", "expert_days", "expert_note", "created_at"}).
		AddRow("a1b2c3d4", "Brand health", "quick",
			[]byte(`{"sampleSize":500,"loi":15,"ir":20,"quota":"nested","hardTarget":false,"qcBufferPercent":10}`),
			[]byte(`{"caseId":"case_5","difficulty":"Medium","samplesPerDay":60,"fwDaysMin":8,"fwDaysMax":11}`),
			9, "", createdAt)

	mock.ExpectQuery(`SELECT id, project_name, mode, input, system_result, expert_days, expert_note, created_at`).
		WithArgs(DefaultRecentLimit).
		WillReturnRows(rows)

	records, err := s.RecentHistory(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "a1b2c3d4", r.ID)
	assert.Equal(t, model.ModeQuick, r.Mode)
	assert.Equal(t, 500, r.Input.SampleSize)
	assert.Equal(t, model.QuotaNested, r.Input.Quota)
	assert.Equal(t, "case_5", r.SystemResult.CaseID)
	assert.Equal(t, 11, r.SystemResult.FWDaysMax)
	assert.Equal(t, 9, r.ExpertConclusion.Days)
	assert.Equal(t, createdAt, r.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteHistory(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)

	mock.ExpectExec(`DELETE FROM calculation_history WHERE id = \$1`).
		WithArgs("known").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM calculation_history WHERE id = \$1`).
		WithArgs("unknown").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, s.DeleteHistory(context.Background(), "known"))
	assert.ErrorIs(t, s.DeleteHistory(context.Background(), "unknown"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ClearHistory(t *testing.T) {
	s, mock := newMockPostgresStore(t, 25)

	mock.ExpectExec(`DELETE FROM calculation_history$`).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	require.NoError(t, s.ClearHistory(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
