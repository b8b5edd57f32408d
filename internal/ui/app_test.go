package ui

import (
	"context"
	"testing"
	"time"

	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormValues_Input(t *testing.T) {
	v := formValues{
		Name:      " Brand tracker ",
		Sample:    "500",
		LOI:       "15",
		IR:        "30%",
		Locations: "HCM, hanoi,,",
		QCBuffer:  "",
		Start:     "2026-02-10",
	}

	input, problems := v.input()
	require.Empty(t, problems)

	assert.Equal(t, "Brand tracker", input.ProjectName)
	assert.Equal(t, 500, input.SampleSize)
	assert.Equal(t, 15, input.LOI)
	assert.Equal(t, 30.0, input.IR)
	assert.Equal(t, []string{"hcm", "hanoi"}, input.Locations)
	assert.Nil(t, input.Vendors)
	assert.Equal(t, model.QuotaSimple, input.Quota)
	assert.Equal(t, model.SkewBalanced, input.QuotaSkew)
	assert.Equal(t, model.GeneralAudience, input.TargetAudience)
	require.NotNil(t, input.StartDate)
	assert.Equal(t, time.February, input.StartDate.Month())
}

func TestFormValues_InputProblems(t *testing.T) {
	v := formValues{Sample: "abc", LOI: "10", IR: "high", Start: "10/02/2026"}

	_, problems := v.input()
	require.Len(t, problems, 3)
	assert.Contains(t, problems[0], "sample size")
	assert.Contains(t, problems[1], "IR")
	assert.Contains(t, problems[2], "invalid date")
}

func TestValuesFromInput(t *testing.T) {
	input := model.ProjectInput{
		SampleSize: 300,
		LOI:        10,
		IR:         42.5,
		Locations:  []string{"hcm", "hanoi"},
	}

	v := valuesFromInput(input)
	assert.Equal(t, "300", v.Sample)
	assert.Equal(t, "42.5", v.IR)
	assert.Equal(t, "", v.QCBuffer)
	assert.Equal(t, "hcm, hanoi", v.Locations)

	back, problems := v.input()
	require.Empty(t, problems)
	assert.Equal(t, input.Locations, back.Locations)
	assert.Equal(t, input.IR, back.IR)
}

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()

	history := store.NewMemoryStore(10)
	a := NewApp(engine.New(nil), history, engine.AllFactors(), 10, model.ProjectInput{
		ProjectName: "Tracker",
		SampleSize:  300,
		LOI:         10,
		IR:          50,
	})
	return a, history
}

func TestApp_Recompute(t *testing.T) {
	a, _ := newTestApp(t)

	require.True(t, a.report.HasResult())
	assert.Equal(t, 4, a.report.Estimate.FWDaysMin)
	assert.Equal(t, 5, a.report.Estimate.FWDaysMax)
	assert.Contains(t, a.preview.GetText(true), "4 - 5 days")
	assert.Contains(t, a.preview.GetText(true), "CPI: $1.50 USD")

	a.values.Sample = "abc"
	a.recompute()
	assert.False(t, a.report.HasResult())
	assert.Contains(t, a.preview.GetText(true), "is not a whole number")

	a.values.Sample = "300"
	a.quick = true
	a.recompute()
	require.NotNil(t, a.report.Quick)
	assert.Equal(t, model.ModeQuick, a.report.Mode)
	assert.Contains(t, a.preview.GetText(true), "Worst:")
}

func TestApp_ExpertComparison(t *testing.T) {
	a, _ := newTestApp(t)

	a.expertDays = "1"
	a.recompute()
	require.NotNil(t, a.report.Comparison)
	assert.Contains(t, a.preview.GetText(true), "Expert: 1 days")

	a.expertDays = "x"
	a.recompute()
	assert.False(t, a.report.HasResult())
}

func TestHistoryTable(t *testing.T) {
	a, history := newTestApp(t)
	ctx := context.Background()

	record := a.report.HistoryRecord(5, "slow panel")
	require.NotNil(t, record)
	_, err := history.SaveCalculation(ctx, record)
	require.NoError(t, err)

	records, err := history.RecentHistory(ctx, 10)
	require.NoError(t, err)

	table := NewHistoryTable()
	table.SetRecords(records)

	assert.Equal(t, 1, table.GetRecordCount())
	assert.Equal(t, 2, table.GetRowCount())
	assert.Equal(t, "Tracker", table.GetCell(1, 1).Text)
	assert.Equal(t, "4-5", table.GetCell(1, 7).Text)
	assert.Equal(t, "5", table.GetCell(1, 8).Text)

	selected := table.GetSelectedRecord()
	require.NotNil(t, selected)
	assert.Equal(t, record.ID, selected.ID)

	var deleted string
	a.historyTable.OnDelete = func(r *model.HistoryRecord) { deleted = r.ID }
	a.historyTable.SetRecords(records)
	a.historyTable.OnDelete(a.historyTable.GetSelectedRecord())
	assert.Equal(t, record.ID, deleted)

	table.SetRecords(nil)
	assert.Equal(t, 1, table.GetRowCount())
	assert.Nil(t, table.GetSelectedRecord())
}
