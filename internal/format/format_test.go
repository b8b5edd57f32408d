package format

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

func sampleRequest() Request {
	return Request{
		Input: model.ProjectInput{
			ProjectName: "Beverage U&A",
			SampleSize:  300,
			LOI:         10,
			IR:          50,
			Quota:       model.QuotaSimple,
		},
		Toggles:    engine.AllFactors(),
		ExpertDays: 5,
	}
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	report := NewReport(engine.New(nil), sampleRequest())

	require.True(t, report.HasResult())
	assert.Empty(t, report.Problems)
	assert.Equal(t, model.ModeDetailed, report.Mode)
	assert.Equal(t, 4, report.Estimate.FWDaysMin)
	assert.Equal(t, 5, report.Estimate.FWDaysMax)
	require.NotNil(t, report.CPI)
	assert.Equal(t, 150, report.CPI.Cents)
	require.NotNil(t, report.Comparison)
	assert.Equal(t, 5, report.Comparison.ExpertDays)
	assert.Nil(t, report.Quick)
}

func TestNewReport_Invalid(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Input.SampleSize = 0

	report := NewReport(engine.New(nil), req)
	assert.False(t, report.HasResult())
	assert.NotEmpty(t, report.Problems)
	assert.Nil(t, report.CPI)
	assert.Nil(t, report.HistoryRecord(5, ""))
}

func TestNewReport_QuickDefaultsIR(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Input.IR = 0
	req.Quick = true

	report := NewReport(engine.New(nil), req)
	require.True(t, report.HasResult())
	require.NotNil(t, report.Quick)
	assert.Equal(t, model.ModeQuick, report.Mode)
	assert.Same(t, report.Quick.Likely, report.Estimate)
	assert.Equal(t, float64(model.DefaultIR), report.Input.IR)
}

func TestNewReport_IRFromLocations(t *testing.T) {
	t.Parallel()

	eng := engine.New(nil)
	loc := eng.Reference().Locations[0]

	req := sampleRequest()
	req.Input.IR = 0
	req.Input.Locations = []string{loc.ID}

	report := NewReport(eng, req)
	require.True(t, report.HasResult())
	require.NotNil(t, report.IRSuggestion)
	assert.Equal(t, loc.DefaultIR, report.Input.IR)
}

func TestReport_HistoryRecord(t *testing.T) {
	t.Parallel()

	report := NewReport(engine.New(nil), sampleRequest())

	rec := report.HistoryRecord(0, "checked with ops")
	require.NotNil(t, rec)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Beverage U&A", rec.ProjectName)
	assert.Equal(t, 5, rec.ExpertConclusion.Days)
	assert.Equal(t, "checked with ops", rec.ExpertConclusion.Note)
	assert.Equal(t, report.Estimate.FWDaysMax, rec.SystemResult.FWDaysMax)
}

func TestJSONFormatter(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	req := sampleRequest()
	req.Input.StartDate = &start

	report := NewReport(engine.New(nil), req)

	data, err := NewJSONFormatter().Format(report)
	require.NoError(t, err)

	var out Output
	require.NoError(t, json.Unmarshal([]byte(data), &out))

	assert.Equal(t, "Beverage U&A", out.ProjectName)
	assert.Equal(t, "2026-03-04", out.Input.StartDate)
	require.NotNil(t, out.Result)
	assert.Equal(t, report.Estimate.FWDaysMin, out.Result.FWDaysMin)
	assert.Len(t, out.Factors, len(engine.FactorNames))
	require.NotNil(t, out.Timing)
	assert.Equal(t, "2026-03-04", out.Timing.Start)
	require.NotNil(t, out.CPI)
	assert.Equal(t, "USD", out.CPI.Currency)
}

func TestJSONFormatter_Problems(t *testing.T) {
	t.Parallel()

	report := NewReport(engine.New(nil), Request{Toggles: engine.AllFactors()})

	data, err := NewJSONFormatter().Format(report)
	require.NoError(t, err)
	assert.Contains(t, data, `"problems"`)
	assert.NotContains(t, data, `"result"`)
	assert.Contains(t, data, `"projectName": "Untitled Project"`)
}

func TestYAMLFormatter(t *testing.T) {
	t.Parallel()

	report := NewReport(engine.New(nil), sampleRequest())

	data, err := NewYAMLFormatter().Format(report)
	require.NoError(t, err)

	var out Output
	require.NoError(t, yaml.Unmarshal([]byte(data), &out))
	assert.Equal(t, "Beverage U&A", out.ProjectName)
	require.NotNil(t, out.Result)
	assert.Equal(t, report.Estimate.RequiredSamples, out.Result.RequiredSamples)
	assert.Contains(t, data, "fwDaysMin:")
}

func TestMarkdownFormatter(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Quick = true
	report := NewReport(engine.New(nil), req)

	md, err := NewMarkdownFormatter().Format(report)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Beverage U&A\n"))
	assert.Contains(t, md, "## Parameters")
	assert.Contains(t, md, "## Estimate")
	assert.Contains(t, md, "## Quick range")
	assert.Contains(t, md, "## CPI")
	assert.Contains(t, md, "## Expert comparison")
	assert.Contains(t, md, "$1.50 USD per interview")
}

func TestMarkdownFormatter_Problems(t *testing.T) {
	t.Parallel()

	report := NewReport(engine.New(nil), Request{Toggles: engine.AllFactors()})

	md, err := NewMarkdownFormatter().Format(report)
	require.NoError(t, err)
	assert.Contains(t, md, "## Problems")
	assert.NotContains(t, md, "## Estimate")
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "markdown", "md", "json", "yaml", "yml", "JSON"} {
		f, err := New(name)
		require.NoError(t, err, name)
		assert.NotNil(t, f, name)
	}

	_, err := New("csv")
	assert.Error(t, err)
}

func historyRecords() []*model.HistoryRecord {
	input := model.ProjectInput{
		ProjectName:    "Snack test",
		SampleSize:     400,
		LOI:            12,
		IR:             35,
		Quota:          model.QuotaNested,
		Locations:      []string{"hcm", "hanoi"},
		TargetAudience: model.GeneralAudience,
	}
	result := model.SystemResult{CaseID: "case_3", CaseName: "Medium", Difficulty: "Medium", SamplesPerDay: 55.5, FWDaysMin: 7, FWDaysMax: 10}
	return []*model.HistoryRecord{
		model.NewHistoryRecord(input, model.ModeDetailed, result, model.ExpertConclusion{Days: 9, Note: "ok"}),
	}
}

func TestSaveHistoryXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.xlsx")
	records := historyRecords()

	require.NoError(t, SaveHistoryXLSX(path, records))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	sheet, ok := f.Sheet[HistorySheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	header := sheet.Rows[0]
	require.Len(t, header.Cells, len(HistoryColumns))
	assert.Equal(t, "ID", header.Cells[0].String())

	row := sheet.Rows[1]
	assert.Equal(t, records[0].ID, row.Cells[0].String())
	assert.Equal(t, "Snack test", row.Cells[2].String())
	assert.Equal(t, "400", row.Cells[4].String())
	assert.Equal(t, "hcm, hanoi", row.Cells[9].String())
	assert.Equal(t, "9", row.Cells[17].String())
	assert.Equal(t, "ok", row.Cells[18].String())
}

func TestWriteHistoryXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHistoryXLSX(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := f.Sheet[HistorySheet]
	require.True(t, ok)
	assert.Len(t, sheet.Rows, 1)
}
