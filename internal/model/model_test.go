package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   ProjectInput
		wantErr string
	}{
		{"valid", ProjectInput{SampleSize: 300, LOI: 10, IR: 50, Quota: QuotaSimple}, ""},
		{"zero sample", ProjectInput{SampleSize: 0, LOI: 10, IR: 50, Quota: QuotaSimple}, "sampleSize"},
		{"negative loi", ProjectInput{SampleSize: 300, LOI: -1, IR: 50, Quota: QuotaSimple}, "loi"},
		{"ir below range", ProjectInput{SampleSize: 300, LOI: 10, IR: 0, Quota: QuotaSimple}, "ir"},
		{"ir above range", ProjectInput{SampleSize: 300, LOI: 10, IR: 101, Quota: QuotaSimple}, "ir"},
		{"unknown quota", ProjectInput{SampleSize: 300, LOI: 10, IR: 50, Quota: "crossed"}, "quota"},
		{"qc above range", ProjectInput{SampleSize: 300, LOI: 10, IR: 50, Quota: QuotaSimple, QCBufferPercent: 120}, "qcBufferPercent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := tt.input.Validate()
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				assert.True(t, tt.input.IsValid())
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestProjectInput_Normalize(t *testing.T) {
	t.Parallel()

	input := ProjectInput{SampleSize: 100, LOI: 5, IR: 20}
	input.Normalize()

	assert.Equal(t, QuotaSimple, input.Quota)
	assert.Equal(t, SkewBalanced, input.QuotaSkew)
	assert.Equal(t, GeneralAudience, input.TargetAudience)
}

func TestConditions_MatchesAndScore(t *testing.T) {
	t.Parallel()

	cond := Conditions{
		IR:     Range{Min: 20, Max: 50},
		Sample: Range{Min: 301, Max: 800},
		LOI:    Range{Min: 10, Max: 15},
		Quota:  QuotaSimple,
	}

	q := CaseQuery{IR: 20, SampleSize: 800, LOI: 15, Quota: QuotaSimple}
	assert.True(t, cond.Matches(q), "range bounds are inclusive")
	assert.Equal(t, 12, cond.Score(q))

	q.SampleSize = 300
	assert.False(t, cond.Matches(q))
	assert.Equal(t, 9, cond.Score(q))

	q.HardTarget = true
	q.Quota = QuotaNested
	assert.Equal(t, 5, cond.Score(q))
}

func TestTemplate_Apply(t *testing.T) {
	t.Parallel()

	var productTest Template
	for _, tpl := range DefaultTemplates() {
		if tpl.ID == "product_test" {
			productTest = tpl
		}
	}
	require.Equal(t, "product_test", productTest.ID)

	input := productTest.Apply("Concept X")
	assert.Equal(t, "Concept X", input.ProjectName)
	assert.Equal(t, 300, input.SampleSize)
	assert.Equal(t, 50.0, input.IR)
	assert.Equal(t, 10, input.LOI)
	assert.Equal(t, []string{"hcm"}, input.Locations)
	assert.Equal(t, SkewBalanced, input.QuotaSkew)
	assert.True(t, input.IsValid())
}

func TestDefaultTables(t *testing.T) {
	t.Parallel()

	cases := DefaultCases()
	require.Len(t, cases, 12)
	for i, c := range cases {
		assert.Equal(t, i+1, c.Order)
		assert.NotNil(t, c.Suggestions)
	}

	audienceIDs := map[string]bool{}
	for _, a := range DefaultTargetAudiences() {
		audienceIDs[a.ID] = true
		assert.GreaterOrEqual(t, a.DifficultyMultiplier, 1.0)
	}
	for _, tpl := range DefaultTemplates() {
		assert.True(t, audienceIDs[tpl.Defaults.TargetAudience], "template %s uses unknown audience", tpl.ID)
	}

	timing := DefaultTimingConfig()
	assert.InDelta(t, 1.8, timing.HolidayFactor(HolidayTet, 1), 1e-9)
	assert.InDelta(t, 1.3, timing.HolidayFactor("unknown", 1.3), 1e-9)
}

func TestLocation_Defaults(t *testing.T) {
	t.Parallel()

	l := Location{ID: "x"}
	assert.Equal(t, float64(DefaultLocationSamplesPerDay), l.GetSamplesPerDay())
	assert.Equal(t, DefaultLocationDifficultyFactor, l.GetDifficultyFactor())
}

func TestNewHistoryRecord(t *testing.T) {
	t.Parallel()

	rec := NewHistoryRecord(ProjectInput{SampleSize: 1, LOI: 1, IR: 1}, "", SystemResult{CaseID: "case_1"}, ExpertConclusion{Days: 4})
	assert.Len(t, rec.ID, 8)
	assert.Equal(t, DefaultProjectName, rec.ProjectName)
	assert.Equal(t, ModeDetailed, rec.Mode)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestConfig_Getters(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultHistoryLimit, cfg.GetHistoryLimit())
	assert.Equal(t, DriverSQLite, cfg.GetStoreDriver())
	assert.Equal(t, SourceDefaults, cfg.GetRefDataSource())
	assert.Equal(t, 8080, cfg.GetServerPort())

	cfg.History.Limit = 10
	assert.Equal(t, 10, cfg.GetHistoryLimit())
}
