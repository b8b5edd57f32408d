package format

import (
	"encoding/json"
	"math"
	"time"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/factor"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/pricing"
)

// JSONFormatter formats reports as JSON with calculated values
type JSONFormatter struct {
	precision int
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{precision: DefaultPrecision}
}

// Output represents the complete report output with calculated values
type Output struct {
	ProjectName  string                `json:"projectName" yaml:"projectName"`
	Mode         model.CalculationMode `json:"mode" yaml:"mode"`
	Input        InputOutput           `json:"input" yaml:"input"`
	IRSuggestion *factor.IRSuggestion  `json:"irSuggestion,omitempty" yaml:"irSuggestion,omitempty"`

	// Estimation result
	Result *ResultOutput `json:"result,omitempty" yaml:"result,omitempty"`

	// Factor breakdown
	Factors []FactorOutput `json:"factors,omitempty" yaml:"factors,omitempty"`

	Timing      *TimingOutput       `json:"timing,omitempty" yaml:"timing,omitempty"`
	Quick       *QuickOutput        `json:"quick,omitempty" yaml:"quick,omitempty"`
	Suggestions []advice.Suggestion `json:"suggestions" yaml:"suggestions"`
	CPI         *pricing.Quote      `json:"cpi,omitempty" yaml:"cpi,omitempty"`
	Comparison  *advice.Comparison  `json:"comparison,omitempty" yaml:"comparison,omitempty"`
	Problems    []string            `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// InputOutput represents the project parameters
type InputOutput struct {
	SampleSize      int      `json:"sampleSize" yaml:"sampleSize"`
	LOI             int      `json:"loi" yaml:"loi"`
	IR              float64  `json:"ir" yaml:"ir"`
	Quota           string   `json:"quota" yaml:"quota"`
	HardTarget      bool     `json:"hardTarget" yaml:"hardTarget"`
	Locations       []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Vendors         []string `json:"vendors,omitempty" yaml:"vendors,omitempty"`
	QuotaSkew       string   `json:"quotaSkew" yaml:"quotaSkew"`
	QCBufferPercent float64  `json:"qcBufferPercent" yaml:"qcBufferPercent"`
	StartDate       string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	TargetAudience  string   `json:"targetAudience" yaml:"targetAudience"`
}

// ResultOutput represents the resolved case and the days range
type ResultOutput struct {
	CaseID            string  `json:"caseId" yaml:"caseId"`
	CaseName          string  `json:"caseName" yaml:"caseName"`
	Difficulty        string  `json:"difficulty" yaml:"difficulty"`
	Interpolated      bool    `json:"interpolated" yaml:"interpolated"`
	BaseSamplesPerDay float64 `json:"baseSamplesPerDay" yaml:"baseSamplesPerDay"`
	AdjustedDailyRate float64 `json:"adjustedDailyRate" yaml:"adjustedDailyRate"`
	RequiredSamples   int     `json:"requiredSamples" yaml:"requiredSamples"`
	QCBuffer          float64 `json:"qcBuffer" yaml:"qcBuffer"`
	PointDays         float64 `json:"pointDays" yaml:"pointDays"`
	FWDaysMin         int     `json:"fwDaysMin" yaml:"fwDaysMin"`
	FWDaysMax         int     `json:"fwDaysMax" yaml:"fwDaysMax"`
}

// FactorOutput represents a single adjustment factor
type FactorOutput struct {
	Name    string  `json:"name" yaml:"name"`
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Value   float64 `json:"value" yaml:"value"`
}

// TimingOutput represents the timing evaluation of the fieldwork window
type TimingOutput struct {
	Start    string   `json:"start" yaml:"start"`
	End      string   `json:"end" yaml:"end"`
	Factor   float64  `json:"factor" yaml:"factor"`
	Holidays []string `json:"holidays,omitempty" yaml:"holidays,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// QuickOutput represents the best, likely and worst scenarios
type QuickOutput struct {
	Best   ScenarioOutput `json:"best" yaml:"best"`
	Likely ScenarioOutput `json:"likely" yaml:"likely"`
	Worst  ScenarioOutput `json:"worst" yaml:"worst"`
}

// ScenarioOutput represents a quick range scenario
type ScenarioOutput struct {
	IR         float64 `json:"ir" yaml:"ir"`
	HardTarget bool    `json:"hardTarget" yaml:"hardTarget"`
	FWDaysMin  int     `json:"fwDaysMin" yaml:"fwDaysMin"`
	FWDaysMax  int     `json:"fwDaysMax" yaml:"fwDaysMax"`
}

// Format formats a report as JSON
func (f *JSONFormatter) Format(report *Report) (string, error) {
	output := f.BuildOutput(report)
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// BuildOutput builds the output structure
func (f *JSONFormatter) BuildOutput(report *Report) *Output {
	input := report.Input

	name := input.ProjectName
	if name == "" {
		name = model.DefaultProjectName
	}

	output := &Output{
		ProjectName:  name,
		Mode:         report.Mode,
		Input:        buildInput(input),
		IRSuggestion: report.IRSuggestion,
		Suggestions:  report.Suggestions,
		CPI:          report.CPI,
		Comparison:   report.Comparison,
		Problems:     report.Problems,
	}
	if output.Suggestions == nil {
		output.Suggestions = []advice.Suggestion{}
	}

	est := report.Estimate
	if est == nil {
		return output
	}

	output.Result = &ResultOutput{
		CaseID:            est.Case.ID,
		CaseName:          est.Case.Name,
		Difficulty:        est.Case.Difficulty,
		Interpolated:      est.Case.Interpolated,
		BaseSamplesPerDay: est.Factors.BaseSamplesPerDay,
		AdjustedDailyRate: roundFloat(est.AdjustedDailyRate, 1),
		RequiredSamples:   est.RequiredSamples,
		QCBuffer:          roundFloat(est.Factors.EffectiveQCBuffer, f.precision),
		PointDays:         roundFloat(est.PointDays, f.precision),
		FWDaysMin:         est.FWDaysMin,
		FWDaysMax:         est.FWDaysMax,
	}

	for _, fo := range Factors(est) {
		fo.Value = roundFloat(fo.Value, f.precision)
		output.Factors = append(output.Factors, fo)
	}

	if est.Timing != nil {
		timing := &TimingOutput{
			Start:  formatDate(est.Timing.Start),
			End:    formatDate(est.Timing.End),
			Factor: roundFloat(est.Timing.Factor, f.precision),
		}
		for _, h := range est.Timing.AffectedHolidays {
			timing.Holidays = append(timing.Holidays, h.Name)
		}
		for _, w := range est.Timing.Warnings {
			timing.Warnings = append(timing.Warnings, w.Message)
		}
		output.Timing = timing
	}

	if q := report.Quick; q != nil {
		output.Quick = &QuickOutput{
			Best:   buildScenario(q.Best),
			Likely: buildScenario(q.Likely),
			Worst:  buildScenario(q.Worst),
		}
	}

	return output
}

// Factors lists the throughput multipliers of an estimate in composition
// order, with their toggle state
func Factors(est *engine.Estimate) []FactorOutput {
	b := est.Factors
	t := est.Toggles
	return []FactorOutput{
		{Name: engine.FactorIRImpact, Enabled: t.IRImpact, Value: b.IRImpact},
		{Name: engine.FactorVendor, Enabled: t.Vendor, Value: b.Vendor},
		{Name: engine.FactorQuotaSkew, Enabled: t.QuotaSkew, Value: b.QuotaSkew},
		{Name: engine.FactorTiming, Enabled: t.Timing, Value: b.Timing},
		{Name: engine.FactorSampleSize, Enabled: t.SampleSize, Value: b.SampleSize},
		{Name: engine.FactorLocation, Enabled: t.Location, Value: b.Location},
		{Name: engine.FactorAudience, Enabled: t.Audience, Value: b.Audience},
		{Name: engine.FactorQCBuffer, Enabled: t.QCBuffer, Value: b.EffectiveQCBuffer},
	}
}

func buildInput(input model.ProjectInput) InputOutput {
	out := InputOutput{
		SampleSize:      input.SampleSize,
		LOI:             input.LOI,
		IR:              input.IR,
		Quota:           string(input.Quota),
		HardTarget:      input.HardTarget,
		Locations:       input.Locations,
		Vendors:         input.Vendors,
		QuotaSkew:       string(input.QuotaSkew),
		QCBufferPercent: input.QCBufferPercent,
		TargetAudience:  input.TargetAudience,
	}
	if input.StartDate != nil {
		out.StartDate = formatDate(*input.StartDate)
	}
	return out
}

func buildScenario(est *engine.Estimate) ScenarioOutput {
	return ScenarioOutput{
		IR:         est.Input.IR,
		HardTarget: est.Input.HardTarget,
		FWDaysMin:  est.FWDaysMin,
		FWDaysMax:  est.FWDaysMax,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// roundFloat rounds the value to the given number of decimals
func roundFloat(value float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(value*p) / p
}
