package format

import (
	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/engine"
	"github.com/bornholm/fieldwork/internal/factor"
	"github.com/bornholm/fieldwork/internal/model"
	"github.com/bornholm/fieldwork/internal/pricing"
)

// NoResultProblem is reported when valid input still yields no estimate
const NoResultProblem = "adjusted daily rate is not positive, no estimate available"

// Request describes the calculation a report is built from
type Request struct {
	Input   model.ProjectInput
	Toggles engine.FactorToggles
	Quick   bool
	// ExpertDays is compared with the estimate when positive
	ExpertDays int
}

// Report gathers everything computed for a project input
type Report struct {
	Input        model.ProjectInput
	Mode         model.CalculationMode
	IRSuggestion *factor.IRSuggestion
	Estimate     *engine.Estimate
	Quick        *engine.QuickRange
	Suggestions  []advice.Suggestion
	CPI          *pricing.Quote
	Comparison   *advice.Comparison
	Problems     []string
}

// HasResult reports whether an estimate was produced
func (r *Report) HasResult() bool {
	return r.Estimate != nil
}

// HistoryRecord converts the report into a record ready to be saved. It
// returns nil when there is no estimate.
func (r *Report) HistoryRecord(expertDays int, note string) *model.HistoryRecord {
	if r.Estimate == nil {
		return nil
	}
	if expertDays <= 0 && r.Comparison != nil {
		expertDays = r.Comparison.ExpertDays
	}
	return model.NewHistoryRecord(
		r.Estimate.Input,
		r.Mode,
		r.Estimate.SystemResult(),
		model.ExpertConclusion{Days: expertDays, Note: note},
	)
}

// NewReport runs the estimate, suggestions, CPI and expert comparison for
// a request. A missing IR is taken from the selected locations when any.
func NewReport(eng *engine.Engine, req Request) *Report {
	input := req.Input

	report := &Report{
		Mode:        model.ModeDetailed,
		Suggestions: []advice.Suggestion{},
	}
	if req.Quick {
		report.Mode = model.ModeQuick
	}

	if input.IR <= 0 && len(input.Locations) > 0 {
		if s, ok := factor.SuggestIR(eng.Reference().Locations, input.Locations); ok {
			input.IR = s.DefaultIR
			report.IRSuggestion = &s
		}
	}

	if req.Quick {
		if q, ok := eng.QuickRange(input, req.Toggles); ok {
			report.Quick = q
			report.Estimate = q.Likely
		}
	} else if est, ok := eng.Estimate(input, req.Toggles); ok {
		report.Estimate = est
	}

	if report.Estimate == nil {
		if req.Quick && input.IR <= 0 {
			input.IR = model.DefaultIR
		}
		input.Normalize()
		report.Input = input
		report.Problems = input.Validate()
		if len(report.Problems) == 0 {
			report.Problems = []string{NoResultProblem}
		}
		return report
	}

	est := report.Estimate
	report.Input = est.Input
	report.Suggestions = advice.Suggestions(est.Input, est.Case)

	quote := pricing.EstimateCPI(est.Input)
	report.CPI = &quote

	if req.ExpertDays > 0 {
		cmp := advice.Compare(req.ExpertDays, est.Range())
		report.Comparison = &cmp
	}

	return report
}
