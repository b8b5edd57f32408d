package format

import (
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/pricing"
)

// MarkdownFormatter formats reports as markdown
type MarkdownFormatter struct {
	json *JSONFormatter
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{json: NewJSONFormatter()}
}

// Format formats a report as markdown
func (f *MarkdownFormatter) Format(report *Report) (string, error) {
	out := f.json.BuildOutput(report)

	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", out.ProjectName)

	// Parameters
	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	fmt.Fprintf(&sb, "| Sample size | %d |\n", out.Input.SampleSize)
	fmt.Fprintf(&sb, "| LOI | %d min |\n", out.Input.LOI)
	fmt.Fprintf(&sb, "| IR | %g%% |\n", out.Input.IR)
	fmt.Fprintf(&sb, "| Quota | %s |\n", out.Input.Quota)
	fmt.Fprintf(&sb, "| Hard target | %s |\n", yesNo(out.Input.HardTarget))
	fmt.Fprintf(&sb, "| Quota skew | %s |\n", out.Input.QuotaSkew)
	fmt.Fprintf(&sb, "| Target audience | %s |\n", out.Input.TargetAudience)
	fmt.Fprintf(&sb, "| QC buffer | %g%% |\n", out.Input.QCBufferPercent)
	if len(out.Input.Locations) > 0 {
		fmt.Fprintf(&sb, "| Locations | %s |\n", strings.Join(out.Input.Locations, ", "))
	}
	if len(out.Input.Vendors) > 0 {
		fmt.Fprintf(&sb, "| Vendors | %s |\n", strings.Join(out.Input.Vendors, ", "))
	}
	if out.Input.StartDate != "" {
		fmt.Fprintf(&sb, "| Start date | %s |\n", out.Input.StartDate)
	}
	sb.WriteString("\n")

	if out.IRSuggestion != nil {
		fmt.Fprintf(&sb, "> IR suggested from locations: %g%% (range %g%% - %g%%)\n\n",
			out.IRSuggestion.DefaultIR, out.IRSuggestion.Range.Min, out.IRSuggestion.Range.Max)
	}

	if len(out.Problems) > 0 {
		sb.WriteString("## Problems\n\n")
		for _, p := range out.Problems {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
		return sb.String(), nil
	}

	if r := out.Result; r != nil {
		sb.WriteString("## Estimate\n\n")
		fmt.Fprintf(&sb, "**Fieldwork: %d - %d days**\n\n", r.FWDaysMin, r.FWDaysMax)
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		caseName := r.CaseName
		if r.Interpolated {
			caseName += " (interpolated)"
		}
		fmt.Fprintf(&sb, "| Case | %s |\n", caseName)
		fmt.Fprintf(&sb, "| Difficulty | %s |\n", r.Difficulty)
		fmt.Fprintf(&sb, "| Base samples/day | %g |\n", r.BaseSamplesPerDay)
		fmt.Fprintf(&sb, "| Adjusted samples/day | %g |\n", r.AdjustedDailyRate)
		fmt.Fprintf(&sb, "| Required samples | %d |\n", r.RequiredSamples)
		fmt.Fprintf(&sb, "| QC buffer applied | %g%% |\n", roundFloat(r.QCBuffer*100, 1))
		fmt.Fprintf(&sb, "| Point estimate | %.2f days |\n", r.PointDays)
		sb.WriteString("\n")
	}

	if len(out.Factors) > 0 {
		sb.WriteString("## Factors\n\n")
		sb.WriteString("| Factor | Value |\n")
		sb.WriteString("|--------|-------|\n")
		for _, fo := range out.Factors {
			value := fmt.Sprintf("x%.2f", fo.Value)
			if !fo.Enabled {
				value = "off"
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", fo.Name, value)
		}
		sb.WriteString("\n")
	}

	if t := out.Timing; t != nil {
		sb.WriteString("## Timing\n\n")
		fmt.Fprintf(&sb, "%s to %s, factor x%.2f\n\n", t.Start, t.End, t.Factor)
		for _, w := range t.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		if len(t.Warnings) > 0 {
			sb.WriteString("\n")
		}
	}

	if q := out.Quick; q != nil {
		sb.WriteString("## Quick range\n\n")
		sb.WriteString("| Scenario | IR | Hard target | Days |\n")
		sb.WriteString("|----------|----|-------------|------|\n")
		writeScenario(&sb, "Best", q.Best)
		writeScenario(&sb, "Likely", q.Likely)
		writeScenario(&sb, "Worst", q.Worst)
		sb.WriteString("\n")
	}

	if len(out.Suggestions) > 0 {
		sb.WriteString("## Suggestions\n\n")
		for _, s := range out.Suggestions {
			fmt.Fprintf(&sb, "- **%s** %s\n", s.Type, s.Text)
		}
		sb.WriteString("\n")
	}

	if out.CPI != nil {
		writeCPI(&sb, out.CPI)
	}

	if c := out.Comparison; c != nil {
		sb.WriteString("## Expert comparison\n\n")
		fmt.Fprintf(&sb, "Expert: %d days, estimate midpoint: %g days (%+d%%, %s)\n", c.ExpertDays, c.Midpoint, c.DiffPercent, c.Status)
		if c.HasWarning() {
			fmt.Fprintf(&sb, "\n> %s\n", c.Warning)
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func writeScenario(sb *strings.Builder, label string, s ScenarioOutput) {
	fmt.Fprintf(sb, "| %s | %g%% | %s | %d - %d |\n", label, s.IR, yesNo(s.HardTarget), s.FWDaysMin, s.FWDaysMax)
}

func writeCPI(sb *strings.Builder, q *pricing.Quote) {
	sb.WriteString("## CPI\n\n")
	fmt.Fprintf(sb, "**%s %s per interview**\n\n", q.String(), q.Currency)
	for _, item := range q.Breakdown {
		fmt.Fprintf(sb, "- %s\n", item.Label)
	}
	sb.WriteString("\n")
}

// SuggestionIcon returns a short marker for a suggestion type
func SuggestionIcon(t advice.SuggestionType) string {
	switch t {
	case advice.SuggestionCritical:
		return "!!"
	case advice.SuggestionWarning:
		return "!"
	case advice.SuggestionCase:
		return "#"
	case advice.SuggestionRecommend:
		return ">"
	default:
		return "-"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
