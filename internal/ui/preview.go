package ui

import (
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/advice"
	"github.com/bornholm/fieldwork/internal/format"
	"github.com/rivo/tview"
)

// renderPreview renders a report as tview colored text
func renderPreview(report *format.Report) string {
	out := format.NewJSONFormatter().BuildOutput(report)

	var sb strings.Builder

	if out.IRSuggestion != nil {
		fmt.Fprintf(&sb, "[gray]IR from locations: %g%% (%g%% - %g%%)[white]\n\n",
			out.IRSuggestion.DefaultIR, out.IRSuggestion.Range.Min, out.IRSuggestion.Range.Max)
	}

	if len(out.Problems) > 0 {
		sb.WriteString("[red]Problems:[white]\n")
		for _, p := range out.Problems {
			fmt.Fprintf(&sb, "  %s\n", tview.Escape(p))
		}
		return sb.String()
	}

	r := out.Result
	if r == nil {
		return sb.String()
	}

	fmt.Fprintf(&sb, "[yellow]Fieldwork:[white] [green]%d - %d days[white]\n\n", r.FWDaysMin, r.FWDaysMax)
	fmt.Fprintf(&sb, "  Case: %s (%s)\n", r.CaseName, r.Difficulty)
	fmt.Fprintf(&sb, "  Samples/day: %g -> %g\n", r.BaseSamplesPerDay, r.AdjustedDailyRate)
	fmt.Fprintf(&sb, "  Required samples: %d\n", r.RequiredSamples)

	if q := out.Quick; q != nil {
		sb.WriteString("\n[yellow]Quick range:[white]\n")
		fmt.Fprintf(&sb, "  Best:   %d - %d days (IR %g%%)\n", q.Best.FWDaysMin, q.Best.FWDaysMax, q.Best.IR)
		fmt.Fprintf(&sb, "  Likely: %d - %d days (IR %g%%)\n", q.Likely.FWDaysMin, q.Likely.FWDaysMax, q.Likely.IR)
		fmt.Fprintf(&sb, "  Worst:  %d - %d days (IR %g%%)\n", q.Worst.FWDaysMin, q.Worst.FWDaysMax, q.Worst.IR)
	}

	sb.WriteString("\n[yellow]Factors:[white]\n")
	for _, fo := range out.Factors {
		if !fo.Enabled {
			fmt.Fprintf(&sb, "  [gray]%s: off[white]\n", fo.Name)
			continue
		}
		fmt.Fprintf(&sb, "  %s: x%g\n", fo.Name, fo.Value)
	}

	if t := out.Timing; t != nil {
		fmt.Fprintf(&sb, "\n[yellow]Timing:[white] %s to %s (x%g)\n", t.Start, t.End, t.Factor)
		for _, w := range t.Warnings {
			fmt.Fprintf(&sb, "  [orange]%s[white]\n", tview.Escape(w))
		}
	}

	if out.CPI != nil {
		fmt.Fprintf(&sb, "\n[yellow]CPI:[white] %s %s\n", out.CPI.String(), out.CPI.Currency)
	}

	if len(out.Suggestions) > 0 {
		sb.WriteString("\n[yellow]Suggestions:[white]\n")
		for _, s := range out.Suggestions {
			fmt.Fprintf(&sb, "  [%s]%s[white] %s\n", suggestionColor(s.Type),
				tview.Escape(format.SuggestionIcon(s.Type)), tview.Escape(s.Text))
		}
	}

	if c := out.Comparison; c != nil {
		fmt.Fprintf(&sb, "\n[yellow]Expert:[white] %d days, %s (%+d%%)\n", c.ExpertDays, c.Status, c.DiffPercent)
		if c.HasWarning() {
			fmt.Fprintf(&sb, "  [red]%s[white]\n", tview.Escape(c.Warning))
		}
	}

	return sb.String()
}

func suggestionColor(t advice.SuggestionType) string {
	switch t {
	case advice.SuggestionCritical:
		return "red"
	case advice.SuggestionWarning:
		return "orange"
	case advice.SuggestionRecommend:
		return "green"
	default:
		return "gray"
	}
}
