package advice

import (
	"fmt"

	"github.com/bornholm/fieldwork/internal/model"
)

// SuggestionType is the severity or origin of a suggestion
type SuggestionType string

const (
	SuggestionInfo      SuggestionType = "info"
	SuggestionWarning   SuggestionType = "warning"
	SuggestionCritical  SuggestionType = "critical"
	SuggestionCase      SuggestionType = "case"
	SuggestionRecommend SuggestionType = "recommend"
)

// Suggestion is a piece of advisory text
type Suggestion struct {
	Type SuggestionType `json:"type" yaml:"type"`
	Text string         `json:"text" yaml:"text"`
}

// Rule thresholds
const (
	LowIR          = 25
	MediumLowIR    = 35
	LongLOI        = 20
	MediumLongLOI  = 15
	LargeSample    = 800
	RiskyItemCount = 2
)

// Suggestions generates advice from the raw input and the resolved case
func Suggestions(input model.ProjectInput, c model.Case) []Suggestion {
	suggestions := []Suggestion{}

	switch {
	case input.IR < LowIR:
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionWarning,
			Text: fmt.Sprintf("Low IR (%g%%), add 2-3 days of buffer in case the response rate is lower than expected", input.IR),
		})
	case input.IR < MediumLowIR:
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionInfo,
			Text: fmt.Sprintf("Medium-low IR (%g%%), consider adding 1 day of buffer", input.IR),
		})
	}

	switch {
	case input.LOI > LongLOI:
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionWarning,
			Text: fmt.Sprintf("Long questionnaire (%d minutes), drop-off may be high. Add 1-2 days", input.LOI),
		})
	case input.LOI > MediumLongLOI:
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionInfo,
			Text: fmt.Sprintf("LOI of %d minutes is fairly long, monitor quality checks closely", input.LOI),
		})
	}

	if input.SampleSize > LargeSample {
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionInfo,
			Text: fmt.Sprintf("Large sample (%d), the pace may slow down towards the end of fieldwork", input.SampleSize),
		})
	}

	if input.Quota == model.QuotaNested {
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionWarning,
			Text: "Nested quotas may struggle to fill the last cells. Monitor closely from day 3-4",
		})
	}

	if input.HardTarget {
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionCritical,
			Text: "Hard target, you MUST check feasibility with the vendor before committing to a timeline",
		})
	}

	for _, text := range c.Suggestions {
		suggestions = append(suggestions, Suggestion{Type: SuggestionCase, Text: text})
	}

	if countRisky(suggestions) >= RiskyItemCount {
		suggestions = append(suggestions, Suggestion{
			Type: SuggestionRecommend,
			Text: "Several risk factors, consider adding 20-30% of buffer to the timeline",
		})
	}

	return suggestions
}

func countRisky(suggestions []Suggestion) int {
	count := 0
	for _, s := range suggestions {
		if s.Type == SuggestionWarning || s.Type == SuggestionCritical {
			count++
		}
	}
	return count
}
