package factor

import (
	"fmt"
	"math"
	"strings"

	"github.com/bornholm/fieldwork/internal/model"
)

// LocationResult is the aggregated effect of the selected locations
type LocationResult struct {
	// Factor is the mean difficulty factor, above 1 means slower fieldwork
	Factor           float64 `json:"factor"`
	AvgSamplesPerDay float64 `json:"avgSamplesPerDay"`
	// TravelBuffer is extra days added to the range, always 0 online
	TravelBuffer float64          `json:"travelBuffer"`
	Notes        string           `json:"notes"`
	Locations    []model.Location `json:"locations"`
}

// Throughput returns the reciprocal of the difficulty factor
func (r LocationResult) Throughput() float64 {
	if r.Factor <= 0 {
		return 1.0
	}
	return 1.0 / r.Factor
}

// Location averages the difficulty factor of the selected locations.
// An empty or unknown selection is neutral.
func Location(all []model.Location, selected []string) LocationResult {
	locations := selectByID(all, selected, func(l model.Location) string { return l.ID })
	if len(locations) == 0 {
		return LocationResult{Factor: 1.0, Locations: []model.Location{}}
	}

	var factorSum, spdSum float64
	for _, l := range locations {
		factorSum += l.GetDifficultyFactor()
		spdSum += l.GetSamplesPerDay()
	}

	n := float64(len(locations))
	return LocationResult{
		Factor:           factorSum / n,
		AvgSamplesPerDay: math.Round(spdSum / n),
		TravelBuffer:     0,
		Notes:            locationNames(locations),
		Locations:        locations,
	}
}

// IRSuggestion is the incidence rate suggested for a set of locations
type IRSuggestion struct {
	DefaultIR     float64     `json:"defaultIR" yaml:"defaultIR"`
	Range         model.Range `json:"range" yaml:"range"`
	SamplesPerDay float64     `json:"samplesPerDay" yaml:"samplesPerDay"`
	TravelBuffer  float64     `json:"travelBuffer" yaml:"travelBuffer"`
	Notes         string      `json:"notes" yaml:"notes"`
}

// FallbackIRSuggestion is used when location data is unavailable
var FallbackIRSuggestion = IRSuggestion{
	DefaultIR:     30,
	Range:         model.Range{Min: 20, Max: 40},
	SamplesPerDay: model.DefaultLocationSamplesPerDay,
}

// SuggestIR returns the rounded mean default IR and the widest IR range of
// the selected locations. It returns false when nothing is selected.
func SuggestIR(all []model.Location, selected []string) (IRSuggestion, bool) {
	locations := selectByID(all, selected, func(l model.Location) string { return l.ID })
	if len(locations) == 0 {
		return IRSuggestion{}, false
	}

	var irSum, spdSum float64
	minIR := math.Inf(1)
	maxIR := math.Inf(-1)
	for _, l := range locations {
		irSum += l.DefaultIR
		spdSum += l.GetSamplesPerDay()
		minIR = math.Min(minIR, l.IRRange.Min)
		maxIR = math.Max(maxIR, l.IRRange.Max)
	}

	n := float64(len(locations))
	return IRSuggestion{
		DefaultIR:     math.Round(irSum / n),
		Range:         model.Range{Min: minIR, Max: maxIR},
		SamplesPerDay: math.Round(spdSum / n),
		TravelBuffer:  0,
		Notes:         locationNames(locations),
	}, true
}

// Inconsistency flags two locations of the same classification whose
// difficulty factor and samples per day disagree in direction
type Inconsistency struct {
	Harder  string `json:"harder"`
	Easier  string `json:"easier"`
	Message string `json:"message"`
}

// CheckLocations compares every pair of locations within a category. A
// location with a higher difficulty factor is expected to deliver fewer
// samples per day.
func CheckLocations(locations []model.Location) []Inconsistency {
	var issues []Inconsistency

	for i := range locations {
		for j := range locations {
			a, b := locations[i], locations[j]
			if i == j || a.Category != b.Category {
				continue
			}
			if a.GetDifficultyFactor() > b.GetDifficultyFactor() && a.GetSamplesPerDay() > b.GetSamplesPerDay() {
				issues = append(issues, Inconsistency{
					Harder: a.ID,
					Easier: b.ID,
					Message: fmt.Sprintf("%s is harder than %s (difficulty %.2f > %.2f) but expects more samples per day (%.0f > %.0f)",
						a.ID, b.ID, a.GetDifficultyFactor(), b.GetDifficultyFactor(), a.GetSamplesPerDay(), b.GetSamplesPerDay()),
				})
			}
		}
	}

	return issues
}

func locationNames(locations []model.Location) string {
	names := make([]string, 0, len(locations))
	for _, l := range locations {
		names = append(names, l.Name)
	}
	return strings.Join(names, ", ")
}
