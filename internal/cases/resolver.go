// Package cases resolves a project to a reference feasibility case, or to
// a case interpolated from incidence rate anchors when none matches.
package cases

import (
	"fmt"
	"math"

	"github.com/bornholm/fieldwork/internal/model"
)

// InterpolatedCaseID identifies synthetic cases
const InterpolatedCaseID = "interpolated"

// Slowdown multipliers applied to interpolated rates
const (
	NestedMultiplier     = 0.82
	HardTargetMultiplier = 0.65
)

// Anchor is a baseline samples per day at a given incidence rate
type Anchor struct {
	IR            float64
	SamplesPerDay float64
}

// DefaultAnchors span IR 1 to 100 and increase in both fields
var DefaultAnchors = []Anchor{
	{1, 8},
	{5, 15},
	{10, 25},
	{15, 35},
	{20, 45},
	{30, 60},
	{40, 75},
	{50, 90},
	{60, 100},
	{75, 115},
	{100, 140},
}

// DifficultyBand labels interpolated rates at or above MinRate
type DifficultyBand struct {
	MinRate float64
	Label   string
}

// DifficultyBands are ordered from the easiest band down
var DifficultyBands = []DifficultyBand{
	{100, "Very easy"},
	{70, "Easy"},
	{45, "Medium"},
	{25, "Hard"},
	{12, "Very hard"},
}

// ExtremeDifficulty labels rates below the last band
const ExtremeDifficulty = "Extreme"

// OrderedCases is a case table where the first satisfying case wins.
// The order of the table is significant and never changed.
type OrderedCases []model.Case

// First returns the first case whose conditions all hold for the query
func (c OrderedCases) First(q model.CaseQuery) (model.Case, bool) {
	for _, candidate := range c {
		if candidate.Conditions.Matches(q) {
			return candidate, true
		}
	}
	return model.Case{}, false
}

// Closest returns the case with the highest closeness score. Ties keep
// the earliest case.
func (c OrderedCases) Closest(q model.CaseQuery) (model.Case, bool) {
	best := -1
	var bestCase model.Case
	for _, candidate := range c {
		if score := candidate.Conditions.Score(q); score > best {
			best = score
			bestCase = candidate
		}
	}
	return bestCase, best >= 0
}

// Resolver resolves project parameters to a case
type Resolver struct {
	cases   OrderedCases
	anchors []Anchor
}

// NewResolver creates a resolver over the given cases. An empty table
// falls back to the built-in cases.
func NewResolver(cases []model.Case) *Resolver {
	if len(cases) == 0 {
		cases = model.DefaultCases()
	}
	return &Resolver{
		cases:   OrderedCases(cases),
		anchors: DefaultAnchors,
	}
}

// Cases returns the case table in match order
func (r *Resolver) Cases() OrderedCases {
	return r.cases
}

// Resolve returns the first matching case unchanged, or an interpolated
// case carrying the suggestions of the closest stored case
func (r *Resolver) Resolve(q model.CaseQuery) model.Case {
	if c, ok := r.cases.First(q); ok {
		return c
	}

	rate := InterpolateRate(r.anchors, q.IR)
	if q.Quota == model.QuotaNested {
		rate *= NestedMultiplier
	}
	if q.HardTarget {
		rate *= HardTargetMultiplier
	}
	rate = math.Round(rate)

	interpolated := model.Case{
		ID:         InterpolatedCaseID,
		Name:       fmt.Sprintf("Interpolated (IR %g%%)", q.IR),
		Difficulty: Difficulty(rate),
		Conditions: model.Conditions{
			IR:         model.Range{Min: q.IR, Max: q.IR},
			Sample:     model.Range{Min: float64(q.SampleSize), Max: float64(q.SampleSize)},
			LOI:        model.Range{Min: float64(q.LOI), Max: float64(q.LOI)},
			Quota:      q.Quota,
			HardTarget: q.HardTarget,
		},
		SamplesPerDay: rate,
		Suggestions:   []string{},
		Interpolated:  true,
	}

	if closest, ok := r.cases.Closest(q); ok {
		interpolated.Suggestions = append(interpolated.Suggestions, closest.Suggestions...)
	}

	return interpolated
}

// InterpolateRate linearly interpolates the baseline samples per day at
// the given IR, clamped to [1, 100]
func InterpolateRate(anchors []Anchor, ir float64) float64 {
	if len(anchors) == 0 {
		return 0
	}

	ir = math.Max(1, math.Min(100, ir))

	if ir <= anchors[0].IR {
		return anchors[0].SamplesPerDay
	}

	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		if ir <= hi.IR {
			position := (ir - lo.IR) / (hi.IR - lo.IR)
			return lo.SamplesPerDay + position*(hi.SamplesPerDay-lo.SamplesPerDay)
		}
	}

	return anchors[len(anchors)-1].SamplesPerDay
}

// Difficulty labels a daily rate using DifficultyBands
func Difficulty(rate float64) string {
	for _, b := range DifficultyBands {
		if rate >= b.MinRate {
			return b.Label
		}
	}
	return ExtremeDifficulty
}
