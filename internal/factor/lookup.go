package factor

import "github.com/bornholm/fieldwork/internal/model"

// QuotaSkew returns the slowdown multiplier of a quota skew profile.
// Unset or unknown profiles are neutral.
func QuotaSkew(options []model.QuotaSkewOption, id model.QuotaSkewID) float64 {
	for _, o := range options {
		if o.ID == id && o.Multiplier > 0 {
			return o.Multiplier
		}
	}
	return 1.0
}

// IRImpact maps the raw incidence rate to a throughput multiplier.
// Below 50 it ramps from 0.4 to 0.98, from 50 it ramps from 1.0 to 1.15,
// leaving a small step at exactly 50.
func IRImpact(ir float64) float64 {
	if ir >= 50 {
		return 1.0 + ((ir-50)/50)*0.15
	}
	return 0.4 + (ir/50)*0.58
}

// AudienceResult is the effect of the selected target audience
type AudienceResult struct {
	IRFactor             float64               `json:"irFactor"`
	DifficultyMultiplier float64               `json:"difficultyMultiplier"`
	Audience             *model.TargetAudience `json:"audience,omitempty"`
}

// Throughput returns the reciprocal of the difficulty multiplier
func (r AudienceResult) Throughput() float64 {
	if r.DifficultyMultiplier <= 0 {
		return 1.0
	}
	return 1.0 / r.DifficultyMultiplier
}

// Audience looks up a target audience. The general audience and unknown
// IDs are neutral.
func Audience(all []model.TargetAudience, id string) AudienceResult {
	neutral := AudienceResult{IRFactor: 1.0, DifficultyMultiplier: 1.0}
	if id == "" || id == model.GeneralAudience {
		return neutral
	}

	for i := range all {
		if all[i].ID != id {
			continue
		}
		a := all[i]
		result := AudienceResult{
			IRFactor:             a.IRFactor,
			DifficultyMultiplier: a.DifficultyMultiplier,
			Audience:             &a,
		}
		if result.DifficultyMultiplier <= 0 {
			result.DifficultyMultiplier = 1.0
		}
		if result.IRFactor <= 0 {
			result.IRFactor = 1.0
		}
		return result
	}

	return neutral
}

// SizeBand applies Factor to sample sizes up to MaxSize
type SizeBand struct {
	MaxSize int
	Factor  float64
}

// DefaultSizeBands are ordered by threshold with strictly decreasing factors
var DefaultSizeBands = []SizeBand{
	{300, 1.0},
	{500, 0.95},
	{800, 0.90},
	{1200, 0.85},
	{2000, 0.80},
	{3500, 0.74},
}

// LargeSampleFactor applies above the last band
const LargeSampleFactor = 0.68

// SampleSize returns the diminishing returns factor of the first band
// whose threshold is at least n
func SampleSize(n int, bands []SizeBand) float64 {
	if bands == nil {
		bands = DefaultSizeBands
	}
	for _, b := range bands {
		if n <= b.MaxSize {
			return b.Factor
		}
	}
	return LargeSampleFactor
}
