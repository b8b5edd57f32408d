// Package engine composes the case baseline rate with every active
// adjustment factor into a fieldwork days range.
package engine

import (
	"context"
	"math"

	"github.com/bornholm/fieldwork/internal/calendar"
	"github.com/bornholm/fieldwork/internal/cases"
	"github.com/bornholm/fieldwork/internal/factor"
	"github.com/bornholm/fieldwork/internal/model"
	"go.uber.org/zap"
)

// Band is the uncertainty applied around the point estimate
type Band struct {
	Low  float64
	High float64
}

// DefaultBand is a fixed ±15% band
var DefaultBand = Band{Low: 0.85, High: 1.15}

// QuickSpread is the IR shift applied for best and worst quick scenarios
const QuickSpread = 15

// epsilon absorbs floating point noise before rounding up
const epsilon = 1e-9

// Source provides reference data snapshots
type Source interface {
	Snapshot(ctx context.Context) *model.ReferenceData
}

// Breakdown details every factor of an estimate. Throughput multipliers
// multiply into the adjusted daily rate, raw lookups are kept alongside.
type Breakdown struct {
	BaseSamplesPerDay float64 `json:"baseSamplesPerDay"`
	IRImpact          float64 `json:"irImpact"`
	Vendor            float64 `json:"vendor"`
	QuotaSkew         float64 `json:"quotaSkew"`
	Timing            float64 `json:"timing"`
	SampleSize        float64 `json:"sampleSize"`
	Location          float64 `json:"location"`
	Audience          float64 `json:"audience"`

	QuotaSkewMultiplier float64 `json:"quotaSkewMultiplier"`
	LocationDifficulty  float64 `json:"locationDifficulty"`
	AudienceDifficulty  float64 `json:"audienceDifficulty"`
	VendorQCReject      float64 `json:"vendorQcReject"`
	UserQCBuffer        float64 `json:"userQcBuffer"`
	EffectiveQCBuffer   float64 `json:"effectiveQcBuffer"`
	TravelBuffer        float64 `json:"travelBuffer"`
}

// Throughput returns the product of every throughput multiplier
func (b Breakdown) Throughput() float64 {
	return b.IRImpact * b.Vendor * b.QuotaSkew * b.Timing * b.SampleSize * b.Location * b.Audience
}

// Estimate is the result of a fieldwork calculation
type Estimate struct {
	Input             model.ProjectInput  `json:"input"`
	Case              model.Case          `json:"case"`
	Toggles           FactorToggles       `json:"toggles"`
	Factors           Breakdown           `json:"factors"`
	AdjustedDailyRate float64             `json:"adjustedDailyRate"`
	RequiredSamples   int                 `json:"requiredSamples"`
	PointDays         float64             `json:"pointDays"`
	FWDaysMin         int                 `json:"fwDaysMin"`
	FWDaysMax         int                 `json:"fwDaysMax"`
	Timing            *calendar.Result    `json:"timing,omitempty"`
	Vendors           []model.PanelVendor `json:"vendors,omitempty"`
	Locations         []model.Location    `json:"locations,omitempty"`
}

// Range returns the fieldwork days range
func (e *Estimate) Range() Range {
	return Range{Min: e.FWDaysMin, Max: e.FWDaysMax}
}

// SystemResult captures the estimate for a history record
func (e *Estimate) SystemResult() model.SystemResult {
	return model.SystemResult{
		CaseID:        e.Case.ID,
		CaseName:      e.Case.Name,
		Difficulty:    e.Case.Difficulty,
		SamplesPerDay: math.Round(e.AdjustedDailyRate*10) / 10,
		FWDaysMin:     e.FWDaysMin,
		FWDaysMax:     e.FWDaysMax,
	}
}

// Range is an inclusive fieldwork days range
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Engine estimates fieldwork duration from a reference data snapshot
type Engine struct {
	ref      *model.ReferenceData
	resolver *cases.Resolver
	calendar *calendar.Evaluator
	band     Band
}

// New creates an engine over the given reference data. Nil reference data
// uses the built-in tables.
func New(ref *model.ReferenceData) *Engine {
	if ref == nil {
		ref = model.DefaultReferenceData()
	}
	return &Engine{
		ref:      ref,
		resolver: cases.NewResolver(ref.Cases),
		calendar: calendar.NewEvaluator(ref.Timing),
		band:     DefaultBand,
	}
}

// Load creates an engine over the current snapshot of a source
func Load(ctx context.Context, src Source) *Engine {
	return New(src.Snapshot(ctx))
}

// Reference returns the reference data the engine works with
func (e *Engine) Reference() *model.ReferenceData {
	return e.ref
}

// Resolver returns the case resolver
func (e *Engine) Resolver() *cases.Resolver {
	return e.resolver
}

// Calendar returns the timing evaluator
func (e *Engine) Calendar() *calendar.Evaluator {
	return e.calendar
}

// Estimate computes the fieldwork days range for the input. It returns
// false, and no estimate, when the input is incomplete or the adjusted
// daily rate is not positive.
func (e *Engine) Estimate(input model.ProjectInput, toggles FactorToggles) (*Estimate, bool) {
	input.Normalize()
	if problems := input.Validate(); len(problems) > 0 {
		zap.L().Debug("estimate withheld, invalid input", zap.Strings("problems", problems))
		return nil, false
	}

	matched := e.resolver.Resolve(input.CaseQuery())

	b := Breakdown{
		BaseSamplesPerDay:   matched.SamplesPerDay,
		IRImpact:            1.0,
		Vendor:              1.0,
		QuotaSkew:           1.0,
		Timing:              1.0,
		SampleSize:          1.0,
		Location:            1.0,
		Audience:            1.0,
		QuotaSkewMultiplier: 1.0,
		LocationDifficulty:  1.0,
		AudienceDifficulty:  1.0,
		UserQCBuffer:        input.QCBufferPercent / 100,
	}

	result := &Estimate{
		Input:   input,
		Case:    matched,
		Toggles: toggles,
	}

	if toggles.IRImpact {
		b.IRImpact = factor.IRImpact(input.IR)
	}

	if toggles.Vendor {
		v := factor.Vendor(e.ref.PanelVendors, input.Vendors)
		b.Vendor = v.Factor
		b.VendorQCReject = v.AvgQCReject
		result.Vendors = v.Vendors
	}

	if toggles.QuotaSkew {
		b.QuotaSkewMultiplier = factor.QuotaSkew(e.ref.QuotaSkew, input.QuotaSkew)
		b.QuotaSkew = 1.0 / b.QuotaSkewMultiplier
	}

	if toggles.SampleSize {
		b.SampleSize = factor.SampleSize(input.SampleSize, nil)
	}

	if toggles.Location {
		l := factor.Location(e.ref.Locations, input.Locations)
		b.LocationDifficulty = l.Factor
		b.Location = l.Throughput()
		b.TravelBuffer = l.TravelBuffer
		result.Locations = l.Locations
	}

	if toggles.Audience {
		a := factor.Audience(e.ref.TargetAudiences, input.TargetAudience)
		b.AudienceDifficulty = a.DifficultyMultiplier
		b.Audience = a.Throughput()
	}

	if toggles.QCBuffer {
		b.EffectiveQCBuffer = math.Max(b.UserQCBuffer, b.VendorQCReject)
	}

	required := ceil(float64(input.SampleSize) * (1 + b.EffectiveQCBuffer))

	// The timing window spans the duration estimated without timing
	if toggles.Timing && input.StartDate != nil {
		preliminary := b.BaseSamplesPerDay * b.Throughput()
		if preliminary > 0 {
			days := max(1, ceil(float64(required)/preliminary))
			timing := e.calendar.TimingFactor(*input.StartDate, days)
			b.Timing = timing.Factor
			result.Timing = &timing
		}
	}

	rate := b.BaseSamplesPerDay * b.Throughput()
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		zap.L().Debug("estimate withheld, non positive daily rate",
			zap.String("case", matched.ID),
			zap.Float64("rate", rate),
		)
		return nil, false
	}

	point := float64(required) / rate

	result.Factors = b
	result.AdjustedDailyRate = rate
	result.RequiredSamples = required
	result.PointDays = point
	result.FWDaysMin = ceil(point*e.band.Low + b.TravelBuffer)
	result.FWDaysMax = ceil(point*e.band.High + b.TravelBuffer)

	return result, true
}

// QuickRange holds the best, likely and worst case estimates
type QuickRange struct {
	Best   *Estimate `json:"best"`
	Likely *Estimate `json:"likely"`
	Worst  *Estimate `json:"worst"`
}

// QuickRange runs the estimate three times: as given, with IR raised by
// QuickSpread and no hard target, and with IR lowered by QuickSpread and a
// hard target. A missing IR defaults to model.DefaultIR.
func (e *Engine) QuickRange(input model.ProjectInput, toggles FactorToggles) (*QuickRange, bool) {
	if input.IR <= 0 {
		input.IR = model.DefaultIR
	}

	likely, ok := e.Estimate(input, toggles)
	if !ok {
		return nil, false
	}

	best := input
	best.IR = math.Min(100, input.IR+QuickSpread)
	best.HardTarget = false

	worst := input
	worst.IR = math.Max(1, input.IR-QuickSpread)
	worst.HardTarget = true

	bestEstimate, ok := e.Estimate(best, toggles)
	if !ok {
		return nil, false
	}
	worstEstimate, ok := e.Estimate(worst, toggles)
	if !ok {
		return nil, false
	}

	return &QuickRange{
		Best:   bestEstimate,
		Likely: likely,
		Worst:  worstEstimate,
	}, true
}

// ceil rounds up, ignoring floating point noise below epsilon
func ceil(v float64) int {
	return int(math.Ceil(v - epsilon))
}
