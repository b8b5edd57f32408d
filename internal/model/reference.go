package model

import "time"

// LocationCategory is the classification scheme a location belongs to
type LocationCategory string

const (
	CategoryCity   LocationCategory = "city"
	CategoryCCI    LocationCategory = "cci"
	CategoryGSO    LocationCategory = "gso"
	CategoryRegion LocationCategory = "region"
)

// Location is a geographic target with its panel characteristics
type Location struct {
	ID       string           `json:"id" yaml:"id" bson:"_id"`
	Name     string           `json:"name" yaml:"name" bson:"name"`
	Category LocationCategory `json:"category" yaml:"category" bson:"category"`
	Tier     int              `json:"tier" yaml:"tier" bson:"tier"`
	// DefaultIR is the typical incidence rate in percent
	DefaultIR     float64 `json:"defaultIR" yaml:"defaultIR" bson:"defaultIR"`
	IRRange       Range   `json:"irRange" yaml:"irRange" bson:"irRange"`
	SamplesPerDay float64 `json:"samplesPerDay,omitempty" yaml:"samplesPerDay,omitempty" bson:"samplesPerDay,omitempty"`
	// DifficultyFactor is 1.0 at baseline, above 1 means slower fieldwork
	DifficultyFactor float64 `json:"difficultyFactor,omitempty" yaml:"difficultyFactor,omitempty" bson:"difficultyFactor,omitempty"`
	Notes            string  `json:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
}

// Location field defaults applied when reference data omits them
const (
	DefaultLocationSamplesPerDay    = 50
	DefaultLocationDifficultyFactor = 1.0
)

// GetSamplesPerDay returns the configured rate or the default
func (l Location) GetSamplesPerDay() float64 {
	if l.SamplesPerDay <= 0 {
		return DefaultLocationSamplesPerDay
	}
	return l.SamplesPerDay
}

// GetDifficultyFactor returns the configured factor or the neutral default
func (l Location) GetDifficultyFactor() float64 {
	if l.DifficultyFactor <= 0 {
		return DefaultLocationDifficultyFactor
	}
	return l.DifficultyFactor
}

// PanelVendor is an online panel supplier
type PanelVendor struct {
	ID    string `json:"id" yaml:"id" bson:"_id"`
	Name  string `json:"name" yaml:"name" bson:"name"`
	Order int    `json:"order" yaml:"order" bson:"order"`
	// ResponseFactor multiplies throughput, above 1 is faster
	ResponseFactor  float64  `json:"responseFactor" yaml:"responseFactor" bson:"responseFactor"`
	DefaultQCReject float64  `json:"defaultQcReject" yaml:"defaultQcReject" bson:"defaultQcReject"`
	IsInternal      bool     `json:"isInternal" yaml:"isInternal" bson:"isInternal"`
	Pros            []string `json:"pros,omitempty" yaml:"pros,omitempty" bson:"pros,omitempty"`
	Cons            []string `json:"cons,omitempty" yaml:"cons,omitempty" bson:"cons,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// GetResponseFactor returns the response factor, neutral when unset
func (v PanelVendor) GetResponseFactor() float64 {
	if v.ResponseFactor <= 0 {
		return 1.0
	}
	return v.ResponseFactor
}

// DefaultVendorQCReject is the QC reject rate assumed when a vendor has
// none, or when no known vendor is selected
const DefaultVendorQCReject = 0.1

// GetDefaultQCReject returns the QC reject rate or DefaultVendorQCReject
func (v PanelVendor) GetDefaultQCReject() float64 {
	if v.DefaultQCReject <= 0 {
		return DefaultVendorQCReject
	}
	return v.DefaultQCReject
}

// TargetAudience is a respondent segment with its reachability
type TargetAudience struct {
	ID    string `json:"id" yaml:"id" bson:"_id"`
	Name  string `json:"name" yaml:"name" bson:"name"`
	Order int    `json:"order" yaml:"order" bson:"order"`
	// IRFactor is between 0 and 1, lower is harder to reach
	IRFactor float64 `json:"irFactor" yaml:"irFactor" bson:"irFactor"`
	// DifficultyMultiplier is at least 1, higher means more days
	DifficultyMultiplier float64 `json:"difficultyMultiplier" yaml:"difficultyMultiplier" bson:"difficultyMultiplier"`
	Description          string  `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Notes                string  `json:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
}

// QuotaSkewOption describes how uneven the quota distribution is
type QuotaSkewOption struct {
	ID          QuotaSkewID `json:"id" yaml:"id" bson:"id"`
	Name        string      `json:"name" yaml:"name" bson:"name"`
	Order       int         `json:"order" yaml:"order" bson:"order"`
	Multiplier  float64     `json:"multiplier" yaml:"multiplier" bson:"multiplier"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Examples    []string    `json:"examples,omitempty" yaml:"examples,omitempty" bson:"examples,omitempty"`
}

// Holiday identifiers used as keys of TimingConfig.HolidayFactors
const (
	HolidayNewYear             = "new_year"
	HolidayReunificationLabour = "reunification_labour"
	HolidayHungKings           = "hung_kings"
	HolidayNationalDay         = "national_day"
	HolidayChristmas           = "christmas"
	HolidayTet                 = "tet"
)

// TimingConfig holds throughput multipliers per weekday and per holiday
type TimingConfig struct {
	// DayFactors is indexed by time.Weekday, Sunday first
	DayFactors     [7]float64         `json:"dayFactors" yaml:"dayFactors" bson:"dayFactors"`
	HolidayFactors map[string]float64 `json:"holidayFactors" yaml:"holidayFactors" bson:"holidayFactors"`
}

// DayFactor returns the multiplier for a weekday, neutral when unset
func (c TimingConfig) DayFactor(day time.Weekday) float64 {
	f := c.DayFactors[day]
	if f <= 0 {
		return 1.0
	}
	return f
}

// HolidayFactor returns the slowdown for a holiday, or fallback when unset
func (c TimingConfig) HolidayFactor(id string, fallback float64) float64 {
	if f, ok := c.HolidayFactors[id]; ok && f > 0 {
		return f
	}
	return fallback
}

// Template prefills a project input for a common study type
type Template struct {
	ID          string          `json:"id" yaml:"id" bson:"_id"`
	Name        string          `json:"name" yaml:"name" bson:"name"`
	Order       int             `json:"order" yaml:"order" bson:"order"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Defaults    TemplateDefault `json:"defaults" yaml:"defaults" bson:"defaults"`
}

// TemplateDefault is the set of input values a template provides
type TemplateDefault struct {
	SampleSize     int       `json:"sampleSize" yaml:"sampleSize" bson:"sampleSize"`
	IR             float64   `json:"ir" yaml:"ir" bson:"ir"`
	LOI            int       `json:"loi" yaml:"loi" bson:"loi"`
	Quota          QuotaType `json:"quota" yaml:"quota" bson:"quota"`
	HardTarget     bool      `json:"hardTarget" yaml:"hardTarget" bson:"hardTarget"`
	Locations      []string  `json:"locations,omitempty" yaml:"locations,omitempty" bson:"locations,omitempty"`
	TargetAudience string    `json:"targetAudience" yaml:"targetAudience" bson:"targetAudience"`
}

// Apply returns a project input prefilled with the template values
func (t Template) Apply(name string) ProjectInput {
	input := ProjectInput{
		ProjectName:    name,
		SampleSize:     t.Defaults.SampleSize,
		IR:             t.Defaults.IR,
		LOI:            t.Defaults.LOI,
		Quota:          t.Defaults.Quota,
		HardTarget:     t.Defaults.HardTarget,
		Locations:      append([]string(nil), t.Defaults.Locations...),
		TargetAudience: t.Defaults.TargetAudience,
	}
	input.Normalize()
	return input
}

// ReferenceData bundles every reference table used by the estimator
type ReferenceData struct {
	Cases           []Case            `json:"cases" yaml:"cases"`
	Locations       []Location        `json:"locations" yaml:"locations"`
	PanelVendors    []PanelVendor     `json:"panelVendors" yaml:"panelVendors"`
	TargetAudiences []TargetAudience  `json:"targetAudiences" yaml:"targetAudiences"`
	QuotaSkew       []QuotaSkewOption `json:"quotaSkew" yaml:"quotaSkew"`
	Timing          TimingConfig      `json:"timing" yaml:"timing"`
	Templates       []Template        `json:"templates" yaml:"templates"`
}

// DefaultReferenceData returns the built-in reference tables
func DefaultReferenceData() *ReferenceData {
	return &ReferenceData{
		Cases:           DefaultCases(),
		Locations:       DefaultLocations(),
		PanelVendors:    DefaultPanelVendors(),
		TargetAudiences: DefaultTargetAudiences(),
		QuotaSkew:       DefaultQuotaSkewOptions(),
		Timing:          DefaultTimingConfig(),
		Templates:       DefaultTemplates(),
	}
}
