package model

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `json:"min" yaml:"min" bson:"min"`
	Max float64 `json:"max" yaml:"max" bson:"max"`
}

// Contains reports whether v lies within the inclusive range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Conditions are the predicates a project must satisfy to match a case
type Conditions struct {
	IR         Range     `json:"ir" yaml:"ir" bson:"ir"`
	Sample     Range     `json:"sample" yaml:"sample" bson:"sample"`
	LOI        Range     `json:"loi" yaml:"loi" bson:"loi"`
	Quota      QuotaType `json:"quota" yaml:"quota" bson:"quota"`
	HardTarget bool      `json:"hardTarget" yaml:"hardTarget" bson:"hardTarget"`
}

// CaseQuery holds the project parameters that drive case resolution
type CaseQuery struct {
	IR         float64
	SampleSize int
	LOI        int
	Quota      QuotaType
	HardTarget bool
}

// Matches reports whether every condition holds for the query
func (c Conditions) Matches(q CaseQuery) bool {
	return c.IR.Contains(q.IR) &&
		c.Sample.Contains(float64(q.SampleSize)) &&
		c.LOI.Contains(float64(q.LOI)) &&
		c.Quota == q.Quota &&
		c.HardTarget == q.HardTarget
}

// Score rates how close the query is to the conditions.
// IR and sample hits weigh 3, LOI, quota and hard target hits weigh 2.
func (c Conditions) Score(q CaseQuery) int {
	score := 0
	if c.IR.Contains(q.IR) {
		score += 3
	}
	if c.Sample.Contains(float64(q.SampleSize)) {
		score += 3
	}
	if c.LOI.Contains(float64(q.LOI)) {
		score += 2
	}
	if c.Quota == q.Quota {
		score += 2
	}
	if c.HardTarget == q.HardTarget {
		score += 2
	}
	return score
}

// Case is a reference feasibility case with its baseline throughput
type Case struct {
	ID            string     `json:"id" yaml:"id" bson:"_id"`
	Name          string     `json:"name" yaml:"name" bson:"name"`
	Order         int        `json:"order" yaml:"order" bson:"order"`
	Difficulty    string     `json:"difficulty" yaml:"difficulty" bson:"difficulty"`
	Conditions    Conditions `json:"conditions" yaml:"conditions" bson:"conditions"`
	SamplesPerDay float64    `json:"samplesPerDay" yaml:"samplesPerDay" bson:"samplesPerDay"`
	FWDaysMin     int        `json:"fwDaysMin" yaml:"fwDaysMin" bson:"fwDaysMin"`
	FWDaysMax     int        `json:"fwDaysMax" yaml:"fwDaysMax" bson:"fwDaysMax"`
	Suggestions   []string   `json:"suggestions" yaml:"suggestions" bson:"suggestions"`

	// Interpolated marks a synthetic case computed from IR anchors
	Interpolated bool `json:"interpolated,omitempty" yaml:"interpolated,omitempty" bson:"-"`
}
