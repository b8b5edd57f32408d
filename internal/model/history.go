package model

import "time"

// CalculationMode tells how a saved calculation was produced
type CalculationMode string

const (
	ModeDetailed CalculationMode = "detailed"
	ModeQuick    CalculationMode = "quick"
)

// DefaultProjectName is used when a calculation is saved without a name
const DefaultProjectName = "Untitled Project"

// SystemResult is the estimator output captured with a history record
type SystemResult struct {
	CaseID        string  `json:"caseId" yaml:"caseId" bson:"caseId"`
	CaseName      string  `json:"caseName,omitempty" yaml:"caseName,omitempty" bson:"caseName,omitempty"`
	Difficulty    string  `json:"difficulty" yaml:"difficulty" bson:"difficulty"`
	SamplesPerDay float64 `json:"samplesPerDay" yaml:"samplesPerDay" bson:"samplesPerDay"`
	FWDaysMin     int     `json:"fwDaysMin" yaml:"fwDaysMin" bson:"fwDaysMin"`
	FWDaysMax     int     `json:"fwDaysMax" yaml:"fwDaysMax" bson:"fwDaysMax"`
}

// ExpertConclusion is the day count an expert settled on
type ExpertConclusion struct {
	Days int    `json:"days" yaml:"days" bson:"days"`
	Note string `json:"note,omitempty" yaml:"note,omitempty" bson:"note,omitempty"`
}

// HistoryRecord is a saved calculation. It is never mutated once saved.
type HistoryRecord struct {
	ID               string           `json:"id" yaml:"id" bson:"_id"`
	ProjectName      string           `json:"projectName" yaml:"projectName" bson:"projectName"`
	Mode             CalculationMode  `json:"mode" yaml:"mode" bson:"mode"`
	Input            ProjectInput     `json:"input" yaml:"input" bson:"input"`
	SystemResult     SystemResult     `json:"systemResult" yaml:"systemResult" bson:"systemResult"`
	ExpertConclusion ExpertConclusion `json:"expertConclusion" yaml:"expertConclusion" bson:"expertConclusion"`
	CreatedAt        time.Time        `json:"createdAt" yaml:"createdAt" bson:"createdAt"`
}

// NewHistoryRecord creates a record with a fresh ID and creation time
func NewHistoryRecord(input ProjectInput, mode CalculationMode, result SystemResult, conclusion ExpertConclusion) *HistoryRecord {
	name := input.ProjectName
	if name == "" {
		name = DefaultProjectName
	}
	if mode == "" {
		mode = ModeDetailed
	}
	return &HistoryRecord{
		ID:               generateID(),
		ProjectName:      name,
		Mode:             mode,
		Input:            input,
		SystemResult:     result,
		ExpertConclusion: conclusion,
		CreatedAt:        time.Now().UTC(),
	}
}
