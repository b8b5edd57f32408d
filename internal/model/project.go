package model

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// QuotaType describes how demographic quotas are structured
type QuotaType string

const (
	QuotaSimple QuotaType = "simple"
	QuotaNested QuotaType = "nested"
)

// QuotaSkewID identifies a quota distribution profile
type QuotaSkewID string

const (
	SkewBalanced QuotaSkewID = "balanced"
	SkewLight    QuotaSkewID = "light_skew"
	SkewHeavy    QuotaSkewID = "heavy_skew"
)

// GeneralAudience is the baseline target audience, always neutral
const GeneralAudience = "general"

// DefaultIR is the incidence rate assumed when none is provided
const DefaultIR = 35

// ProjectInput holds the parameters of a single fieldwork calculation
type ProjectInput struct {
	ProjectName     string      `json:"projectName,omitempty" yaml:"projectName,omitempty" bson:"projectName,omitempty"`
	SampleSize      int         `json:"sampleSize" yaml:"sampleSize" bson:"sampleSize" validate:"gt=0"`
	LOI             int         `json:"loi" yaml:"loi" bson:"loi" validate:"gt=0"`
	IR              float64     `json:"ir" yaml:"ir" bson:"ir" validate:"gte=1,lte=100"`
	Quota           QuotaType   `json:"quota" yaml:"quota" bson:"quota" validate:"oneof=simple nested"`
	HardTarget      bool        `json:"hardTarget" yaml:"hardTarget" bson:"hardTarget"`
	Locations       []string    `json:"locations,omitempty" yaml:"locations,omitempty" bson:"locations,omitempty"`
	Vendors         []string    `json:"vendors,omitempty" yaml:"vendors,omitempty" bson:"vendors,omitempty"`
	QuotaSkew       QuotaSkewID `json:"quotaSkew,omitempty" yaml:"quotaSkew,omitempty" bson:"quotaSkew,omitempty"`
	QCBufferPercent float64     `json:"qcBufferPercent" yaml:"qcBufferPercent" bson:"qcBufferPercent" validate:"gte=0,lte=100"`
	StartDate       *time.Time  `json:"startDate,omitempty" yaml:"startDate,omitempty" bson:"startDate,omitempty"`
	TargetAudience  string      `json:"targetAudience,omitempty" yaml:"targetAudience,omitempty" bson:"targetAudience,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize fills the documented defaults for omitted optional fields
func (p *ProjectInput) Normalize() {
	if p.Quota == "" {
		p.Quota = QuotaSimple
	}
	if p.QuotaSkew == "" {
		p.QuotaSkew = SkewBalanced
	}
	if p.TargetAudience == "" {
		p.TargetAudience = GeneralAudience
	}
}

// Validate checks the input and returns a list of human readable problems.
// An empty list means the input can be estimated.
func (p *ProjectInput) Validate() []string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var errors []string
	for _, fe := range validationErrors {
		errors = append(errors, describeFieldError(fe))
	}
	return errors
}

// IsValid reports whether the input passes validation
func (p *ProjectInput) IsValid() bool {
	return len(p.Validate()) == 0
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

// CaseQuery extracts the fields used to resolve a case
func (p *ProjectInput) CaseQuery() CaseQuery {
	return CaseQuery{
		IR:         p.IR,
		SampleSize: p.SampleSize,
		LOI:        p.LOI,
		Quota:      p.Quota,
		HardTarget: p.HardTarget,
	}
}

// generateID generates a unique identifier
func generateID() string {
	return uuid.New().String()[:8]
}
