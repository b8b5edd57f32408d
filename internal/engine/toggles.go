package engine

import (
	"fmt"
	"strings"

	"github.com/bornholm/fieldwork/internal/model"
)

// FactorToggles selects which adjustment factors take part in an estimate.
// A disabled factor contributes a neutral 1.0.
type FactorToggles struct {
	Vendor     bool `json:"vendor"`
	QuotaSkew  bool `json:"quotaSkew"`
	IRImpact   bool `json:"irImpact"`
	Timing     bool `json:"timing"`
	SampleSize bool `json:"sampleSize"`
	Location   bool `json:"location"`
	Audience   bool `json:"audience"`
	QCBuffer   bool `json:"qcBuffer"`
}

// Factor names accepted by Disable
const (
	FactorVendor     = "vendor"
	FactorQuotaSkew  = "quota_skew"
	FactorIRImpact   = "ir_impact"
	FactorTiming     = "timing"
	FactorSampleSize = "sample_size"
	FactorLocation   = "location"
	FactorAudience   = "audience"
	FactorQCBuffer   = "qc_buffer"
)

// FactorNames lists every toggleable factor
var FactorNames = []string{
	FactorVendor, FactorQuotaSkew, FactorIRImpact, FactorTiming,
	FactorSampleSize, FactorLocation, FactorAudience, FactorQCBuffer,
}

// AllFactors enables every factor
func AllFactors() FactorToggles {
	return FactorToggles{
		Vendor:     true,
		QuotaSkew:  true,
		IRImpact:   true,
		Timing:     true,
		SampleSize: true,
		Location:   true,
		Audience:   true,
		QCBuffer:   true,
	}
}

// NoFactors disables every factor, leaving the case baseline rate only
func NoFactors() FactorToggles {
	return FactorToggles{}
}

// TogglesFromConfig maps the configured factor defaults
func TogglesFromConfig(cfg model.FactorConfig) FactorToggles {
	return FactorToggles(cfg)
}

// Disable returns a copy with the named factors switched off
func (t FactorToggles) Disable(names ...string) (FactorToggles, error) {
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case FactorVendor:
			t.Vendor = false
		case FactorQuotaSkew:
			t.QuotaSkew = false
		case FactorIRImpact:
			t.IRImpact = false
		case FactorTiming:
			t.Timing = false
		case FactorSampleSize:
			t.SampleSize = false
		case FactorLocation:
			t.Location = false
		case FactorAudience:
			t.Audience = false
		case FactorQCBuffer:
			t.QCBuffer = false
		case "":
		default:
			return t, fmt.Errorf("unknown factor '%s', expected one of %s", name, strings.Join(FactorNames, ", "))
		}
	}
	return t, nil
}
