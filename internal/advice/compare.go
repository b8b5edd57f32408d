// Package advice classifies expert day counts against an estimate and
// produces qualitative risk suggestions. Nothing here feeds back into the
// estimate itself.
package advice

import (
	"fmt"
	"math"

	"github.com/bornholm/fieldwork/internal/engine"
)

// Status classifies the deviation of an expert day count
type Status string

const (
	StatusNormal      Status = "normal"
	StatusTooLow      Status = "too_low"
	StatusTooHigh     Status = "too_high"
	StatusSlightlyLow Status = "slightly_low"
)

// Deviation thresholds in percent of the estimate midpoint
const (
	TooLowThreshold  = -30
	TooHighThreshold = 50
)

// Comparison is the outcome of comparing expert days with an estimate
type Comparison struct {
	ExpertDays  int     `json:"expertDays" yaml:"expertDays"`
	Midpoint    float64 `json:"midpoint" yaml:"midpoint"`
	Status      Status  `json:"status" yaml:"status"`
	Warning     string  `json:"warning,omitempty" yaml:"warning,omitempty"`
	DiffPercent int     `json:"diffPercent" yaml:"diffPercent"`
}

// HasWarning reports whether the comparison carries a warning
func (c Comparison) HasWarning() bool {
	return c.Warning != ""
}

// Compare classifies expertDays by its percent deviation from the midpoint
// of the estimated range. A non positive midpoint is always normal.
func Compare(expertDays int, r engine.Range) Comparison {
	mid := float64(r.Min+r.Max) / 2

	c := Comparison{
		ExpertDays: expertDays,
		Midpoint:   mid,
		Status:     StatusNormal,
	}

	if mid <= 0 {
		return c
	}

	c.DiffPercent = roundHalfUp((float64(expertDays) - mid) / mid * 100)

	switch {
	case c.DiffPercent < TooLowThreshold:
		c.Status = StatusTooLow
		c.Warning = fmt.Sprintf("Expert days are %d%% below the estimate, there is a risk of running out of time", -c.DiffPercent)
	case c.DiffPercent > TooHighThreshold:
		c.Status = StatusTooHigh
		c.Warning = fmt.Sprintf("Expert days are %d%% above the estimate, make sure the PM understands why", c.DiffPercent)
	case c.DiffPercent < 0:
		c.Status = StatusSlightlyLow
		c.Warning = "Expert days are slightly below the estimate, make sure this was considered"
	}

	return c
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
