// Package pricing estimates the cost per interview of an online project.
package pricing

import (
	"fmt"

	"github.com/bornholm/fieldwork/internal/model"
)

// Currency of every quote
const Currency = "USD"

// Pricing constants, in cents
const (
	BaseCents          = 150
	LOIThreshold       = 10
	PerMinuteCents     = 8
	LowIRThreshold     = 30
	VeryLowIRThreshold = 15
	LowIRCents         = 50
	VeryLowIRCents     = 100
	NestedCents        = 30
)

// HardTargetMultiplier is applied to the running total for hard targets
const HardTargetMultiplier = 1.5

// LineItem is a single component of a quote
type LineItem struct {
	Label string `json:"label" yaml:"label"`
	Cents int    `json:"cents" yaml:"cents"`
}

// Amount returns the line item amount in dollars
func (l LineItem) Amount() float64 {
	return float64(l.Cents) / 100
}

// Quote is an estimated cost per interview
type Quote struct {
	Cents     int        `json:"cents" yaml:"cents"`
	Amount    float64    `json:"amount" yaml:"amount"`
	Currency  string     `json:"currency" yaml:"currency"`
	Breakdown []LineItem `json:"breakdown" yaml:"breakdown"`
}

// String formats the quote amount
func (q Quote) String() string {
	return Dollars(q.Cents)
}

// EstimateCPI prices an interview from LOI, IR, quota and hard target.
// Amounts are kept in cents so the breakdown always sums to the total.
func EstimateCPI(input model.ProjectInput) Quote {
	items := []LineItem{{Label: "Base: " + Dollars(BaseCents), Cents: BaseCents}}
	total := BaseCents

	add := func(label string, cents int) {
		items = append(items, LineItem{Label: label, Cents: cents})
		total += cents
	}

	if input.LOI > LOIThreshold {
		extra := (input.LOI - LOIThreshold) * PerMinuteCents
		add(fmt.Sprintf("LOI %dm: +%s", input.LOI, Dollars(extra)), extra)
	}

	if input.IR < LowIRThreshold {
		extra := LowIRCents
		if input.IR < VeryLowIRThreshold {
			extra = VeryLowIRCents
		}
		add(fmt.Sprintf("IR %g%%: +%s", input.IR, Dollars(extra)), extra)
	}

	if input.Quota == model.QuotaNested {
		add("Nested quota: +"+Dollars(NestedCents), NestedCents)
	}

	if input.HardTarget {
		extra := (total + 1) / 2
		add(fmt.Sprintf("Hard target: x%g (+%s)", HardTargetMultiplier, Dollars(extra)), extra)
	}

	return Quote{
		Cents:     total,
		Amount:    float64(total) / 100,
		Currency:  Currency,
		Breakdown: items,
	}
}

// Dollars formats cents as a dollar amount
func Dollars(cents int) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
