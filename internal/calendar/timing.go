package calendar

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
)

// Severity grades a timing warning
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// LookaheadDays is the horizon of QuickCheck
const LookaheadDays = 14

// Warning flags a holiday touched by the fieldwork window
type Warning struct {
	HolidayID string   `json:"holidayId"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

// Result is the averaged timing factor of a fieldwork window
type Result struct {
	Factor           float64   `json:"factor"`
	Warnings         []Warning `json:"warnings"`
	AffectedHolidays []Holiday `json:"affectedHolidays"`
	Start            time.Time `json:"start,omitzero"`
	End              time.Time `json:"end,omitzero"`
}

// QuickCheckResult summarizes holidays in the days following a start date
type QuickCheckResult struct {
	IsHoliday bool      `json:"isHoliday"`
	Factor    float64   `json:"factor"`
	Holidays  []Holiday `json:"holidays"`
	Message   string    `json:"message"`
}

// Evaluator computes timing factors from a timing configuration
type Evaluator struct {
	config model.TimingConfig
}

// NewEvaluator creates an evaluator for the given configuration
func NewEvaluator(config model.TimingConfig) *Evaluator {
	return &Evaluator{config: config}
}

// MaxWindowDays bounds the fieldwork window evaluated by TimingFactor.
// Longer windows are averaged over their first MaxWindowDays days.
const MaxWindowDays = 3660

// HolidayAt returns the holiday covering the given date, if any.
// November and December dates are also checked against next year's holidays.
func (e *Evaluator) HolidayAt(d time.Time) (Holiday, bool) {
	d = Day(d)
	days := e.holidaysBetween(d, d)
	if len(days) == 0 {
		return Holiday{}, false
	}
	return days[0].holiday, true
}

type holidayDay struct {
	date    time.Time
	holiday Holiday
}

// holidaysBetween lists, in date order, every day of [start, end] covered
// by a holiday. A date matches its own year's holidays first, then next
// year's when it falls in November or December.
func (e *Evaluator) holidaysBetween(start, end time.Time) []holidayDay {
	years := map[int][]Holiday{}
	for y := start.Year(); y <= end.Year()+1; y++ {
		years[y] = HolidaysForYear(y, e.config)
	}

	covered := map[time.Time]Holiday{}
	assign := func(year int, holidays []Holiday, match func(time.Time) bool) {
		for _, h := range holidays {
			for d := h.Start; !d.After(h.End()); d = d.AddDate(0, 0, 1) {
				if d.Year() != year || d.Before(start) || d.After(end) || !match(d) {
					continue
				}
				if _, ok := covered[d]; !ok {
					covered[d] = h
				}
			}
		}
	}

	for y := start.Year(); y <= end.Year(); y++ {
		assign(y, years[y], func(time.Time) bool { return true })
	}
	for y := start.Year(); y <= end.Year(); y++ {
		assign(y, years[y+1], func(d time.Time) bool { return d.Month() >= time.November })
	}

	days := make([]holidayDay, 0, len(covered))
	for d, h := range covered {
		days = append(days, holidayDay{date: d, holiday: h})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

	return days
}

// affectedHolidays returns the distinct holidays of the given days, in order
func affectedHolidays(days []holidayDay) []Holiday {
	affected := []Holiday{}
	seen := map[string]bool{}
	for _, hd := range days {
		key := hd.holiday.ID + hd.holiday.Start.Format(time.DateOnly)
		if !seen[key] {
			seen[key] = true
			affected = append(affected, hd.holiday)
		}
	}
	return affected
}

// TimingFactor averages the daily throughput multiplier over every day of
// [start, start+days]. Holiday days divide the weekday multiplier by the
// holiday factor. A non positive duration yields a neutral factor and the
// window is capped to MaxWindowDays.
func (e *Evaluator) TimingFactor(start time.Time, days int) Result {
	if start.IsZero() || days <= 0 {
		return Result{Factor: 1.0, Warnings: []Warning{}, AffectedHolidays: []Holiday{}}
	}
	days = min(days, MaxWindowDays)

	start = Day(start)
	end := start.AddDate(0, 0, days)
	count := days + 1

	// Each weekday occurs count/7 times, the first count%7 of them once more
	total := 0.0
	for i := range 7 {
		n := count / 7
		if i < count%7 {
			n++
		}
		weekday := time.Weekday((int(start.Weekday()) + i) % 7)
		total += float64(n) * e.config.DayFactor(weekday)
	}

	holidayDays := e.holidaysBetween(start, end)
	for _, hd := range holidayDays {
		factor := e.config.DayFactor(hd.date.Weekday())
		total += factor/hd.holiday.Factor - factor
	}

	affected := affectedHolidays(holidayDays)
	warnings := make([]Warning, 0, len(affected))
	for _, h := range affected {
		warnings = append(warnings, holidayWarning(h))
	}

	return Result{
		Factor:           total / float64(count),
		Warnings:         warnings,
		AffectedHolidays: affected,
		Start:            start,
		End:              end,
	}
}

// QuickCheck scans the LookaheadDays following start for holidays and
// reports the most severe factor found
func (e *Evaluator) QuickCheck(start time.Time) QuickCheckResult {
	if start.IsZero() {
		return QuickCheckResult{Factor: 1.0, Holidays: []Holiday{}}
	}

	start = Day(start)
	found := affectedHolidays(e.holidaysBetween(start, start.AddDate(0, 0, LookaheadDays)))

	if len(found) == 0 {
		return QuickCheckResult{
			Factor:   1.0,
			Holidays: found,
			Message:  fmt.Sprintf("No holidays in the next %d days", LookaheadDays),
		}
	}

	names := make([]string, 0, len(found))
	maxFactor := 0.0
	for _, h := range found {
		names = append(names, h.Name)
		maxFactor = math.Max(maxFactor, h.Factor)
	}

	return QuickCheckResult{
		IsHoliday: true,
		Factor:    maxFactor,
		Holidays:  found,
		Message:   "Upcoming: " + strings.Join(names, ", "),
	}
}

func holidayWarning(h Holiday) Warning {
	slowdown := int(math.Round((h.Factor - 1) * 100))
	if h.IsCritical() {
		return Warning{
			HolidayID: h.ID,
			Severity:  SeverityCritical,
			Message:   fmt.Sprintf("Fieldwork overlaps %s, expect it to run about %d%% slower than usual", h.Name, slowdown),
		}
	}
	return Warning{
		HolidayID: h.ID,
		Severity:  SeverityWarning,
		Message:   fmt.Sprintf("Fieldwork overlaps %s, it may run %d%% slower", h.Name, slowdown),
	}
}
