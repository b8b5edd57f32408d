// Package calendar evaluates how weekdays and Vietnamese public holidays
// affect online panel throughput over a fieldwork window.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bornholm/fieldwork/internal/model"
)

// Holiday is a concrete holiday period in a given year
type Holiday struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	Days   int       `json:"days"`
	Factor float64   `json:"factor"`
}

// End returns the last day of the holiday period
func (h Holiday) End() time.Time {
	return h.Start.AddDate(0, 0, h.Days-1)
}

// Contains reports whether the given date falls within the holiday
func (h Holiday) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(h.Start) && !d.After(h.End())
}

// IsCritical reports whether the holiday disrupts fieldwork severely
func (h Holiday) IsCritical() bool {
	return h.ID == model.HolidayTet
}

type monthDay struct {
	month time.Month
	day   int
}

// Mùng 1 Tết, first day of the lunar year
var tetDates = map[int]monthDay{
	2024: {time.February, 10},
	2025: {time.January, 29},
	2026: {time.February, 17},
	2027: {time.February, 6},
	2028: {time.January, 26},
	2029: {time.February, 13},
	2030: {time.February, 3},
}

// Hùng Kings' Commemoration, 10th day of the 3rd lunar month
var hungKingsDates = map[int]monthDay{
	2024: {time.April, 18},
	2025: {time.April, 7},
	2026: {time.April, 26},
	2027: {time.April, 16},
	2028: {time.April, 4},
	2029: {time.April, 23},
	2030: {time.April, 12},
}

// Tết window around Mùng 1
const (
	tetDaysBefore = 5
	tetDaysAfter  = 7
)

type fixedHoliday struct {
	id     string
	name   string
	month  time.Month
	day    int
	days   int
	factor float64
}

// 30/4 and 1/5 are merged into a single block
var fixedHolidays = []fixedHoliday{
	{model.HolidayNewYear, "Tết Dương lịch", time.January, 1, 1, 1.1},
	{model.HolidayReunificationLabour, "30/4 - 1/5", time.April, 30, 4, 1.25},
	{model.HolidayNationalDay, "Quốc Khánh", time.September, 2, 2, 1.15},
	{model.HolidayChristmas, "Giáng Sinh", time.December, 25, 3, 1.1},
}

// SupportsLunarYear reports whether lunar holidays are known for the year
func SupportsLunarYear(year int) bool {
	_, ok := tetDates[year]
	return ok
}

// HolidaysForYear returns the holidays of a year ordered by start date.
// Lunar holidays are only known for the years of the lookup table.
func HolidaysForYear(year int, cfg model.TimingConfig) []Holiday {
	holidays := make([]Holiday, 0, len(fixedHolidays)+2)

	for _, fh := range fixedHolidays {
		holidays = append(holidays, Holiday{
			ID:     fh.id,
			Name:   fh.name,
			Start:  date(year, fh.month, fh.day),
			Days:   fh.days,
			Factor: cfg.HolidayFactor(fh.id, fh.factor),
		})
	}

	if md, ok := tetDates[year]; ok {
		holidays = append(holidays, Holiday{
			ID:     model.HolidayTet,
			Name:   "Tết Nguyên Đán",
			Start:  date(year, md.month, md.day).AddDate(0, 0, -tetDaysBefore),
			Days:   tetDaysBefore + tetDaysAfter + 1,
			Factor: cfg.HolidayFactor(model.HolidayTet, 1.8),
		})
	}

	if md, ok := hungKingsDates[year]; ok {
		holidays = append(holidays, Holiday{
			ID:     model.HolidayHungKings,
			Name:   "Giỗ Tổ Hùng Vương",
			Start:  date(year, md.month, md.day),
			Days:   1,
			Factor: cfg.HolidayFactor(model.HolidayHungKings, 1.1),
		})
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Start.Before(holidays[j].Start)
	})

	return holidays
}

// TetDate returns Mùng 1 Tết for the year, if known
func TetDate(year int) (time.Time, bool) {
	md, ok := tetDates[year]
	if !ok {
		return time.Time{}, false
	}
	return date(year, md.month, md.day), true
}

// Day truncates a time to its calendar date in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return date(y, m, d)
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date '%s', expected YYYY-MM-DD", s)
	}
	return &t, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
