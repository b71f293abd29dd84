// Package workday decides workday/holiday status for the Russian production
// calendar. Weekends are Saturday and Sunday; holidays come from a fixed
// per-year table of federal holidays and officially transferred rest days.
package workday

import (
	"time"
)

const dateFormat = "2006-01-02"

// holidays maps calendar dates to holiday labels. Transferred rest days
// around the federal holidays are included as published for each year; the
// table has a finite span and must be extended as new years are announced.
var holidays = map[string]string{
	// 2025
	"2025-01-01": "New Year holidays",
	"2025-01-02": "New Year holidays",
	"2025-01-03": "New Year holidays",
	"2025-01-06": "New Year holidays",
	"2025-01-07": "Orthodox Christmas Day",
	"2025-01-08": "New Year holidays",
	"2025-05-01": "Spring and Labour Day",
	"2025-05-02": "Spring and Labour Day (transferred)",
	"2025-05-08": "Victory Day (transferred)",
	"2025-05-09": "Victory Day",
	"2025-06-12": "Russia Day",
	"2025-06-13": "Russia Day (transferred)",
	"2025-11-03": "Unity Day (transferred)",
	"2025-11-04": "Unity Day",
	"2025-12-31": "New Year's Eve (transferred)",

	// 2026
	"2026-01-01": "New Year holidays",
	"2026-01-02": "New Year holidays",
	"2026-01-05": "New Year holidays",
	"2026-01-06": "New Year holidays",
	"2026-01-07": "Orthodox Christmas Day",
	"2026-01-08": "New Year holidays",
	"2026-02-23": "Defender of the Fatherland Day",
	"2026-03-09": "International Women's Day (observed)",
	"2026-05-01": "Spring and Labour Day",
	"2026-05-11": "Victory Day (observed)",
	"2026-06-12": "Russia Day",
	"2026-11-04": "Unity Day",
	"2026-12-31": "New Year's Eve (transferred)",
}

// Checker answers workday questions for single calendar dates.
type Checker struct{}

// New creates a workday checker for the configured calendar.
func New() *Checker {
	return &Checker{}
}

// IsWorkday reports whether the given date is a workday: a Monday-Friday
// that is not a listed public holiday.
func (c *Checker) IsWorkday(date time.Time) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	_, holiday := holidays[date.Format(dateFormat)]
	return !holiday
}

// HolidayName returns the holiday label for the date, if any.
// Used for diagnostics and suppression logging only.
func (c *Checker) HolidayName(date time.Time) (string, bool) {
	name, ok := holidays[date.Format(dateFormat)]
	return name, ok
}

// NextWorkday returns the earliest date strictly after the input for which
// IsWorkday holds. The walk is unbounded but terminates within days because
// the holiday table covers finite, non-contiguous spans.
func (c *Checker) NextWorkday(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for !c.IsWorkday(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
