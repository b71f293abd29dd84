// Package timeofday handles minute-resolution "HH:MM" clock strings: user
// input parsing, minute arithmetic with midnight wrap, and the sleep
// alignment used by the scheduler loop.
package timeofday

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// Parse validates a user-supplied clock string and returns it zero-padded
// ("9:30" becomes "09:30"). Zero-padding keeps lexicographic ordering of
// stored times monotonic with time-of-day.
func Parse(s string) (string, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// FromTime formats the wall-clock time of t as "HH:MM".
func FromTime(t time.Time) string {
	return t.Format("15:04")
}

// AddMinutes adds mins to a zero-padded clock string, wrapping across hour
// and day boundaries ("23:58"+5 = "00:03"). s must be a valid "HH:MM".
func AddMinutes(s string, mins int) string {
	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[3:])

	total := (hour*60 + minute + mins) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// UntilNextMinute returns how long to sleep from now until the start of the
// next minute, clamped to at least one second so a tick that consumed nearly
// the whole minute cannot busy-loop.
func UntilNextMinute(now time.Time) time.Duration {
	next := now.Truncate(time.Minute).Add(time.Minute)
	d := next.Sub(now)
	if d < time.Second {
		d = time.Second
	}
	return d
}

// UntilToday returns the duration from now until the clock time s today.
// ok is false when that moment has already passed (or is exactly now).
func UntilToday(now time.Time, s string) (time.Duration, bool) {
	hour, _ := strconv.Atoi(s[:2])
	minute, _ := strconv.Atoi(s[3:])

	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		return 0, false
	}
	return at.Sub(now), true
}
