package workday_test

import (
	"testing"
	"time"

	"github.com/edgard/lunchbot/internal/workday"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestIsWorkday(t *testing.T) {
	t.Parallel()

	checker := workday.New()

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{name: "regular wednesday", date: date(2026, time.March, 11), want: true},
		{name: "saturday", date: date(2026, time.March, 14), want: false},
		{name: "sunday", date: date(2026, time.March, 15), want: false},
		{name: "orthodox christmas", date: date(2026, time.January, 7), want: false},
		{name: "victory day 2025", date: date(2025, time.May, 9), want: false},
		{name: "transferred rest day", date: date(2026, time.December, 31), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := checker.IsWorkday(tt.date); got != tt.want {
				t.Errorf("IsWorkday(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestHolidayName(t *testing.T) {
	t.Parallel()

	checker := workday.New()

	name, ok := checker.HolidayName(date(2026, time.January, 7))
	if !ok || name != "Orthodox Christmas Day" {
		t.Errorf("HolidayName = (%q, %v), want (Orthodox Christmas Day, true)", name, ok)
	}

	if _, ok := checker.HolidayName(date(2026, time.March, 11)); ok {
		t.Error("HolidayName on regular day reported a holiday")
	}
}

func TestNextWorkday(t *testing.T) {
	t.Parallel()

	checker := workday.New()

	tests := []struct {
		name string
		from time.Time
		want string
	}{
		{name: "midweek", from: date(2026, time.March, 11), want: "2026-03-12"},
		{name: "friday skips weekend", from: date(2026, time.March, 13), want: "2026-03-16"},
		{name: "new year break", from: date(2025, time.December, 30), want: "2026-01-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := checker.NextWorkday(tt.from).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("NextWorkday(%s) = %s, want %s", tt.from.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}
