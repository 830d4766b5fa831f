package stats

import "time"

// DaysPerWeek is the width of the weekly and upcoming windows.
const DaysPerWeek = 7

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{year: y, month: m, day: d}
}

// Midnight truncates t to 00:00 of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the most recent Sunday at midnight that is not after now.
func WeekStart(now time.Time) time.Time {
	today := Midnight(now)
	return today.AddDate(0, 0, -int(today.Weekday()))
}
