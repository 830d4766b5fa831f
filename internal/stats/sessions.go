package stats

import (
	"math"
	"sort"
	"time"

	"github.com/notexe/studydash/internal/model"
)

// ComputeStreak counts consecutive calendar days, ending with asOf's day, on
// which at least one session started. Days are taken in asOf's location.
// A day without sessions today yields 0 regardless of earlier days.
func ComputeStreak(sessions []model.StudySession, asOf time.Time) int {
	if len(sessions) == 0 {
		return 0
	}

	loc := asOf.Location()
	days := make(map[dayKey]struct{}, len(sessions))
	for _, s := range sessions {
		days[keyOf(s.StartTime.In(loc))] = struct{}{}
	}

	streak := 0
	for day := Midnight(asOf); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[keyOf(day)]; !ok {
			return streak
		}
		streak++
	}
}

// WeeklyProgress counts sessions that started at or after weekStart.
func WeeklyProgress(sessions []model.StudySession, weekStart time.Time) int {
	count := 0
	for _, s := range sessions {
		if !s.StartTime.Before(weekStart) {
			count++
		}
	}
	return count
}

// FocusTimeToday sums the minutes of sessions that started at or after
// today's midnight. The result does not depend on the order of sessions.
func FocusTimeToday(sessions []model.StudySession, today time.Time) float64 {
	start := Midnight(today)

	minutes := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		if s.StartTime.Before(start) {
			continue
		}
		minutes = append(minutes, SessionMinutes(s))
	}
	return sum(minutes)
}

// SessionMinutes returns the recorded duration, or end minus start when no
// duration was stored. Sessions with neither, and negative values, count as 0.
func SessionMinutes(s model.StudySession) float64 {
	var m float64
	switch {
	case s.Duration != nil:
		m = *s.Duration
	case s.EndTime != nil:
		m = s.EndTime.Sub(s.StartTime).Minutes()
	}
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0
	}
	return m
}

// sum adds values in ascending order so permutations of the input give
// bit-identical totals.
func sum(values []float64) float64 {
	sort.Float64s(values)
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
