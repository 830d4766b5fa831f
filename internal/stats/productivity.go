package stats

import (
	"time"

	"github.com/notexe/studydash/internal/model"
)

// DayProductivity is one point of the weekly productivity chart.
type DayProductivity struct {
	Day      time.Time `json:"day"`
	Label    string    `json:"label"`
	Tasks    int       `json:"tasks"`
	Focus    float64   `json:"focus"`
	Sessions int       `json:"sessions"`
}

// WeeklyProductivity returns the seven days ending with asOf's day, oldest
// first: tasks completed that day, focus minutes and sessions started.
func WeeklyProductivity(tasks []model.Task, sessions []model.StudySession, asOf time.Time) []DayProductivity {
	loc := asOf.Location()
	first := Midnight(asOf).AddDate(0, 0, -(DaysPerWeek - 1))

	days := make([]DayProductivity, DaysPerWeek)
	index := make(map[dayKey]int, DaysPerWeek)
	focus := make([][]float64, DaysPerWeek)
	for i := range days {
		day := first.AddDate(0, 0, i)
		days[i] = DayProductivity{Day: day, Label: day.Format("Mon")}
		index[keyOf(day)] = i
	}

	for _, t := range tasks {
		if !t.Completed() || t.CompletedAt == nil {
			continue
		}
		if i, ok := index[keyOf(t.CompletedAt.In(loc))]; ok {
			days[i].Tasks++
		}
	}

	for _, s := range sessions {
		i, ok := index[keyOf(s.StartTime.In(loc))]
		if !ok {
			continue
		}
		days[i].Sessions++
		focus[i] = append(focus[i], SessionMinutes(s))
	}

	for i := range days {
		days[i].Focus = sum(focus[i])
	}
	return days
}
