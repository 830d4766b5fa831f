package stats

import (
	"time"

	"github.com/notexe/studydash/internal/model"
)

// Input is a snapshot of one user's records, already fetched by the caller.
type Input struct {
	Tasks    []model.Task
	Sessions []model.StudySession
	Now      time.Time
}

// Summary holds every derived dashboard metric.
type Summary struct {
	Streak         int               `json:"streak"`
	WeeklyProgress int               `json:"weekly_progress"`
	WeekStart      time.Time         `json:"week_start"`
	FocusToday     float64           `json:"focus_today"`
	Breakdown      []CategoryCount   `json:"breakdown"`
	Due            DueCounts         `json:"due"`
	Today          TaskProgress      `json:"today"`
	Productivity   []DayProductivity `json:"productivity"`
}

// Summarize computes all widgets from one snapshot.
func Summarize(in Input) Summary {
	weekStart := WeekStart(in.Now)
	return Summary{
		Streak:         ComputeStreak(in.Sessions, in.Now),
		WeeklyProgress: WeeklyProgress(in.Sessions, weekStart),
		WeekStart:      weekStart,
		FocusToday:     FocusTimeToday(in.Sessions, in.Now),
		Breakdown:      TaskBreakdown(in.Tasks),
		Due:            TasksDueTodayAndUpcoming(in.Tasks, in.Now),
		Today:          TodayTaskProgress(in.Tasks, in.Now),
		Productivity:   WeeklyProductivity(in.Tasks, in.Sessions, in.Now),
	}
}
