package stats

import (
	"strings"
	"time"

	"github.com/notexe/studydash/internal/model"
)

// Palette is the cyclic color list for category breakdowns.
var Palette = []string{"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#06b6d4"}

// CategoryCount is one slice of the task breakdown chart.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// TaskBreakdown groups tasks by category in first-seen order. Tasks without
// a category land in the "Uncategorized" bucket.
func TaskBreakdown(tasks []model.Task) []CategoryCount {
	if len(tasks) == 0 {
		return []CategoryCount{}
	}

	index := make(map[string]int)
	out := make([]CategoryCount, 0)
	for _, t := range tasks {
		name := t.Category
		if strings.TrimSpace(name) == "" {
			name = model.UncategorizedLabel
		}

		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryCount{
				Name:  name,
				Color: Palette[i%len(Palette)],
			})
		}
		out[i].Value++
	}
	return out
}

// DueCounts backs the welcome banner sentence.
type DueCounts struct {
	DueToday int `json:"due_today"`
	Upcoming int `json:"upcoming"`
}

// TasksDueTodayAndUpcoming counts tasks due on today's date and tasks due
// after today up to and including the same date one week later. Tasks
// without a due date are ignored.
func TasksDueTodayAndUpcoming(tasks []model.Task, today time.Time) DueCounts {
	start := Midnight(today)
	limit := start.AddDate(0, 0, DaysPerWeek)
	loc := today.Location()

	var counts DueCounts
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := Midnight(t.DueDate.In(loc))
		switch {
		case due.Equal(start):
			counts.DueToday++
		case due.After(start) && !due.After(limit):
			counts.Upcoming++
		}
	}
	return counts
}

// TaskProgress is the completed/total pair for tasks created today.
type TaskProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TodayTaskProgress counts tasks created since today's midnight and how many
// of them are completed.
func TodayTaskProgress(tasks []model.Task, today time.Time) TaskProgress {
	start := Midnight(today)

	var p TaskProgress
	for _, t := range tasks {
		if t.CreatedAt.Before(start) {
			continue
		}
		p.Total++
		if t.Completed() {
			p.Completed++
		}
	}
	return p
}
