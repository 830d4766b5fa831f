// Package notify builds user notifications and delivers them.
package notify

import (
	"fmt"
	"math"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/store"
)

const (
	calendarURL = "/calendar"
	pomodoroURL = "/pomodoro"
	notesURL    = "/notes"
)

// Notification titles. Deduplication compares on these, so they double as kinds.
const (
	TitleTaskDueSoon      = "Task Due Soon"
	TitleTaskOverdue      = "Task Overdue"
	TitleTaskCompleted    = "Task Completed"
	TitleEventReminder    = "Event Reminder"
	TitleEventStarting    = "Event Starting"
	TitlePomodoroComplete = "Pomodoro Session Complete"
	TitleNoteReminder     = "Note Reminder"
)

func TaskDueSoon(t model.Task, minutes int) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationTask,
		Title:     TitleTaskDueSoon,
		Message:   fmt.Sprintf("%q is due in %d minutes", t.Title, minutes),
		RelatedID: t.ID,
	}
}

func TaskOverdue(t model.Task) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationTask,
		Title:     TitleTaskOverdue,
		Message:   fmt.Sprintf("%q is overdue", t.Title),
		RelatedID: t.ID,
	}
}

func TaskCompleted(t model.Task) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationTask,
		Title:     TitleTaskCompleted,
		Message:   fmt.Sprintf("Great job! You completed %q", t.Title),
		RelatedID: t.ID,
	}
}

// EventReminder announces an event using its own reminder lead time.
func EventReminder(e model.Event) store.NewNotification {
	lead := e.ReminderTime
	if lead <= 0 {
		lead = model.DefaultReminderMinutes
	}
	return store.NewNotification{
		Type:      model.NotificationEvent,
		Title:     TitleEventReminder,
		Message:   fmt.Sprintf("%q starts in %d minutes", e.Title, lead),
		RelatedID: e.ID,
		ActionURL: calendarURL,
	}
}

func EventStarting(e model.Event) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationEvent,
		Title:     TitleEventStarting,
		Message:   fmt.Sprintf("%q is starting now", e.Title),
		RelatedID: e.ID,
		ActionURL: calendarURL,
	}
}

// PomodoroComplete reports a finished focus phase of the given length.
func PomodoroComplete(minutes float64) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationPomodoro,
		Title:     TitlePomodoroComplete,
		Message:   fmt.Sprintf("Great work! You completed a %d minute focus session", int(math.Round(minutes))),
		ActionURL: pomodoroURL,
	}
}

func NoteReminder(n model.Note) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationNote,
		Title:     TitleNoteReminder,
		Message:   fmt.Sprintf("Reminder for note: %q", n.Title),
		RelatedID: n.ID,
		ActionURL: notesURL,
	}
}

// System wraps a free-form message. An empty actionURL falls back to the
// dashboard.
func System(title, message, actionURL string) store.NewNotification {
	return store.NewNotification{
		Type:      model.NotificationSystem,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}
}
