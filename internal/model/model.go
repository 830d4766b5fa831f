package model

import (
	"strings"
	"time"
)

// Priority levels for tasks.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority accepts any casing of High, Medium or Low.
func ParsePriority(s string) (Priority, bool) {
	switch normalize(s) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

// TaskStatus values for tasks.
type TaskStatus string

const (
	StatusIncomplete TaskStatus = "incomplete"
	StatusCompleted  TaskStatus = "completed"
)

// NotificationType identifies what a notification refers to.
type NotificationType string

const (
	NotificationTask     NotificationType = "task"
	NotificationEvent    NotificationType = "event"
	NotificationPomodoro NotificationType = "pomodoro"
	NotificationNote     NotificationType = "note"
	NotificationSystem   NotificationType = "system"
)

// ParseNotificationType returns the type for s, falling back to system.
func ParseNotificationType(s string) NotificationType {
	switch t := NotificationType(normalize(s)); t {
	case NotificationTask, NotificationEvent, NotificationPomodoro, NotificationNote:
		return t
	default:
		return NotificationSystem
	}
}

// User is the identity every record is scoped by.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// DisplayName mirrors the welcome banner: name, then email, then "User".
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "User"
}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the task has been marked done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// StudySession is one contiguous focus interval. Duration is in minutes.
type StudySession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  *float64   `json:"duration,omitempty"`
}

// Event is a calendar entry. ReminderTime is in minutes before StartDate.
type Event struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Category     string    `json:"category"`
	Color        string    `json:"color"`
	ReminderTime int       `json:"reminder_time"`
	IsAllDay     bool      `json:"is_all_day"`
	CreatedAt    time.Time `json:"created_at"`
}

// Event defaults used when the caller leaves fields empty.
const (
	DefaultEventCategory     = "personal"
	DefaultEventColor        = "blue"
	DefaultReminderMinutes   = 15
	DefaultNoteColor         = "blue"
	UncategorizedLabel       = "Uncategorized"
	NotificationDashboardURL = "/dashboard"
)

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	RelatedID string           `json:"related_id,omitempty"`
	ActionURL string           `json:"action_url,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Activity is one line of the recent activity feed.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	TaskTitle string    `json:"task_title"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity actions recorded by the store.
const (
	ActionCreated   = "created"
	ActionCompleted = "completed"
	ActionDeleted   = "deleted"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
