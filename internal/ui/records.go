package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/studydash/internal/model"
)

var priorityColors = map[model.Priority]lipgloss.Color{
	model.PriorityHigh:   lipgloss.Color("203"),
	model.PriorityMedium: lipgloss.Color("222"),
	model.PriorityLow:    lipgloss.Color("114"),
}

func (f *Formatter) FormatTasks(tasks []model.Task) string {
	if len(tasks) == 0 {
		return f.style(DimStyle, "No tasks.")
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, f.FormatTask(t))
	}
	return strings.Join(lines, "\n")
}

// FormatTask renders one task line: id, checkbox, title, priority, category, due.
func (f *Formatter) FormatTask(t model.Task) string {
	box := "[ ]"
	if t.Completed() {
		box = f.style(SuccessStyle, "[x]")
	}
	prio := string(t.Priority)
	if f.colored {
		prio = lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(prio)
	}
	line := fmt.Sprintf("%s %s %s (%s)", f.style(DimStyle, shortID(t.ID)), box, t.Title, prio)
	if t.Category != "" {
		line += " " + f.style(AccentStyle, "#"+t.Category)
	}
	if t.DueDate != nil {
		due := "due " + f.date(*t.DueDate)
		if !t.Completed() && t.DueDate.Before(f.now()) {
			line += " " + f.style(ErrorStyle, due+" (overdue)")
		} else {
			line += " " + f.style(DimStyle, due)
		}
	}
	return line
}

func (f *Formatter) FormatEvents(events []model.Event) string {
	if len(events) == 0 {
		return f.style(DimStyle, "No events.")
	}
	var lines []string
	for _, e := range events {
		when := f.date(e.StartDate)
		if e.IsAllDay {
			when = e.StartDate.In(f.loc).Format("Mon Jan 2") + " all day"
		} else if !e.EndDate.Equal(e.StartDate) {
			when += "–" + e.EndDate.In(f.loc).Format("15:04")
		}
		line := fmt.Sprintf("%s %s  %s %s", f.style(DimStyle, shortID(e.ID)), f.style(InfoStyle, when), e.Title, f.style(AccentStyle, "#"+e.Category))
		if e.Description != "" {
			line += "\n    " + f.style(DimStyle, e.Description)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatNotes(notes []model.Note) string {
	if len(notes) == 0 {
		return f.style(DimStyle, "No notes.")
	}
	var lines []string
	for _, n := range notes {
		line := fmt.Sprintf("%s %s", f.style(DimStyle, shortID(n.ID)), n.Title)
		if n.Category != "" {
			line += " " + f.style(AccentStyle, "#"+n.Category)
		}
		line += "  " + f.style(DimStyle, "updated "+f.ago(n.UpdatedAt))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatNote renders a note with its content as markdown.
func (f *Formatter) FormatNote(n model.Note) string {
	body := strings.TrimSpace(n.Content)
	if body == "" {
		body = f.style(DimStyle, "(empty)")
	} else {
		body = RenderMarkdown(body, f.wordWrap, f.colored)
	}
	title := n.Title
	if n.Category != "" {
		title += "  #" + n.Category
	}
	return f.FormatBox(title, strings.TrimRight(body, "\n"))
}

func (f *Formatter) FormatNotifications(ns []model.Notification) string {
	if len(ns) == 0 {
		return f.style(DimStyle, "No notifications.")
	}
	var lines []string
	for _, n := range ns {
		dot := "  "
		title := n.Title
		if !n.IsRead {
			dot = f.style(InfoStyle, "● ")
			title = f.style(HeaderStyle, title)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s [%s]  %s\n     %s",
			dot, f.style(DimStyle, shortID(n.ID)), title, n.Type, f.style(DimStyle, f.ago(n.CreatedAt)), n.Message))
	}
	return strings.Join(lines, "\n")
}
