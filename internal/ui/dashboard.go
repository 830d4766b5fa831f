package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/studydash/internal/dashboard"
	"github.com/notexe/studydash/internal/model"
)

const barWidth = 20

// FormatDashboard renders every widget of a summary.
func (f *Formatter) FormatDashboard(s dashboard.Summary) string {
	var sections []string

	name := "User"
	if s.User != nil {
		name = s.User.DisplayName()
	}
	head := fmt.Sprintf("%s, %s!  %s", Greeting(s.Now), name, f.style(DimStyle, s.Now.Format("Monday, January 2")))
	sections = append(sections, head)

	stats := []string{
		fmt.Sprintf("Streak: %s", f.style(SuccessStyle, plural(s.Streak, "day", "days"))),
		fmt.Sprintf("This week: %s", plural(s.WeeklyProgress, "session", "sessions")),
		fmt.Sprintf("Focus today: %s", FormatMinutes(s.FocusToday)),
	}
	sections = append(sections, strings.Join(stats, "   "))

	frac := 0.0
	if s.Today.Total > 0 {
		frac = float64(s.Today.Completed) / float64(s.Today.Total)
	}
	sections = append(sections, fmt.Sprintf("Today's tasks: %s %d/%d   Due today: %d   Upcoming: %d",
		f.style(AccentStyle, ProgressBar(frac, barWidth)), s.Today.Completed, s.Today.Total, s.Due.DueToday, s.Due.Upcoming))

	sections = append(sections, f.formatBreakdown(s))
	sections = append(sections, f.formatProductivity(s))
	sections = append(sections, f.formatUpcoming(s.Upcoming))
	sections = append(sections, f.formatActivity(s.Activities))

	if s.Unread > 0 {
		sections = append(sections, f.style(InfoStyle, fmt.Sprintf("Notifications: %d unread (/inbox)", s.Unread)))
	} else {
		sections = append(sections, f.style(DimStyle, "Notifications: all caught up"))
	}
	if s.Motivation.Text != "" {
		sections = append(sections, f.style(SystemStyle, "“"+s.Motivation.Text+"”"))
	}
	for _, e := range s.Errors {
		sections = append(sections, f.FormatWarning(fmt.Sprintf("could not load %s", e.Source)))
	}

	return f.FormatBox("Dashboard", strings.Join(sections, "\n\n"))
}

func (f *Formatter) formatBreakdown(s dashboard.Summary) string {
	lines := []string{f.style(HeaderStyle, "Tasks by category")}
	if len(s.Breakdown) == 0 {
		return strings.Join(append(lines, f.style(DimStyle, "  no tasks yet")), "\n")
	}
	max, width := 0, 0
	for _, c := range s.Breakdown {
		if c.Value > max {
			max = c.Value
		}
		if w := lipgloss.Width(c.Name); w > width {
			width = w
		}
	}
	for _, c := range s.Breakdown {
		bar := ProgressBar(float64(c.Value)/float64(max), barWidth)
		bar = strings.TrimRight(bar, "░")
		if f.colored {
			bar = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(bar)
		}
		lines = append(lines, fmt.Sprintf("  %-*s %s %d", width, c.Name, bar, c.Value))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) formatProductivity(s dashboard.Summary) string {
	lines := []string{f.style(HeaderStyle, "Last 7 days")}
	for _, d := range s.Productivity {
		lines = append(lines, fmt.Sprintf("  %s  %2d done  %7s focus  %s",
			d.Label, d.Tasks, FormatMinutes(d.Focus), plural(d.Sessions, "session", "sessions")))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) formatUpcoming(tasks []model.Task) string {
	lines := []string{f.style(HeaderStyle, "Upcoming")}
	if len(tasks) == 0 {
		return strings.Join(append(lines, f.style(DimStyle, "  nothing scheduled")), "\n")
	}
	for _, t := range tasks {
		lines = append(lines, "  • "+t.Title+"  "+f.style(DimStyle, "due "+f.ago(*t.DueDate)))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) formatActivity(acts []model.Activity) string {
	lines := []string{f.style(HeaderStyle, "Recent activity")}
	if len(acts) == 0 {
		return strings.Join(append(lines, f.style(DimStyle, "  no activity yet")), "\n")
	}
	for _, a := range acts {
		verb := a.Action
		if verb != "" {
			verb = strings.ToUpper(verb[:1]) + verb[1:]
		}
		lines = append(lines, fmt.Sprintf("  • %s %q  %s", verb, a.TaskTitle, f.style(DimStyle, f.ago(a.CreatedAt))))
	}
	return strings.Join(lines, "\n")
}
