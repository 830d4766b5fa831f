package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("215")). // Orange
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

// ColorEnabled reports whether styled output should be used for f.
func ColorEnabled(configured bool, f *os.File) bool {
	return configured && term.IsTerminal(int(f.Fd()))
}

// Formatter renders dashboard data for the terminal. Times are shown in
// the formatter's location and relative to its clock.
type Formatter struct {
	colored    bool
	timestamps bool
	wordWrap   int
	loc        *time.Location
	now        func() time.Time
}

type FormatterOption func(*Formatter)

func WithLocation(loc *time.Location) FormatterOption {
	return func(f *Formatter) { f.loc = loc }
}

func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) { f.now = now }
}

// WithWordWrap sets the width used for markdown notes.
func WithWordWrap(width int) FormatterOption {
	return func(f *Formatter) { f.wordWrap = width }
}

// WithTimestamps prefixes status lines with the current time.
func WithTimestamps(on bool) FormatterOption {
	return func(f *Formatter) { f.timestamps = on }
}

func NewFormatter(colored bool, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		colored:  colored,
		wordWrap: 100,
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if f.colored {
		return s.Render(text)
	}
	return text
}

// Timestamp prefixes line with "[15:04] " when timestamps are enabled.
func (f *Formatter) Timestamp(line string) string {
	if !f.timestamps {
		return line
	}
	return f.style(DimStyle, f.now().In(f.loc).Format("[15:04]")) + " " + line
}

func (f *Formatter) FormatError(err error) string {
	return f.style(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.style(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.style(SystemStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.style(SuccessStyle, "✓ ") + msg
}

func (f *Formatter) FormatWarning(msg string) string {
	return f.style(WarningStyle, "! ") + msg
}

// FormatBox wraps content in a titled box.
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}

// FormatWelcome is the banner shown when the REPL starts.
func (f *Formatter) FormatWelcome(name string) string {
	greeting := fmt.Sprintf("%s, %s!", Greeting(f.now().In(f.loc)), name)
	help := "Type /help for commands"
	if f.colored {
		return "\n" + BoxStyle.Render(HeaderStyle.Render("Study Dashboard")+"\n"+greeting+"\n\n"+DimStyle.Render(help)) + "\n"
	}
	return strings.Join([]string{"", "Study Dashboard", greeting, help, ""}, "\n")
}

// Greeting picks the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

type helpEntry struct{ cmd, desc string }

var helpSections = []struct {
	title   string
	entries []helpEntry
}{
	{"Dashboard", []helpEntry{
		{"/dash", "Show the dashboard"},
		{"/quote", "Show a motivation line"},
	}},
	{"Tasks", []helpEntry{
		{"/tasks [all|done]", "List tasks (default: incomplete)"},
		{"/add <title> [due:<when>] [p:high|medium|low] [c:category]", "Add a task (bare text works too)"},
		{"/done [id]", "Complete a task (pick one when no id)"},
		{"/undo <id>", "Mark a task incomplete"},
		{"/edit <id> [title] [due:<when>|none] [p:..] [c:..]", "Update a task"},
		{"/del <id>", "Delete a task"},
	}},
	{"Pomodoro", []helpEntry{
		{"/pomo [status]", "Show the timer"},
		{"/pomo start|pause|reset|skip", "Control the timer"},
		{"/pomo set <work> <break> [long]", "Set durations in minutes"},
	}},
	{"Notes", []helpEntry{
		{"/notes [category] [?search]", "List notes"},
		{"/note <id>", "Show a note"},
		{"/note add <title> [c:category] | <markdown>", "Add a note"},
		{"/note del <id>", "Delete a note"},
		{"/note remind <id>", "Leave a reminder for a note"},
	}},
	{"Calendar", []helpEntry{
		{"/events [days]", "List events (default: 7 days)"},
		{"/event add <title> at:<when> [len:<min>] [r:<min>] [c:..]", "Add an event"},
		{"/event del <id>", "Delete an event"},
	}},
	{"Notifications", []helpEntry{
		{"/inbox [all|unread|read] [search]", "List notifications"},
		{"/read <id>|all", "Mark read"},
		{"/dismiss <id>", "Delete a notification"},
		{"/check", "Check deadlines now"},
	}},
	{"General", []helpEntry{
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}},
}

func (f *Formatter) FormatHelp() string {
	var b strings.Builder
	b.WriteString("\n" + f.style(HeaderStyle, "Commands") + "\n")
	for _, sec := range helpSections {
		b.WriteString("\n" + f.style(AccentStyle.Bold(true), sec.title) + "\n")
		for _, e := range sec.entries {
			b.WriteString("  " + f.style(SuccessStyle.Bold(false), e.cmd) + "  " + e.desc + "\n")
		}
	}
	b.WriteString("\n" + f.style(DimStyle, "  <when>: today, tomorrow, +3d, 2024-05-08 or 2024-05-08T14:30") + "\n")
	b.WriteString(f.style(DimStyle, "  Ids can be shortened to any unique prefix") + "\n")
	b.WriteString(f.style(DimStyle, "  Ctrl+C or Ctrl+D to exit") + "\n")
	return b.String()
}

// FormatPrompt returns the input prompt, showing the timer when one is given.
func (f *Formatter) FormatPrompt(timer string) string {
	if timer == "" {
		if f.colored {
			return lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("study") + SuccessStyle.Render(" > ")
		}
		return "study > "
	}
	if f.colored {
		return AccentStyle.Render(timer) + SuccessStyle.Render(" > ")
	}
	return timer + " > "
}

// ProgressBar draws a bar of width cells filled to frac (clamped to [0,1]).
func ProgressBar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	if frac < 0 || frac != frac {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatMinutes renders minutes as "1h 25m", "25m" or "0m".
func FormatMinutes(minutes float64) string {
	total := int(minutes + 0.5)
	if total < 0 {
		total = 0
	}
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// ago renders t relative to the formatter's clock.
func (f *Formatter) ago(t time.Time) string {
	return humanize.RelTime(t, f.now(), "ago", "from now")
}

func (f *Formatter) date(t time.Time) string {
	return t.In(f.loc).Format("Mon Jan 2 15:04")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
