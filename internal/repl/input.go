package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/ui"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *REPL) parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return true, command, args
}

// refreshPrompt shows the running timer in the prompt.
func (r *REPL) refreshPrompt(ctx context.Context) {
	label := ""
	if st, err := r.timer.Snapshot(ctx); err == nil {
		label = ui.TimerPrompt(st)
	}
	r.rl.SetPrompt(r.formatter.FormatPrompt(label))
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/help"),
	readline.PcItem("/dash"),
	readline.PcItem("/quote"),
	readline.PcItem("/tasks", readline.PcItem("all"), readline.PcItem("done")),
	readline.PcItem("/add"),
	readline.PcItem("/done"),
	readline.PcItem("/undo"),
	readline.PcItem("/edit"),
	readline.PcItem("/del"),
	readline.PcItem("/pomo",
		readline.PcItem("start"), readline.PcItem("pause"), readline.PcItem("reset"),
		readline.PcItem("skip"), readline.PcItem("status"), readline.PcItem("set"),
	),
	readline.PcItem("/notes"),
	readline.PcItem("/note", readline.PcItem("add"), readline.PcItem("del"), readline.PcItem("remind")),
	readline.PcItem("/events"),
	readline.PcItem("/event", readline.PcItem("add"), readline.PcItem("del")),
	readline.PcItem("/inbox", readline.PcItem("all"), readline.PcItem("unread"), readline.PcItem("read")),
	readline.PcItem("/read", readline.PcItem("all")),
	readline.PcItem("/dismiss"),
	readline.PcItem("/check"),
	readline.PcItem("/quit"),
)

func setupReadline(historyFile string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:              "study > ",
		HistoryFile:         historyFile,
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}

// taskArgs is a parsed "/add" or "/edit" line: free words form the title,
// key:value words set fields.
type taskArgs struct {
	title    string
	due      *time.Time
	clearDue bool
	priority *model.Priority
	category *string
}

func (r *REPL) parseTaskArgs(args string) (taskArgs, error) {
	var out taskArgs
	var words []string
	for _, w := range strings.Fields(args) {
		key, val, ok := strings.Cut(w, ":")
		switch {
		case ok && (key == "due" || key == "d"):
			if val == "none" {
				out.clearDue = true
				continue
			}
			t, err := parseDue(val, r.dash.Now())
			if err != nil {
				return out, err
			}
			out.due = &t
		case ok && (key == "p" || key == "priority"):
			p, ok := model.ParsePriority(val)
			if !ok {
				return out, fmt.Errorf("invalid priority %q (use high, medium or low)", val)
			}
			out.priority = &p
		case ok && (key == "c" || key == "cat"):
			out.category = &val
		default:
			words = append(words, w)
		}
	}
	out.title = strings.Join(words, " ")
	return out, nil
}

var dueLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

// parseDue accepts today, tomorrow, +Nd, YYYY-MM-DD or YYYY-MM-DDTHH:MM in
// now's location. Dates without a time mean the end of that day.
func parseDue(s string, now time.Time) (time.Time, error) {
	endOfDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 23, 59, 0, 0, now.Location())
	}
	switch s = strings.ToLower(s); {
	case s == "today":
		return endOfDay(now), nil
	case s == "tomorrow":
		return endOfDay(now.AddDate(0, 0, 1)), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		n, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("invalid relative date %q", s)
		}
		return endOfDay(now.AddDate(0, 0, n)), nil
	}
	for i, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, strings.ToUpper(s), now.Location())
		if err != nil {
			continue
		}
		if i == len(dueLayouts)-1 {
			return endOfDay(t), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
}

// matchID resolves an id or unique id prefix against ids.
func matchID(kind, prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no %s matches %q", kind, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%q matches %d %ss, type more of the id", prefix, len(found), kind)
	}
}
