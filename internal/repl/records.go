package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/notify"
	"github.com/notexe/studydash/internal/store"
)

func (r *REPL) listNotes(ctx context.Context, args string) error {
	var f store.NoteFilter
	if i := strings.Index(args, "?"); i >= 0 {
		f.Search = strings.TrimSpace(args[i+1:])
		args = args[:i]
	}
	f.Category = strings.TrimSpace(args)

	notes, err := r.store.ListNotes(ctx, r.user(), f)
	if err != nil {
		return err
	}
	r.print(r.formatter.FormatNotes(notes))
	if f.Category == "" && f.Search == "" {
		if cats, err := r.store.NoteCategories(ctx, r.user()); err == nil && len(cats) > 0 {
			r.print(r.formatter.FormatInfo("Categories: " + strings.Join(cats, ", ")))
		}
	}
	r.print("")
	return nil
}

func (r *REPL) handleNote(ctx context.Context, args string) error {
	sub, rest := firstWord(args)
	switch sub {
	case "":
		return usage("/note <id> | add <title> | <content> [c:category] | del <id> | remind <id>")
	case "add":
		return r.addNote(ctx, rest)
	case "del", "rm":
		id, err := r.resolveNote(ctx, rest)
		if err != nil {
			return err
		}
		if err := r.store.DeleteNote(ctx, r.user(), id); err != nil {
			return err
		}
		r.displayInfo("Note deleted.")
		return nil
	case "remind":
		id, err := r.resolveNote(ctx, rest)
		if err != nil {
			return err
		}
		note, err := r.store.GetNote(ctx, r.user(), id)
		if err != nil {
			return err
		}
		if _, err := r.store.CreateNotification(ctx, r.user(), notify.NoteReminder(*note)); err != nil {
			return err
		}
		r.displaySuccess(fmt.Sprintf("Reminder added for %q.", note.Title))
		return nil
	default:
		id, err := r.resolveNote(ctx, strings.TrimSpace(args))
		if err != nil {
			return err
		}
		note, err := r.store.GetNote(ctx, r.user(), id)
		if err != nil {
			return err
		}
		r.print(r.formatter.FormatNote(*note) + "\n")
		return nil
	}
}

func (r *REPL) addNote(ctx context.Context, args string) error {
	title, content, _ := strings.Cut(args, "|")
	in := store.NewNote{}
	var words []string
	for _, w := range strings.Fields(title) {
		if cat, ok := strings.CutPrefix(w, "c:"); ok {
			in.Category = cat
			continue
		}
		words = append(words, w)
	}
	in.Title = strings.Join(words, " ")
	// Literal "\n" in the content starts a new line.
	in.Content = strings.ReplaceAll(strings.TrimSpace(content), `\n`, "\n")
	if in.Title == "" {
		return usage("/note add <title> [c:category] | <content>")
	}
	note, err := r.store.CreateNote(ctx, r.user(), in)
	if err != nil {
		return err
	}
	r.displaySuccess(fmt.Sprintf("Note %q saved (%s).", note.Title, note.ID[:min(8, len(note.ID))]))
	return nil
}

func (r *REPL) resolveNote(ctx context.Context, ref string) (string, error) {
	notes, err := r.store.ListNotes(ctx, r.user(), store.NoteFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return matchID("note", ref, ids)
}

func (r *REPL) listEvents(ctx context.Context, args string) error {
	days := 7
	if s := strings.TrimSpace(args); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return usage("/events [days]")
		}
		days = n
	}
	from := r.dash.Now()
	to := from.AddDate(0, 0, days)
	events, err := r.store.ListEvents(ctx, r.user(), &from, &to)
	if err != nil {
		return err
	}
	r.print(r.formatter.FormatEvents(events) + "\n")
	return nil
}

func (r *REPL) handleEvent(ctx context.Context, args string) error {
	sub, rest := firstWord(args)
	switch sub {
	case "add":
		return r.addEvent(ctx, rest)
	case "del", "rm":
		events, err := r.store.ListEvents(ctx, r.user(), nil, nil)
		if err != nil {
			return err
		}
		ids := make([]string, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		id, err := matchID("event", rest, ids)
		if err != nil {
			return err
		}
		if err := r.store.DeleteEvent(ctx, r.user(), id); err != nil {
			return err
		}
		r.displayInfo("Event deleted.")
		return nil
	default:
		return usage("/event add <title> at:<when> [len:<minutes>] [r:<minutes>] [c:category] | del <id>")
	}
}

func (r *REPL) addEvent(ctx context.Context, args string) error {
	var in store.NewEvent
	var length time.Duration
	var words []string
	for _, w := range strings.Fields(args) {
		key, val, ok := strings.Cut(w, ":")
		if !ok {
			words = append(words, w)
			continue
		}
		switch key {
		case "at":
			if len(val) == len("2006-01-02") {
				t, err := time.ParseInLocation("2006-01-02", val, r.dash.Location())
				if err != nil {
					return fmt.Errorf("invalid date %q", val)
				}
				in.StartDate, in.IsAllDay = t, true
				continue
			}
			t, err := parseDue(val, r.dash.Now())
			if err != nil {
				return err
			}
			in.StartDate = t
		case "len":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid length %q", val)
			}
			length = time.Duration(n) * time.Minute
		case "r":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid reminder %q", val)
			}
			in.ReminderTime = n
		case "c":
			in.Category = val
		default:
			words = append(words, w)
		}
	}
	in.Title = strings.Join(words, " ")
	if in.Title == "" || in.StartDate.IsZero() {
		return usage("/event add <title> at:<YYYY-MM-DD[THH:MM]> [len:<minutes>] [r:<minutes>] [c:category]")
	}
	in.EndDate = in.StartDate.Add(length)

	e, err := r.store.CreateEvent(ctx, r.user(), in)
	if err != nil {
		return err
	}
	r.displaySuccess("Added " + r.formatter.FormatEvents([]model.Event{*e}))
	return nil
}

func (r *REPL) listNotifications(ctx context.Context, args string) error {
	f := store.NotificationFilter{Read: store.ReadUnread}
	mode, rest := firstWord(args)
	switch mode {
	case "all", "unread", "read":
		f.Read = store.ParseReadFilter(mode)
		f.Search = rest
	case "":
	default:
		f.Read = store.ReadAll
		f.Search = strings.TrimSpace(args)
	}
	ns, err := r.store.ListNotifications(ctx, r.user(), f)
	if err != nil {
		return err
	}
	r.print(r.formatter.FormatNotifications(ns) + "\n")
	return nil
}

func (r *REPL) markRead(ctx context.Context, args string) error {
	if strings.EqualFold(strings.TrimSpace(args), "all") {
		n, err := r.store.MarkAllNotificationsRead(ctx, r.user())
		if err != nil {
			return err
		}
		r.displayInfo(fmt.Sprintf("Marked %d notifications as read.", n))
		return nil
	}
	id, err := r.resolveNotification(ctx, args)
	if err != nil {
		return err
	}
	if err := r.store.MarkNotificationRead(ctx, r.user(), id); err != nil {
		return err
	}
	r.displayInfo("Marked as read.")
	return nil
}

func (r *REPL) dismissNotification(ctx context.Context, args string) error {
	id, err := r.resolveNotification(ctx, args)
	if err != nil {
		return err
	}
	if err := r.store.DeleteNotification(ctx, r.user(), id); err != nil {
		return err
	}
	r.displayInfo("Notification deleted.")
	return nil
}

func (r *REPL) resolveNotification(ctx context.Context, ref string) (string, error) {
	ns, err := r.store.ListNotifications(ctx, r.user(), store.NotificationFilter{Read: store.ReadAll})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.ID
	}
	return matchID("notification", ref, ids)
}

func (r *REPL) checkDeadlines(ctx context.Context) error {
	window := time.Duration(r.cfg.Notifier.Window) * time.Minute
	created, err := notify.CheckUpcomingDeadlines(ctx, r.store, r.user(), r.dash.Now(), window)
	if err != nil {
		return err
	}
	if len(created) == 0 {
		r.displayInfo("Nothing due soon.")
		return nil
	}
	r.print(r.formatter.FormatNotifications(created) + "\n")
	return nil
}
