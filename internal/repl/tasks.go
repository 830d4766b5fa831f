package repl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/store"
	"github.com/notexe/studydash/internal/ui"
)

func (r *REPL) listTasks(ctx context.Context, args string) error {
	f := store.TaskFilter{Status: model.StatusIncomplete}
	switch mode, _ := firstWord(args); mode {
	case "", "open":
	case "all":
		f.Status = ""
	case "done":
		f.Status = model.StatusCompleted
	default:
		return usage("/tasks [all|done]")
	}
	tasks, err := r.store.ListTasks(ctx, r.user(), f)
	if err != nil {
		return err
	}
	r.print(r.formatter.FormatTasks(tasks) + "\n")
	return nil
}

func (r *REPL) addTask(ctx context.Context, args string) error {
	ta, err := r.parseTaskArgs(args)
	if err != nil {
		return err
	}
	if ta.title == "" {
		return usage("/add <title> [due:YYYY-MM-DD[THH:MM]] [p:high|medium|low] [c:category]")
	}
	in := store.NewTask{Title: ta.title, DueDate: ta.due}
	if ta.priority != nil {
		in.Priority = *ta.priority
	}
	if ta.category != nil {
		in.Category = *ta.category
	}
	task, err := r.store.CreateTask(ctx, r.user(), in)
	if err != nil {
		return err
	}
	r.displaySuccess("Added " + r.formatter.FormatTask(*task))
	return nil
}

func (r *REPL) completeTask(ctx context.Context, args string) error {
	var id string
	var err error
	if strings.TrimSpace(args) == "" {
		id, err = r.pickTask(ctx)
	} else {
		id, err = r.resolveTask(ctx, args)
	}
	if err != nil {
		return err
	}
	task, err := r.dash.CompleteTask(ctx, id)
	if err != nil {
		return err
	}
	r.displaySuccess(fmt.Sprintf("Great job! You completed %q", task.Title))
	return nil
}

func (r *REPL) reopenTask(ctx context.Context, args string) error {
	id, err := r.resolveTask(ctx, args)
	if err != nil {
		return err
	}
	task, err := r.store.SetTaskStatus(ctx, r.user(), id, model.StatusIncomplete)
	if err != nil {
		return err
	}
	r.displayInfo("Reopened " + r.formatter.FormatTask(*task))
	return nil
}

func (r *REPL) editTask(ctx context.Context, args string) error {
	ref, rest := firstWord(args)
	id, err := r.resolveTask(ctx, ref)
	if err != nil {
		return err
	}
	ta, err := r.parseTaskArgs(rest)
	if err != nil {
		return err
	}
	u := store.TaskUpdate{DueDate: ta.due, ClearDue: ta.clearDue, Priority: ta.priority, Category: ta.category}
	if ta.title != "" {
		u.Title = &ta.title
	}
	task, err := r.store.UpdateTask(ctx, r.user(), id, u)
	if err != nil {
		return err
	}
	r.displaySuccess("Updated " + r.formatter.FormatTask(*task))
	return nil
}

func (r *REPL) deleteTask(ctx context.Context, args string) error {
	id, err := r.resolveTask(ctx, args)
	if err != nil {
		return err
	}
	if err := r.store.DeleteTask(ctx, r.user(), id); err != nil {
		return err
	}
	r.displayInfo("Task deleted.")
	return nil
}

func (r *REPL) resolveTask(ctx context.Context, ref string) (string, error) {
	tasks, err := r.store.ListTasks(ctx, r.user(), store.TaskFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return matchID("task", ref, ids)
}

// pickTask lets the user choose an incomplete task from a menu.
func (r *REPL) pickTask(ctx context.Context) (string, error) {
	tasks, err := r.store.ListTasks(ctx, r.user(), store.TaskFilter{Status: model.StatusIncomplete})
	if err != nil {
		return "", err
	}
	if len(tasks) == 0 {
		return "", errors.New("no open tasks")
	}

	opts := make([]ui.SelectorOption, len(tasks))
	for i, t := range tasks {
		opts[i] = ui.SelectorOption{Label: t.Title, Description: string(t.Priority)}
		if t.Category != "" {
			opts[i].Description += " #" + t.Category
		}
	}

	// The menu needs the terminal to itself.
	r.mu.Lock()
	rl, out := r.rl, r.out
	r.mu.Unlock()
	if rl != nil {
		rl.Close()
		out = os.Stdout
		r.setOutput(out)
	}
	idx, err := ui.NewSelector("Complete which task?", opts, r.cfg.UI.ColoredOutput, r.in, out).Run()
	if rl != nil {
		next, rerr := setupReadline(r.cfg.UI.HistoryFile)
		if rerr != nil {
			return "", fmt.Errorf("failed to restore readline: %w", rerr)
		}
		r.setReadline(next)
	}
	if err != nil {
		return "", err
	}
	return tasks[idx].ID, nil
}
