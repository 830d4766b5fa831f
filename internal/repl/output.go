package repl

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/pomodoro"
)

// print writes a line. It is safe to call from timer hooks.
func (r *REPL) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

func (r *REPL) setReadline(rl *readline.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rl = rl
	r.out = rl.Stdout()
}

func (r *REPL) setOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

func (r *REPL) displayError(err error) {
	r.print(r.formatter.Timestamp(r.formatter.FormatError(err)) + "\n")
}

func (r *REPL) displayInfo(msg string) {
	r.print(r.formatter.Timestamp(r.formatter.FormatInfo(msg)) + "\n")
}

func (r *REPL) displaySystem(msg string) {
	r.print(r.formatter.Timestamp(r.formatter.FormatSystem(msg)) + "\n")
}

func (r *REPL) displaySuccess(msg string) {
	r.print(r.formatter.Timestamp(r.formatter.FormatSuccess(msg)) + "\n")
}

// onTransition runs inside the timer goroutine.
func (r *REPL) onTransition(tr pomodoro.Transition) {
	r.print("\n" + r.formatter.Timestamp(r.formatter.FormatTransition(tr)))

	r.mu.Lock()
	rl := r.rl
	r.mu.Unlock()
	if rl != nil {
		rl.Refresh()
	}
}

// watchConfig forwards pomodoro changes from the config file to the timer.
func (r *REPL) watchConfig(ctx context.Context) {
	err := config.Watch(ctx, r.configPath, r.logger, func(c *config.Config) {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		current, err := r.timer.Config(ctx)
		if err != nil || current == c.Pomodoro {
			return
		}
		if _, err := r.timer.SetConfig(ctx, c.Pomodoro); err != nil {
			r.logger.Warn("pomodoro config rejected", "error", err)
			return
		}
		r.displaySystem(fmt.Sprintf("Pomodoro settings reloaded: %d/%d/%d minutes",
			c.Pomodoro.WorkMinutes, c.Pomodoro.BreakMinutes, c.Pomodoro.LongBreakMinutes))
	})
	if err != nil {
		r.logger.Warn("config watch stopped", "error", err)
	}
}
