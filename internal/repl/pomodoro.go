package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/notexe/studydash/internal/pomodoro"
)

func (r *REPL) handlePomodoro(ctx context.Context, args string) error {
	sub, rest := firstWord(args)

	var st pomodoro.State
	var err error
	switch sub {
	case "", "status":
		st, err = r.timer.Snapshot(ctx)
	case "start":
		st, err = r.timer.Start(ctx)
	case "pause":
		st, err = r.timer.Pause(ctx)
	case "reset":
		st, err = r.timer.Reset(ctx)
	case "skip":
		st, err = r.timer.Skip(ctx)
	case "set":
		return r.setPomodoro(ctx, rest)
	default:
		return usage("/pomo [status|start|pause|reset|skip|set <work> <break> [long]]")
	}
	if err != nil {
		return err
	}
	cfg, err := r.timer.Config(ctx)
	if err != nil {
		return err
	}
	r.print(r.formatter.FormatTimer(st, cfg) + "\n")
	return nil
}

func (r *REPL) setPomodoro(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 || len(fields) > 3 {
		return usage("/pomo set <work> <break> [long]")
	}
	cfg, err := r.timer.Config(ctx)
	if err != nil {
		return err
	}
	targets := []*int{&cfg.WorkMinutes, &cfg.BreakMinutes, &cfg.LongBreakMinutes}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return fmt.Errorf("invalid minutes %q", f)
		}
		*targets[i] = n
	}

	st, err := r.timer.SetConfig(ctx, cfg)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Pomodoro set to %d/%d/%d minutes.", cfg.WorkMinutes, cfg.BreakMinutes, cfg.LongBreakMinutes)
	if st.Running {
		msg += " It applies from the next phase."
	}
	r.displaySuccess(msg)
	return nil
}
