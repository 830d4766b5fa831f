package ui

import (
	"fmt"
	"strings"

	"github.com/notexe/studydash/internal/pomodoro"
)

// Clock renders seconds as MM:SS.
func Clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// TimerPrompt is the short timer label used in the input prompt. It is
// empty while the timer is idle at the start of a work phase.
func TimerPrompt(s pomodoro.State) string {
	if !s.Running && s.Phase == pomodoro.PhaseWork && s.SecondsRemaining == s.PhaseSeconds {
		return ""
	}
	mark := "▶"
	if !s.Running {
		mark = "⏸"
	}
	return fmt.Sprintf("%s %s %s", mark, s.Label(), Clock(s.SecondsRemaining))
}

// FormatTimer renders the pomodoro widget.
func (f *Formatter) FormatTimer(s pomodoro.State, cfg pomodoro.Config) string {
	status := "paused"
	if s.Running {
		status = "running"
	}
	label := f.style(SuccessStyle, s.Label())
	if s.Phase == pomodoro.PhaseBreak {
		label = f.style(InfoStyle, s.Label())
	}
	lines := []string{
		fmt.Sprintf("%s  %s  %s", label, f.style(HeaderStyle, Clock(s.SecondsRemaining)), f.style(DimStyle, status)),
		f.style(AccentStyle, ProgressBar(s.Progress(), 30)) + fmt.Sprintf(" %3.0f%%", s.Progress()*100),
		fmt.Sprintf("Cycles: %d   Focused: %dh   Next long break in %d",
			s.CompletedWorkCycles, s.HoursFocused(cfg.WorkMinutes), pomodoro.LongBreakEvery-s.CycleCount%pomodoro.LongBreakEvery),
		f.style(DimStyle, fmt.Sprintf("work %dm · break %dm · long break %dm", cfg.WorkMinutes, cfg.BreakMinutes, cfg.LongBreakMinutes)),
	}
	return f.FormatBox("Pomodoro", strings.Join(lines, "\n"))
}

// FormatTransition announces a phase change.
func (f *Formatter) FormatTransition(tr pomodoro.Transition) string {
	if tr.To == pomodoro.PhaseBreak {
		kind := "short break"
		if tr.LongBreak {
			kind = "long break"
		}
		return f.style(SuccessStyle, fmt.Sprintf("Focus done! Time for a %s (%s).", kind, Clock(tr.State.SecondsRemaining)))
	}
	return f.style(InfoStyle, fmt.Sprintf("Break over. Focus for %s.", Clock(tr.State.SecondsRemaining)))
}
