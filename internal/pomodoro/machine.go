package pomodoro

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the half of the cycle the timer is in.
type Phase string

const (
	PhaseWork  Phase = "work"
	PhaseBreak Phase = "break"
)

// LongBreakEvery is the number of work cycles between long breaks.
const LongBreakEvery = 4

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid pomodoro config")

// Config holds phase lengths in minutes and the auto-start switches.
type Config struct {
	WorkMinutes        int  `koanf:"work_minutes" json:"work_minutes"`
	BreakMinutes       int  `koanf:"break_minutes" json:"break_minutes"`
	LongBreakMinutes   int  `koanf:"long_break_minutes" json:"long_break_minutes"`
	AutoStartBreaks    bool `koanf:"auto_start_breaks" json:"auto_start_breaks"`
	AutoStartPomodoros bool `koanf:"auto_start_pomodoros" json:"auto_start_pomodoros"`
}

// DefaultConfig is 25/5/15 with both auto-starts off.
func DefaultConfig() Config {
	return Config{
		WorkMinutes:      25,
		BreakMinutes:     5,
		LongBreakMinutes: 15,
	}
}

// Validate must pass before a Config reaches a Machine or Timer.
func (c Config) Validate() error {
	if c.WorkMinutes < 1 {
		return fmt.Errorf("%w: work_minutes must be at least 1, got %d", ErrInvalidConfig, c.WorkMinutes)
	}
	if c.BreakMinutes < 1 {
		return fmt.Errorf("%w: break_minutes must be at least 1, got %d", ErrInvalidConfig, c.BreakMinutes)
	}
	if c.LongBreakMinutes < 1 {
		return fmt.Errorf("%w: long_break_minutes must be at least 1, got %d", ErrInvalidConfig, c.LongBreakMinutes)
	}
	return nil
}

// State is a copy of the machine's observable fields.
type State struct {
	Phase               Phase `json:"phase"`
	SecondsRemaining    int   `json:"seconds_remaining"`
	PhaseSeconds        int   `json:"phase_seconds"`
	CycleCount          int   `json:"cycle_count"`
	CompletedWorkCycles int   `json:"completed_work_cycles"`
	Running             bool  `json:"running"`
	LongBreak           bool  `json:"long_break"`
}

// Progress is the elapsed fraction of the current phase in [0, 1].
func (s State) Progress() float64 {
	if s.PhaseSeconds <= 0 {
		return 0
	}
	return float64(s.PhaseSeconds-s.SecondsRemaining) / float64(s.PhaseSeconds)
}

// Label names the phase the way the timer display does.
func (s State) Label() string {
	switch {
	case s.Phase == PhaseWork:
		return "Focus"
	case s.LongBreak:
		return "Long Break"
	default:
		return "Short Break"
	}
}

// HoursFocused is completed work time rounded down to whole hours.
func (s State) HoursFocused(workMinutes int) int {
	return s.CompletedWorkCycles * workMinutes / 60
}

// Transition describes one phase change.
type Transition struct {
	From      Phase
	To        Phase
	LongBreak bool
	Skipped   bool
	// Elapsed is how much of the finished phase actually ran.
	Elapsed time.Duration
	State   State
}

// Machine is the work/break state machine. It is not safe for concurrent
// use; Timer serializes access to one.
type Machine struct {
	cfg     Config
	pending *Config
	state   State
}

// NewMachine starts in a paused work phase. cfg must already be valid.
func NewMachine(cfg Config) *Machine {
	m := &Machine{cfg: cfg}
	m.state = State{Phase: PhaseWork}
	m.resetPhase()
	return m
}

// State returns a snapshot.
func (m *Machine) State() State {
	return m.state
}

// Config returns the effective configuration, including a deferred change.
func (m *Machine) Config() Config {
	if m.pending != nil {
		return *m.pending
	}
	return m.cfg
}

// Start lets Tick count down.
func (m *Machine) Start() {
	m.state.Running = true
}

// Pause stops the countdown without changing the phase.
func (m *Machine) Pause() {
	m.state.Running = false
}

// Reset returns to a paused, full work phase. Cycle counters are kept.
func (m *Machine) Reset() {
	m.applyPending()
	m.state.Phase = PhaseWork
	m.state.LongBreak = false
	m.state.Running = false
	m.resetPhase()
}

// Skip ends the current phase immediately.
func (m *Machine) Skip() Transition {
	return m.transition(true)
}

// Tick advances one second while running. It returns the transition when
// the phase ran out, nil otherwise.
func (m *Machine) Tick() *Transition {
	if !m.state.Running {
		return nil
	}
	if m.state.SecondsRemaining > 0 {
		m.state.SecondsRemaining--
	}
	if m.state.SecondsRemaining > 0 {
		return nil
	}
	tr := m.transition(false)
	return &tr
}

// SetConfig applies cfg now when paused, restarting the current phase with
// its new length. While running it is held until the next transition.
func (m *Machine) SetConfig(cfg Config) {
	if m.state.Running {
		m.pending = &cfg
		return
	}
	m.cfg = cfg
	m.pending = nil
	m.resetPhase()
}

func (m *Machine) transition(skipped bool) Transition {
	tr := Transition{
		From:    m.state.Phase,
		Skipped: skipped,
		Elapsed: time.Duration(m.state.PhaseSeconds-m.state.SecondsRemaining) * time.Second,
	}

	m.applyPending()

	if m.state.Phase == PhaseWork {
		m.state.LongBreak = m.state.CycleCount%LongBreakEvery == LongBreakEvery-1
		m.state.CycleCount++
		m.state.CompletedWorkCycles++
		m.state.Phase = PhaseBreak
		m.state.Running = m.cfg.AutoStartBreaks
	} else {
		m.state.LongBreak = false
		m.state.Phase = PhaseWork
		m.state.Running = m.cfg.AutoStartPomodoros
	}
	m.resetPhase()

	tr.To = m.state.Phase
	tr.LongBreak = m.state.LongBreak
	tr.State = m.state
	return tr
}

func (m *Machine) applyPending() {
	if m.pending == nil {
		return
	}
	m.cfg = *m.pending
	m.pending = nil
}

func (m *Machine) resetPhase() {
	m.state.PhaseSeconds = m.phaseSeconds()
	m.state.SecondsRemaining = m.state.PhaseSeconds
}

func (m *Machine) phaseSeconds() int {
	switch {
	case m.state.Phase == PhaseWork:
		return m.cfg.WorkMinutes * 60
	case m.state.LongBreak:
		return m.cfg.LongBreakMinutes * 60
	default:
		return m.cfg.BreakMinutes * 60
	}
}
