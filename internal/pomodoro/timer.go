package pomodoro

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrStopped is returned by Timer commands after Run has exited.
var ErrStopped = errors.New("pomodoro timer stopped")

// Ticker is the part of time.Ticker the timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

type op int

const (
	opSnapshot op = iota
	opStart
	opPause
	opReset
	opSkip
	opSetConfig
)

type command struct {
	op    op
	cfg   Config
	reply chan reply
}

type reply struct {
	state State
	cfg   Config
}

// Timer owns a Machine in a single goroutine. Commands and ticks are
// processed one at a time in that goroutine.
type Timer struct {
	machine      *Machine
	cmds         chan command
	done         chan struct{}
	newTicker    TickerFunc
	onTransition []func(Transition)
	logger       *slog.Logger
}

// Option configures a Timer.
type Option func(*Timer)

// WithTicker replaces the one-second ticker source.
func WithTicker(fn TickerFunc) Option {
	return func(t *Timer) { t.newTicker = fn }
}

// WithOnTransition registers a hook. Hooks run in the timer goroutine, must
// return quickly and must not call back into the Timer.
func WithOnTransition(fn func(Transition)) Option {
	return func(t *Timer) { t.onTransition = append(t.onTransition, fn) }
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Timer) { t.logger = l }
}

// NewTimer creates a paused timer. Call Run to start processing commands.
func NewTimer(cfg Config, opts ...Option) *Timer {
	t := &Timer{
		machine:   NewMachine(cfg),
		cmds:      make(chan command),
		done:      make(chan struct{}),
		newTicker: NewStdTicker,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "pomodoro")
	return t
}

// Run processes commands until ctx is cancelled. No state changes happen
// after it returns.
func (t *Timer) Run(ctx context.Context) {
	defer close(t.done)

	var ticker Ticker
	var tick <-chan time.Time

	syncTicker := func() {
		running := t.machine.State().Running
		switch {
		case running && ticker == nil:
			ticker = t.newTicker(time.Second)
			tick = ticker.C()
		case !running && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-t.cmds:
			t.handle(cmd)
			syncTicker()
			cmd.reply <- reply{state: t.machine.State(), cfg: t.machine.Config()}
		case <-tick:
			if tr := t.machine.Tick(); tr != nil {
				t.emit(*tr)
			}
			syncTicker()
		}
	}
}

// Done is closed when Run returns.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

func (t *Timer) handle(cmd command) {
	switch cmd.op {
	case opStart:
		t.machine.Start()
	case opPause:
		t.machine.Pause()
	case opReset:
		t.machine.Reset()
	case opSkip:
		t.emit(t.machine.Skip())
	case opSetConfig:
		t.machine.SetConfig(cmd.cfg)
	}
}

func (t *Timer) emit(tr Transition) {
	t.logger.Debug("phase transition",
		"from", tr.From,
		"to", tr.To,
		"long_break", tr.LongBreak,
		"skipped", tr.Skipped,
		"cycle", tr.State.CycleCount,
	)
	for _, fn := range t.onTransition {
		fn(tr)
	}
}

func (t *Timer) send(ctx context.Context, cmd command) (reply, error) {
	cmd.reply = make(chan reply, 1)
	select {
	case t.cmds <- cmd:
	case <-t.done:
		return reply{}, ErrStopped
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	return <-cmd.reply, nil
}

func (t *Timer) state(ctx context.Context, o op) (State, error) {
	r, err := t.send(ctx, command{op: o})
	return r.state, err
}

// Start resumes the countdown.
func (t *Timer) Start(ctx context.Context) (State, error) {
	return t.state(ctx, opStart)
}

// Pause freezes the countdown.
func (t *Timer) Pause(ctx context.Context) (State, error) {
	return t.state(ctx, opPause)
}

// Reset returns to a paused work phase at full length.
func (t *Timer) Reset(ctx context.Context) (State, error) {
	return t.state(ctx, opReset)
}

// Skip ends the current phase early.
func (t *Timer) Skip(ctx context.Context) (State, error) {
	return t.state(ctx, opSkip)
}

// Snapshot returns the current state without changing it.
func (t *Timer) Snapshot(ctx context.Context) (State, error) {
	return t.state(ctx, opSnapshot)
}

// SetConfig forwards a validated config. See Machine.SetConfig for timing.
func (t *Timer) SetConfig(ctx context.Context, cfg Config) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	r, err := t.send(ctx, command{op: opSetConfig, cfg: cfg})
	return r.state, err
}

// Config returns the effective configuration, including a deferred change.
func (t *Timer) Config(ctx context.Context) (Config, error) {
	r, err := t.send(ctx, command{op: opSnapshot})
	return r.cfg, err
}
