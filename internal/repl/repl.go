// Package repl is the interactive dashboard shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/dashboard"
	"github.com/notexe/studydash/internal/motivation"
	"github.com/notexe/studydash/internal/pomodoro"
	"github.com/notexe/studydash/internal/store"
	"github.com/notexe/studydash/internal/ui"
)

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// Deps are the collaborators the shell drives.
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Store      *store.Store
	Dashboard  *dashboard.Service
	Motivation *motivation.Generator
	Formatter  *ui.Formatter
	Logger     *slog.Logger
	// TimerOptions are passed to the pomodoro timer after the shell's own.
	TimerOptions []pomodoro.Option
}

type REPL struct {
	cfg        *config.Config
	configPath string
	store      *store.Store
	dash       *dashboard.Service
	motivation *motivation.Generator
	formatter  *ui.Formatter
	timer      *pomodoro.Timer
	logger     *slog.Logger

	rl      *readline.Instance
	in      io.Reader
	mu      sync.Mutex
	out     io.Writer
	spinner *ui.Spinner
}

func New(d Deps) *REPL {
	r := &REPL{
		cfg:        d.Config,
		configPath: d.ConfigPath,
		store:      d.Store,
		dash:       d.Dashboard,
		motivation: d.Motivation,
		formatter:  d.Formatter,
		in:         os.Stdin,
		out:        os.Stdout,
	}
	base := d.Logger
	if base == nil {
		base = slog.Default()
	}
	r.logger = base.With("component", "repl")
	if r.motivation == nil {
		r.motivation = motivation.New()
	}

	opts := []pomodoro.Option{
		pomodoro.WithLogger(base),
		pomodoro.WithOnTransition(d.Dashboard.TransitionHook()),
		pomodoro.WithOnTransition(r.onTransition),
	}
	r.timer = pomodoro.NewTimer(d.Config.Pomodoro, append(opts, d.TimerOptions...)...)
	r.spinner = ui.NewSpinner(os.Stdout, false)
	return r
}

// Start runs the timer and the read loop until /quit, EOF or ctx ends.
func (r *REPL) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	go r.timer.Run(ctx)
	defer func() { <-r.timer.Done() }()
	defer cancel()

	rl, err := setupReadline(r.cfg.UI.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to setup readline: %w", err)
	}
	r.setReadline(rl)
	defer func() { r.rl.Close() }()
	r.spinner = ui.NewSpinner(rl.Stdout(), ui.ColorEnabled(r.cfg.UI.ColoredOutput, os.Stdout))

	if r.configPath != "" {
		go r.watchConfig(ctx)
	}

	r.print(r.formatter.FormatWelcome(r.dash.User().DisplayName()))
	if err := r.handleCommand(ctx, "/dash", ""); err != nil {
		r.displayError(err)
	}

	for {
		r.refreshPrompt(ctx)
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				r.print("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if input == "" {
			continue
		}

		isCommand, command, args := r.parseCommand(input)
		if !isCommand {
			// Bare text adds a task.
			command, args = "/add", input
		}
		if err := r.handleCommand(ctx, command, args); err != nil {
			if errors.Is(err, errQuit) {
				r.print("\nGoodbye!")
				return nil
			}
			r.displayError(err)
		}
	}
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.print(r.formatter.FormatHelp())
		return nil
	case "/quit", "/exit", "/q":
		return errQuit

	case "/dash", "/d":
		return r.showDashboard(ctx)
	case "/quote":
		r.displaySystem(r.motivation.Quote())
		return nil

	case "/tasks", "/t":
		return r.listTasks(ctx, args)
	case "/add", "/a":
		return r.addTask(ctx, args)
	case "/done":
		return r.completeTask(ctx, args)
	case "/undo":
		return r.reopenTask(ctx, args)
	case "/edit":
		return r.editTask(ctx, args)
	case "/del", "/rm":
		return r.deleteTask(ctx, args)

	case "/pomo", "/p":
		return r.handlePomodoro(ctx, args)

	case "/notes":
		return r.listNotes(ctx, args)
	case "/note":
		return r.handleNote(ctx, args)

	case "/events":
		return r.listEvents(ctx, args)
	case "/event":
		return r.handleEvent(ctx, args)

	case "/inbox", "/n":
		return r.listNotifications(ctx, args)
	case "/read":
		return r.markRead(ctx, args)
	case "/dismiss":
		return r.dismissNotification(ctx, args)
	case "/check":
		return r.checkDeadlines(ctx)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}

func (r *REPL) showDashboard(ctx context.Context) error {
	r.spinner.Start("Loading dashboard...")
	sum := r.dash.Summary(ctx)
	r.spinner.Stop()
	r.print(r.formatter.FormatDashboard(sum))
	return nil
}

func (r *REPL) user() string {
	return r.dash.User().ID
}

func usage(s string) error {
	return fmt.Errorf("usage: %s", s)
}

func firstWord(args string) (string, string) {
	head, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	return strings.ToLower(head), strings.TrimSpace(rest)
}
