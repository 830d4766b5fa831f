package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notexe/studydash/internal/app"
	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/notify"
	"github.com/notexe/studydash/internal/repl"
	"github.com/notexe/studydash/internal/scheduler"
	"github.com/notexe/studydash/internal/ui"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	provider := flag.String("provider", "", "Motivation provider (none, deepseek, ollama)")
	user := flag.String("user", "", "User id (overrides config)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *provider != "" {
		cfg.Motivation.Provider = *provider
	}
	if *user != "" {
		cfg.User.ID = *user
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	a, err := app.Open(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if cfg.Motivation.Provider == config.ProviderDeepSeek {
			fmt.Fprintf(os.Stderr, "Tip: Set DEEPSEEK_API_KEY environment variable or add it to config file\n")
		}
		os.Exit(1)
	}
	defer a.Close()

	formatter := ui.NewFormatter(ui.ColorEnabled(cfg.UI.ColoredOutput, os.Stdout),
		ui.WithLocation(a.Location),
		ui.WithWordWrap(cfg.UI.WordWrap),
		ui.WithTimestamps(cfg.UI.ShowTimestamps),
	)

	shell := repl.New(repl.Deps{
		Config:     cfg,
		ConfigPath: *configPath,
		Store:      a.Store,
		Dashboard:  a.Dashboard,
		Motivation: a.Motivation,
		Formatter:  formatter,
		Logger:     a.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted.")
		cancel()
		a.Close()
		os.Exit(0)
	}()

	if cfg.Notifier.Enabled {
		opts := []scheduler.Option{scheduler.WithLogger(a.Logger)}
		if cfg.Notifier.Telegram.Enabled() {
			opts = append(opts, scheduler.WithSender(
				notify.NewTelegramSender(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)))
		}
		sched := scheduler.New(a.Store, a.User.ID,
			time.Duration(cfg.Notifier.Interval)*time.Second, a.NotifyWindow(), opts...)
		go func() {
			if err := sched.Run(ctx); err != nil {
				a.Logger.Error("deadline checks stopped", "error", err)
			}
		}()
	}

	if err := shell.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
