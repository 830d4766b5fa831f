// Command notifier runs the deadline checks without the interactive
// dashboard and forwards new notifications to Telegram when configured.
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
	"github.com/notexe/studydash/internal/scheduler"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	once := flag.Bool("once", false, "Run a single check and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Open(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := []scheduler.Option{scheduler.WithLogger(a.Logger)}
	if cfg.Notifier.Telegram.Enabled() {
		opts = append(opts, scheduler.WithSender(
			notify.NewTelegramSender(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)))
	} else {
		a.Logger.Info("telegram not configured, notifications stay in the inbox")
	}

	sched := scheduler.New(a.Store, a.User.ID,
		time.Duration(cfg.Notifier.Interval)*time.Second, a.NotifyWindow(), opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *once {
		fmt.Printf("%d new notification(s)\n", sched.Tick(ctx))
		return
	}

	a.Logger.Info("notifier started", "user", a.User.ID, "interval", cfg.Notifier.Interval, "window", cfg.Notifier.Window)
	if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
