// Package app wires configuration, storage and services shared by the
// commands.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/notexe/studydash/internal/api"
	"github.com/notexe/studydash/internal/config"
	"github.com/notexe/studydash/internal/dashboard"
	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/motivation"
	"github.com/notexe/studydash/internal/store"
)

// App holds the long-lived objects of one process.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *store.Store
	User       *model.User
	Location   *time.Location
	Dashboard  *dashboard.Service
	Motivation *motivation.Generator

	provider api.Provider
}

// Open validates cfg, opens the store and builds the services. Logs go
// to logOut.
func Open(cfg *config.Config, logOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := config.NewLogger(cfg.LogLevel, logOut)

	user, err := cfg.CurrentUser()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDir(cfg.Store.Path); err != nil {
		return nil, err
	}
	st, err := store.NewStore(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		User:     user,
		Location: loc,
	}

	genOpts := []motivation.Option{motivation.WithLogger(logger)}
	provider, err := api.NewProvider(cfg.GetProviderConfig())
	switch {
	case errors.Is(err, api.ErrDisabled):
	case err != nil:
		st.Close()
		return nil, fmt.Errorf("failed to create motivation provider: %w", err)
	default:
		a.provider = provider
		genOpts = append(genOpts, motivation.WithProvider(provider, cfg.Motivation.Model))
		logger.Debug("AI motivation enabled", "provider", provider.Name())
	}
	a.Motivation = motivation.New(genOpts...)

	a.Dashboard = dashboard.NewService(st, user,
		dashboard.WithLocation(loc),
		dashboard.WithMotivator(a.Motivation),
		dashboard.WithLogger(logger),
	)
	return a, nil
}

// NotifyWindow is how far ahead deadlines are announced.
func (a *App) NotifyWindow() time.Duration {
	return time.Duration(a.Config.Notifier.Window) * time.Minute
}

func (a *App) Close() error {
	if a.Dashboard != nil {
		a.Dashboard.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
	return a.Store.Close()
}
