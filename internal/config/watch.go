package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/knadh/koanf/providers/file"
)

// Watch reloads the config file whenever it changes and passes each valid
// result to onChange. It returns once the watcher is running; the watcher
// stops when ctx is cancelled. A missing file is not an error.
func Watch(ctx context.Context, configPath string, logger *slog.Logger, onChange func(*Config)) error {
	path := expandPath(configPath)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	f := file.Provider(path)
	err := f.Watch(func(_ interface{}, err error) {
		if err != nil {
			logger.Error("config watch failed", "path", path, "error", err)
			return
		}

		cfg, err := Load(configPath)
		if err != nil {
			logger.Error("config reload failed", "path", path, "error", err)
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Error("reloaded config is invalid", "path", path, "error", err)
			return
		}

		logger.Info("config reloaded", "path", path)
		onChange(cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := f.Unwatch(); err != nil {
			logger.Debug("config unwatch failed", "error", err)
		}
	}()
	return nil
}
