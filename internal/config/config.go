package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/notexe/studydash/internal/model"
	"github.com/notexe/studydash/internal/pomodoro"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderNone     = "none"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// EnvPrefix selects the environment variables merged over the file.
// STUDYDASH_POMODORO__WORK_MINUTES maps to pomodoro.work_minutes.
const EnvPrefix = "STUDYDASH_"

// ErrNoUser is returned by CurrentUser when no user id is configured.
var ErrNoUser = errors.New("no user configured")

type Config struct {
	User       UserConfig       `koanf:"user"`
	Store      StoreConfig      `koanf:"store"`
	Timezone   string           `koanf:"timezone"`
	LogLevel   string           `koanf:"log_level"`
	Pomodoro   pomodoro.Config  `koanf:"pomodoro"`
	Notifier   NotifierConfig   `koanf:"notifier"`
	Motivation MotivationConfig `koanf:"motivation"`
	UI         UIConfig         `koanf:"ui"`
}

type UserConfig struct {
	ID    string `koanf:"id"`
	Email string `koanf:"email"`
	Name  string `koanf:"name"`
}

type StoreConfig struct {
	Path string `koanf:"path"`
}

type NotifierConfig struct {
	Enabled  bool           `koanf:"enabled"`
	Interval int            `koanf:"interval"` // seconds between deadline checks
	Window   int            `koanf:"window"`   // minutes ahead that count as "due soon"
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type MotivationConfig struct {
	Provider string         `koanf:"provider"`
	DeepSeek DeepSeekConfig `koanf:"deepseek"`
	Ollama   OllamaConfig   `koanf:"ollama"`
	Model    ModelConfig    `koanf:"model"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	Timeout int    `koanf:"timeout"` // seconds
}

type OllamaConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
}

type ModelConfig struct {
	Name        string  `koanf:"name"`
	MaxTokens   int     `koanf:"max_tokens"`
	Temperature float64 `koanf:"temperature"`
}

type UIConfig struct {
	ColoredOutput  bool   `koanf:"colored_output"`
	ShowTimestamps bool   `koanf:"show_timestamps"`
	WordWrap       int    `koanf:"word_wrap"`
	HistoryFile    string `koanf:"history_file"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Handle the conventional DEEPSEEK_API_KEY environment variable
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" && k.String("motivation.deepseek.api_key") == "" {
		k.Set("motivation.deepseek.api_key", apiKey)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.UI.HistoryFile = expandPath(cfg.UI.HistoryFile)

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func (c *Config) Validate() error {
	if err := c.Pomodoro.Validate(); err != nil {
		return err
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if c.Notifier.Interval <= 0 {
		return fmt.Errorf("notifier.interval must be positive, got %d", c.Notifier.Interval)
	}
	if c.Notifier.Window <= 0 {
		return fmt.Errorf("notifier.window must be positive, got %d", c.Notifier.Window)
	}

	switch c.Motivation.Provider {
	case ProviderNone, "":
	case ProviderDeepSeek:
		if c.Motivation.DeepSeek.APIKey == "" {
			return fmt.Errorf("DeepSeek API key is required (set DEEPSEEK_API_KEY or add to config file)")
		}
	case ProviderOllama:
		if c.Motivation.Ollama.BaseURL == "" {
			c.Motivation.Ollama.BaseURL = "http://localhost:11434"
		}
	default:
		return fmt.Errorf("unknown motivation provider: %s (supported: %s, %s, %s)",
			c.Motivation.Provider, ProviderNone, ProviderDeepSeek, ProviderOllama)
	}

	if c.Motivation.Model.Temperature < 0 || c.Motivation.Model.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("unknown log_level: %s", c.LogLevel)
	}

	return nil
}

// Location resolves the configured timezone. Empty or "Local" is the
// machine's zone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// CurrentUser returns the identity every store call is scoped by.
func (c *Config) CurrentUser() (*model.User, error) {
	id := strings.TrimSpace(c.User.ID)
	if id == "" {
		return nil, ErrNoUser
	}
	return &model.User{ID: id, Email: c.User.Email, Name: c.User.Name}, nil
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type     string
	DeepSeek DeepSeekConfig
	Ollama   OllamaConfig
	Model    ModelConfig
}

// GetProviderConfig returns the provider configuration for the API package.
func (c *Config) GetProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Type:     c.Motivation.Provider,
		DeepSeek: c.Motivation.DeepSeek,
		Ollama:   c.Motivation.Ollama,
		Model:    c.Motivation.Model,
	}
}

func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
