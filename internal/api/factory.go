package api

import (
	"errors"
	"fmt"

	"github.com/notexe/studydash/internal/config"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("AI provider disabled")

// NewProvider creates a Provider based on the configuration.
func NewProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case config.ProviderDeepSeek:
		return NewDeepSeekProvider(cfg.DeepSeek)

	case config.ProviderOllama:
		return NewOllamaProvider(cfg.Ollama)

	case config.ProviderNone, "":
		return nil, ErrDisabled

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.Type, config.ProviderDeepSeek, config.ProviderOllama)
	}
}
