package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"user": map[string]interface{}{
			"id":    "local",
			"email": "",
			"name":  "",
		},
		"store": map[string]interface{}{
			"path": "~/.studydash/studydash.db",
		},
		"timezone":  "Local",
		"log_level": "INFO",
		"pomodoro": map[string]interface{}{
			"work_minutes":         25,
			"break_minutes":        5,
			"long_break_minutes":   15,
			"auto_start_breaks":    false,
			"auto_start_pomodoros": false,
		},
		"notifier": map[string]interface{}{
			"enabled":  false,
			"interval": 300,
			"window":   15,
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"motivation": map[string]interface{}{
			"provider": "none",
			"deepseek": map[string]interface{}{
				"api_key": "",
				"timeout": 30,
			},
			"ollama": map[string]interface{}{
				"base_url": "http://localhost:11434",
				"timeout":  30,
			},
			"model": map[string]interface{}{
				"name":        "deepseek-chat",
				"max_tokens":  120,
				"temperature": 1.0,
			},
		},
		"ui": map[string]interface{}{
			"colored_output":  true,
			"show_timestamps": false,
			"word_wrap":       100,
			"history_file":    "~/.studydash/history",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.studydash/config.yaml"
}
