package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"provider": "deepseek",
		"deepseek": map[string]interface{}{
			"api_key":  "",
			"base_url": "https://api.deepseek.com",
			"timeout":  120,
		},
		"ollama": map[string]interface{}{
			"base_url": "http://localhost:11434",
			"timeout":  120,
		},
		"model": map[string]interface{}{
			"name":        "deepseek-chat",
			"max_tokens":  2048,
			"temperature": 0.0, // extraction wants determinism, not creativity
		},
		"source": map[string]interface{}{
			"location": "~/.opencoach/context.md",
			"watch":    false,
		},
		"store": map[string]interface{}{
			"backend": "file",
			"path":    "~/.opencoach/reminders.json",
		},
		"scheduler": map[string]interface{}{
			"extract_interval": 30,
			"due_interval":     10,
		},
		"extraction": map[string]interface{}{
			"timeout": 60,
		},
		"notify": map[string]interface{}{
			"console": true,
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"log": map[string]interface{}{
			"level": "info",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.opencoach/config.yaml"
}
