package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Provider type constants (duplicated from api package to avoid import cycle)
const (
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Store backend constants.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type Config struct {
	Provider   string           `koanf:"provider"`
	DeepSeek   DeepSeekConfig   `koanf:"deepseek"`
	Ollama     OllamaConfig     `koanf:"ollama"`
	Model      ModelConfig      `koanf:"model"`
	Source     SourceConfig     `koanf:"source"`
	Store      StoreConfig      `koanf:"store"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Notify     NotifyConfig     `koanf:"notify"`
	Log        LogConfig        `koanf:"log"`
}

type DeepSeekConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"`
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

type SourceConfig struct {
	Location string `koanf:"location"` // context file or folder of .md notes
	Watch    bool   `koanf:"watch"`    // trigger extraction on file changes in addition to polling
}

type StoreConfig struct {
	Backend string `koanf:"backend"` // "file" or "sqlite"
	Path    string `koanf:"path"`
}

type SchedulerConfig struct {
	ExtractInterval int `koanf:"extract_interval"` // seconds between extraction cycles
	DueInterval     int `koanf:"due_interval"`     // seconds between due checks
}

type ExtractionConfig struct {
	Timeout int `koanf:"timeout"` // seconds before an extraction call is abandoned
}

type NotifyConfig struct {
	Console  bool           `koanf:"console"`
	Telegram TelegramConfig `koanf:"telegram"`
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
}

type LogConfig struct {
	Level string `koanf:"level"`
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

	if err := k.Load(env.Provider("OPENCOACH_", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Environment overrides for the values people actually export.
	if apiKey := os.Getenv("DEEPSEEK_API_KEY"); apiKey != "" {
		k.Set("deepseek.api_key", apiKey)
	}
	if location := os.Getenv("OPENCOACH_CONTEXT"); location != "" {
		k.Set("source.location", location)
	}
	if path := os.Getenv("OPENCOACH_STORE"); path != "" {
		k.Set("store.path", path)
	}
	if token := os.Getenv("OPENCOACH_TELEGRAM_BOT_TOKEN"); token != "" {
		k.Set("notify.telegram.bot_token", token)
	}
	if chatID := os.Getenv("OPENCOACH_TELEGRAM_CHAT_ID"); chatID != "" {
		k.Set("notify.telegram.chat_id", chatID)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Source.Location = expandPath(cfg.Source.Location)
	cfg.Store.Path = expandPath(cfg.Store.Path)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDeepSeek:
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("DeepSeek API key is required (set DEEPSEEK_API_KEY or add to config file)")
		}
	case ProviderOllama:
		if c.Ollama.BaseURL == "" {
			c.Ollama.BaseURL = "http://localhost:11434"
		}
	default:
		return fmt.Errorf("unknown provider: %s (supported: %s, %s)",
			c.Provider, ProviderDeepSeek, ProviderOllama)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Source.Location == "" {
		return fmt.Errorf("source.location is required")
	}

	switch c.Store.Backend {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend: %s (supported: %s, %s)",
			c.Store.Backend, StoreFile, StoreSQLite)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}

	if c.Scheduler.ExtractInterval <= 0 {
		return fmt.Errorf("scheduler.extract_interval must be positive")
	}
	if c.Scheduler.DueInterval <= 0 {
		return fmt.Errorf("scheduler.due_interval must be positive")
	}
	if c.Extraction.Timeout <= 0 {
		return fmt.Errorf("extraction.timeout must be positive")
	}

	return nil
}

// ProviderConfig contains provider-specific configuration for the API package.
type ProviderConfig struct {
	Type     string
	DeepSeek DeepSeekConfig
	Ollama   OllamaConfig
}

// GetProviderConfig returns the provider configuration for the API package.
func (c *Config) GetProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		Type:     c.Provider,
		DeepSeek: c.DeepSeek,
		Ollama:   c.Ollama,
	}
}

func expandPath(path string) string {
	if path == "" {
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
