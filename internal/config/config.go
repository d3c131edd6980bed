package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobpad editor.
type Config struct {
	Store  StoreConfig
	Editor EditorConfig
	AI     AIConfig
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string // database file, created on first use
}

// EditorConfig holds the editor's tuning knobs.
type EditorConfig struct {
	OwnerID        string        // record owner scope for searches
	SearchDebounce time.Duration // idle time before a mention search fires
	SaveDebounce   time.Duration // idle time before an autosave fires
	SearchLimit    int           // max suggestions per palette
}

// AIConfig controls the optional OpenAI-backed edit assistant.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Store  rawStoreConfig  `yaml:"store"`
	Editor rawEditorConfig `yaml:"editor"`
	AI     rawAIConfig     `yaml:"ai"`
}

type rawStoreConfig struct {
	Path string `yaml:"path"`
}

type rawEditorConfig struct {
	OwnerID        string `yaml:"owner_id"`
	SearchDebounce string `yaml:"search_debounce"`
	SaveDebounce   string `yaml:"save_debounce"`
	SearchLimit    int    `yaml:"search_limit"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// Default returns the configuration used when no config file exists, so the
// editor works out of the box.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: defaultStorePath()},
		Editor: EditorConfig{
			OwnerID:        "default",
			SearchDebounce: 200 * time.Millisecond,
			SaveDebounce:   2 * time.Second,
			SearchLimit:    10,
		},
		AI: AIConfig{
			BaseURL: defaultOpenAIBaseURL,
			Timeout: 30 * time.Second,
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "jobpad.db"
	}
	return filepath.Join(home, ".jobpad", "jobpad.db")
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Omitted fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()

	if raw.Store.Path != "" {
		cfg.Store.Path = raw.Store.Path
	}
	if raw.Editor.OwnerID != "" {
		cfg.Editor.OwnerID = raw.Editor.OwnerID
	}
	if raw.Editor.SearchDebounce != "" {
		d, err := time.ParseDuration(raw.Editor.SearchDebounce)
		if err != nil {
			return nil, fmt.Errorf("parse editor.search_debounce %q: %w", raw.Editor.SearchDebounce, err)
		}
		cfg.Editor.SearchDebounce = d
	}
	if raw.Editor.SaveDebounce != "" {
		d, err := time.ParseDuration(raw.Editor.SaveDebounce)
		if err != nil {
			return nil, fmt.Errorf("parse editor.save_debounce %q: %w", raw.Editor.SaveDebounce, err)
		}
		cfg.Editor.SaveDebounce = d
	}
	if raw.Editor.SearchLimit != 0 {
		cfg.Editor.SearchLimit = raw.Editor.SearchLimit
	}

	cfg.AI.Enabled = raw.AI.Enabled
	if raw.AI.BaseURL != "" {
		cfg.AI.BaseURL = raw.AI.BaseURL
	}
	cfg.AI.Model = raw.AI.Model
	cfg.AI.APIKey = raw.AI.APIKey
	if raw.AI.Timeout != "" {
		d, err := time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
		cfg.AI.Timeout = d
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if cfg.Editor.SearchDebounce <= 0 {
		return fmt.Errorf("editor.search_debounce must be positive, got %v", cfg.Editor.SearchDebounce)
	}
	if cfg.Editor.SaveDebounce <= 0 {
		return fmt.Errorf("editor.save_debounce must be positive, got %v", cfg.Editor.SaveDebounce)
	}
	if cfg.Editor.SearchLimit < 1 || cfg.Editor.SearchLimit > 50 {
		return fmt.Errorf("editor.search_limit must be between 1 and 50, got %d", cfg.Editor.SearchLimit)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
