package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	exeDirCache string
)

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	AI        AIConfig        `yaml:"ai,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Research  ResearchConfig  `yaml:"research,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AIConfig struct {
	Provider string `yaml:"provider,omitempty"` // "gemini" (default) or "claude"
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// SearchEngineConfig configures a single retrieval engine.
type SearchEngineConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
}

type SearchConfig struct {
	PrimaryEngine   string               `yaml:"primary_engine"`
	SecondaryEngine string               `yaml:"secondary_engine"`
	Engines         []SearchEngineConfig `yaml:"engines"`
}

type ResearchConfig struct {
	MaxResults     int    `yaml:"max_results"`
	RequestTimeout string `yaml:"request_timeout"` // time.ParseDuration format, e.g. "30s"
	HistoryPath    string `yaml:"history_path,omitempty"`
}

// Timeout parses RequestTimeout, falling back to 30s.
func (r ResearchConfig) Timeout() time.Duration {
	if d, err := time.ParseDuration(r.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Project string `yaml:"project"`
	File    string `yaml:"file,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Search: SearchConfig{
			PrimaryEngine:   "context7",
			SecondaryEngine: "duckduckgo",
			Engines: []SearchEngineConfig{
				{
					Name:     "context7",
					Type:     "context7",
					Enabled:  true,
					Priority: 1,
				},
				{
					Name:     "duckduckgo",
					Type:     "duckduckgo",
					Enabled:  true,
					Priority: 2,
				},
			},
		},
		Research: ResearchConfig{
			MaxResults:     5,
			RequestTimeout: "30s",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Project: "scout",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func ConfigPath() string {
	exeDir := getExecutableDir()
	return filepath.Join(exeDir, ".scout.yaml")
}

// DatabasePath returns the findings history database path.
func (c *Config) DatabasePath() string {
	if c.Research.HistoryPath != "" {
		return c.Research.HistoryPath
	}
	return filepath.Join(getExecutableDir(), ".scout.db")
}

// Load reads the yaml config over defaults, then applies .env and
// environment overrides. The result is treated as immutable for the
// process lifetime.
func Load() (*Config, error) {
	// Optional .env in the working directory. Missing file is fine.
	_ = godotenv.Load()

	cfg, err := LoadFromPath(ConfigPath())
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadFromPath reads the yaml config at path over defaults, without
// environment overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.AI.Provider == "gemini" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.AI.Provider == "claude" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("CONTEXT7_API_KEY"); v != "" {
		for i := range cfg.Search.Engines {
			if cfg.Search.Engines[i].Type == "context7" {
				cfg.Search.Engines[i].APIKey = v
			}
		}
	}
	if v := os.Getenv("MAX_SEARCH_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Research.MaxResults = n
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Research.RequestTimeout = (time.Duration(n) * time.Second).String()
		}
	}
	if v := os.Getenv("TELEMETRY_ENABLED"); v != "" {
		cfg.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TELEMETRY_PROJECT"); v != "" {
		cfg.Telemetry.Project = v
	}
}

func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}
