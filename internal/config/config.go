// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top level configuration document.
type Config struct {
	Database  Database  `yaml:"database"`
	Sources   []Source  `yaml:"sources"`
	AI        AI        `yaml:"ai"`
	Reporting Reporting `yaml:"reporting"`
	Server    Server    `yaml:"server"`
}

// Database locates the SQLite file.
type Database struct {
	Path string `yaml:"path"`
}

// Source configures one intelligence source.
type Source struct {
	Name               string   `yaml:"name"`
	URL                string   `yaml:"url"`
	Type               string   `yaml:"type"`
	FeedURL            string   `yaml:"feed_url"`
	URLIncludePatterns []string `yaml:"url_include_patterns"`
	URLExcludePatterns []string `yaml:"url_exclude_patterns"`
}

// AI configures the Anthropic API access.
type AI struct {
	APIKey        string `yaml:"api_key"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
	MaxTokens     int    `yaml:"max_tokens"`
}

// Reporting configures report generation.
type Reporting struct {
	OutputDirectory string `yaml:"output_directory"`
	TimeWindowDays  int    `yaml:"time_window_days"`
	Format          string `yaml:"format"`
}

// Server configures the HTTP API.
type Server struct {
	Listen string `yaml:"listen"`
}

// Load reads, validates, and defaults a configuration file. The
// ANTHROPIC_API_KEY environment variable overrides ai.api_key when set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := os.MkdirAll(cfg.Reporting.OutputDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path not specified in configuration")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no intelligence sources specified in configuration")
	}
	for i, source := range c.Sources {
		if source.Name == "" {
			return fmt.Errorf("source %d has no name", i)
		}
		if source.Type != "rss" && source.Type != "web" {
			return fmt.Errorf("source %q has unsupported type %q", source.Name, source.Type)
		}
		if source.URL == "" && source.FeedURL == "" {
			return fmt.Errorf("source %q has no url", source.Name)
		}
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai api key not specified in configuration or ANTHROPIC_API_KEY")
	}
	if c.Reporting.OutputDirectory == "" {
		return fmt.Errorf("reporting output directory not specified in configuration")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Reporting.TimeWindowDays <= 0 {
		c.Reporting.TimeWindowDays = 30
	}
	if c.Reporting.Format == "" {
		c.Reporting.Format = "html"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
}

// Default returns the starter configuration written by WriteDefault.
func Default() Config {
	return Config{
		Database: Database{Path: "data/prism.db"},
		Sources: []Source{
			{Name: "Krebs on Security", URL: "https://krebsonsecurity.com", Type: "rss", FeedURL: "https://krebsonsecurity.com/feed/"},
			{Name: "Bleeping Computer", URL: "https://www.bleepingcomputer.com", Type: "rss", FeedURL: "https://www.bleepingcomputer.com/feed/"},
			{Name: "The Hacker News", URL: "https://thehackernews.com", Type: "rss", FeedURL: "https://feeds.feedburner.com/TheHackersNews"},
		},
		AI: AI{APIKey: "YOUR_API_KEY_HERE"},
		Reporting: Reporting{
			OutputDirectory: "reports",
			TimeWindowDays:  30,
			Format:          "html",
		},
		Server: Server{Listen: ":8080"},
	}
}

// WriteDefault writes the starter configuration to path.
func WriteDefault(path string) error {
	cfg := Default()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
