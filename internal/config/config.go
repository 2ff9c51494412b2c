package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIIndexConfig holds configuration for the OpenAI-compatible embeddings index.
type OpenAIIndexConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
	Concurrency int    `yaml:"concurrency"`
}

// IndexConfig selects and configures the passage index implementation.
type IndexConfig struct {
	Type           string             `yaml:"type"`
	Stopwords      string             `yaml:"stopwords"`
	MinTokenLength int                `yaml:"min_token_length"`
	OpenAI         *OpenAIIndexConfig `yaml:"openai,omitempty"`
}

// PassageConfig controls which extracted segments become passages.
type PassageConfig struct {
	MinLength int `yaml:"min_length"`
}

// RankerConfig controls how many passages are returned and the relevance cutoff.
type RankerConfig struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// ScraperConfig configures the web page source.
type ScraperConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs"`
	UserAgent   string `yaml:"user_agent"`
	Selector    string `yaml:"selector"`
}

// ChunkerConfig configures how local files are split into passages.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LoggingConfig configures log level and destination.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Index      IndexConfig      `yaml:"index"`
	Passages   PassageConfig    `yaml:"passages"`
	Ranker     RankerConfig     `yaml:"ranker"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/sitechat/config.yaml.
// If neither exists, it writes defaults to ~/.config/sitechat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := UserPath("config.yaml")
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UserPath returns name inside the per-user sitechat config directory.
func UserPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sitechat", name), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Index:      IndexConfig{Type: "tfidf", Stopwords: "none"},
		Chunker:    ChunkerConfig{Type: "sentence"},
		Summarizer: SummarizerConfig{Type: "frequency"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

// Validate rejects unknown component types and out-of-range values.
func (c *AppConfig) Validate() error {
	switch c.Index.Type {
	case "tfidf", "openai":
	default:
		return fmt.Errorf("unknown index type %q", c.Index.Type)
	}
	switch c.Index.Stopwords {
	case "none", "english":
	default:
		return fmt.Errorf("unknown stopwords set %q", c.Index.Stopwords)
	}
	if c.Chunker.Type != "sentence" {
		return fmt.Errorf("unknown chunker %q", c.Chunker.Type)
	}
	if c.Summarizer.Type != "frequency" && c.Summarizer.Type != "none" {
		return fmt.Errorf("unknown summarizer %q", c.Summarizer.Type)
	}
	if c.Ranker.TopK < 1 {
		return fmt.Errorf("ranker.top_k must be at least 1, got %d", c.Ranker.TopK)
	}
	if c.Ranker.Threshold <= 0 || c.Ranker.Threshold > 1 {
		return fmt.Errorf("ranker.threshold must be in (0,1], got %g", c.Ranker.Threshold)
	}
	if c.Passages.MinLength < 0 {
		return fmt.Errorf("passages.min_length must not be negative, got %d", c.Passages.MinLength)
	}
	return nil
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Index.Type == "" {
		cfg.Index.Type = "tfidf"
	}
	if cfg.Index.Stopwords == "" {
		cfg.Index.Stopwords = "none"
	}
	if cfg.Index.MinTokenLength == 0 {
		cfg.Index.MinTokenLength = 2
	}
	if cfg.Index.Type == "openai" {
		if cfg.Index.OpenAI == nil {
			cfg.Index.OpenAI = &OpenAIIndexConfig{}
		}
		if cfg.Index.OpenAI.BaseURL == "" {
			cfg.Index.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Index.OpenAI.APIKeyEnv == "" {
			cfg.Index.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Index.OpenAI.Model == "" {
			cfg.Index.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Index.OpenAI.TimeoutSecs == 0 {
			cfg.Index.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Passages.MinLength == 0 {
		cfg.Passages.MinLength = 20
	}
	if cfg.Ranker.TopK == 0 {
		cfg.Ranker.TopK = 3
	}
	if cfg.Ranker.Threshold == 0 {
		cfg.Ranker.Threshold = 0.3
	}
	if cfg.Scraper.TimeoutSecs == 0 {
		cfg.Scraper.TimeoutSecs = 15
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "sitechat/0.1"
	}
	if cfg.Scraper.Selector == "" {
		cfg.Scraper.Selector = "p, h1, h2, h3, h4, h5, h6"
	}
	if cfg.Chunker.Type == "" {
		cfg.Chunker.Type = "sentence"
	}
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 3
	}
	if cfg.Summarizer.Type == "" {
		cfg.Summarizer.Type = "frequency"
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
