// Package config loads service settings from defaults, an optional YAML file
// and AUTOAGENDA_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	NLUModeAuto        = "auto"
	NLUModeLLM         = "llm"
	NLUModePassthrough = "passthrough"
)

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Config struct {
	Port     string `yaml:"port"`
	DBPath   string `yaml:"db_path"`
	Timezone string `yaml:"timezone"`
	Language string `yaml:"language"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	SecretKey string        `yaml:"secret_key"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	NLUMode string       `yaml:"nlu_mode"`
	OpenAI  OpenAIConfig `yaml:"openai"`

	// ReminderSchedule is a robfig/cron spec for the due-reminder sweep.
	ReminderSchedule string `yaml:"reminder_schedule"`

	// MaxOccurrences bounds recurrence expansion per event per query.
	MaxOccurrences int `yaml:"max_occurrences"`
}

func Default() *Config {
	return &Config{
		Port:             "8080",
		DBPath:           "autoagenda.db",
		Timezone:         "Europe/Madrid",
		Language:         "es",
		LogLevel:         "info",
		LogFormat:        "text",
		SecretKey:        "dev-secret-change-me",
		TokenTTL:         72 * time.Hour,
		NLUMode:          NLUModeAuto,
		OpenAI:           OpenAIConfig{Model: "gpt-4.1-mini"},
		ReminderSchedule: "@every 1m",
		MaxOccurrences:   5000,
	}
}

// Load returns the configuration. path may be empty; a path that does not
// exist is treated as an empty file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"AUTOAGENDA_PORT":              &c.Port,
		"AUTOAGENDA_DB_PATH":           &c.DBPath,
		"AUTOAGENDA_TIMEZONE":          &c.Timezone,
		"AUTOAGENDA_LANGUAGE":          &c.Language,
		"AUTOAGENDA_LOG_LEVEL":         &c.LogLevel,
		"AUTOAGENDA_LOG_FORMAT":        &c.LogFormat,
		"AUTOAGENDA_SECRET_KEY":        &c.SecretKey,
		"AUTOAGENDA_NLU_MODE":          &c.NLUMode,
		"OPENAI_API_KEY":               &c.OpenAI.APIKey,
		"AUTOAGENDA_OPENAI_BASE_URL":   &c.OpenAI.BaseURL,
		"AUTOAGENDA_OPENAI_MODEL":      &c.OpenAI.Model,
		"AUTOAGENDA_REMINDER_SCHEDULE": &c.ReminderSchedule,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup("AUTOAGENDA_TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("AUTOAGENDA_TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v, ok := lookup("AUTOAGENDA_MAX_OCCURRENCES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTOAGENDA_MAX_OCCURRENCES: %w", err)
		}
		c.MaxOccurrences = n
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	switch c.NLUMode {
	case NLUModeAuto, NLUModePassthrough:
	case NLUModeLLM:
		if c.OpenAI.APIKey == "" {
			return errors.New("nlu_mode llm requires an OpenAI API key")
		}
	default:
		return fmt.Errorf("unknown nlu_mode %q", c.NLUMode)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL)
	}
	if c.SecretKey == "" {
		return errors.New("secret_key must not be empty")
	}
	return nil
}

// Location returns the working zone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UseLLM reports whether the OpenAI extractor should be used.
func (c *Config) UseLLM() bool {
	switch c.NLUMode {
	case NLUModeLLM:
		return true
	case NLUModeAuto:
		return c.OpenAI.APIKey != ""
	}
	return false
}
