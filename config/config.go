// Package config loads taskforge configuration from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"taskforge/model"
)

// Config is the merged result of defaults, the config file and the environment.
type Config struct {
	// Categories is the enumeration offered by the front-ends.
	Categories []string `toml:"categories"`
	// Samples preloads the demo tasks when no seed is given.
	Samples bool `toml:"samples" env:"TASKFORGE_SAMPLES"`
	// Seed is an optional JSON session to start from.
	Seed   string `toml:"seed" env:"TASKFORGE_SEED"`
	Sort   string `toml:"sort" env:"TASKFORGE_SORT"`
	Locale string `toml:"locale" env:"TASKFORGE_LOCALE"`
	Log    Log    `toml:"log"`
}

// Log configures the session log. An empty File disables logging.
type Log struct {
	File  string `toml:"file" env:"TASKFORGE_LOG_FILE"`
	Level string `toml:"level" env:"TASKFORGE_LOG_LEVEL"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Categories: append([]string(nil), model.DefaultCategories...),
		Samples:    true,
		Sort:       string(model.SortPriority),
		Locale:     "en",
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/taskforge/config.toml, falling back to ~/.config.
func DefaultPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "taskforge", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "taskforge", "config.toml"), nil
}

// Load reads path over the defaults, applies environment overrides and validates.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	cleaned := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			cleaned = append(cleaned, cat)
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, model.DefaultCategories...)
	}
	c.Categories = cleaned

	sortBy, err := model.ParseSortBy(c.Sort)
	if err != nil {
		return fmt.Errorf("config sort: %w", err)
	}
	c.Sort = string(sortBy)

	c.Locale = strings.TrimSpace(c.Locale)
	if c.Locale == "" {
		c.Locale = "en"
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config locale %q: %w", c.Locale, err)
	}

	c.Seed = strings.TrimSpace(c.Seed)
	c.Log.File = strings.TrimSpace(c.Log.File)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config log level: %w", err)
	}
	return nil
}

// SortBy returns the validated initial sort key.
func (c Config) SortBy() model.SortBy {
	return model.SortBy(c.Sort)
}

// LocaleTag returns the validated collation language.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// LogLevel returns the validated log level.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
