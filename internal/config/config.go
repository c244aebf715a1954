// Package config loads the booktrack client configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/booktrack"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvFile is loaded, when present, before environment overrides apply
	EnvFile = ".env.local"
)

// Config represents the complete client configuration
type Config struct {
	API         APIConfig         `yaml:"api"`
	Covers      CoversConfig      `yaml:"covers"`
	OpenLibrary OpenLibraryConfig `yaml:"openlibrary"`
	Capture     CaptureConfig     `yaml:"capture"`
	Log         LogConfig         `yaml:"log"`
	// Locale drives title/author/theme collation (BCP 47 tag)
	Locale string `yaml:"locale"`
}

// APIConfig points at the remote library service
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// CoversConfig controls ISBN-derived cover URLs
type CoversConfig struct {
	BaseURL string `yaml:"base_url"`
	// Size is S, M or L
	Size string `yaml:"size"`
}

type OpenLibraryConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	RPS       int    `yaml:"rps"`
}

type CaptureConfig struct {
	// Fallback is ask, local or abandon
	Fallback string `yaml:"fallback"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Covers: CoversConfig{
			BaseURL: "https://covers.openlibrary.org",
			Size:    "L",
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL:   "https://openlibrary.org",
			UserAgent: "booktrack/0.1 (personal library client)",
			RPS:       1,
		},
		Capture: CaptureConfig{Fallback: "ask"},
		Log:     LogConfig{Level: "warn"},
		Locale:  "en",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	switch c.Covers.Size {
	case "S", "M", "L":
	default:
		errs = append(errs, fmt.Errorf("covers.size must be S, M or L, got %q", c.Covers.Size))
	}
	if c.OpenLibrary.RPS < 1 {
		errs = append(errs, errors.New("openlibrary.rps must be at least 1"))
	}
	switch c.Capture.Fallback {
	case "ask", "local", "abandon":
	default:
		errs = append(errs, fmt.Errorf("capture.fallback must be ask, local or abandon, got %q", c.Capture.Fallback))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale: %w", err))
	}
	return errors.Join(errs...)
}

// LanguageTag returns the parsed locale, English when unparsable.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load applies, in order: defaults, the YAML file (explicit path, then
// $BOOKTRACK_CONFIG, then the user config if present), .env.local and
// BOOKTRACK_* environment variables. The result is validated.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := godotenv.Load(EnvFile); err == nil {
		logger.Debug("loaded env file", "path", EnvFile)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("BOOKTRACK_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = userConfigPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		switch {
		case err == nil:
			logger.Debug("loaded config file", "path", path)
			cfg = fileCfg
		case explicit || !os.IsNotExist(err):
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("BOOKTRACK_API_URL", &c.API.BaseURL)
	str("BOOKTRACK_COVERS_URL", &c.Covers.BaseURL)
	str("BOOKTRACK_COVER_SIZE", &c.Covers.Size)
	str("BOOKTRACK_OPENLIBRARY_URL", &c.OpenLibrary.BaseURL)
	str("BOOKTRACK_USER_AGENT", &c.OpenLibrary.UserAgent)
	str("BOOKTRACK_FALLBACK", &c.Capture.Fallback)
	str("BOOKTRACK_LOG_LEVEL", &c.Log.Level)
	str("BOOKTRACK_LOCALE", &c.Locale)
	c.Covers.Size = strings.ToUpper(c.Covers.Size)

	if v, ok := lookup("BOOKTRACK_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BOOKTRACK_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v, ok := lookup("BOOKTRACK_OPENLIBRARY_RPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOOKTRACK_OPENLIBRARY_RPS: %w", err)
		}
		c.OpenLibrary.RPS = n
	}
	return nil
}

// userConfigPath returns the path to the user config file
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}
