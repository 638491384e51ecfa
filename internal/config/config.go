package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read from the working directory when no config path is given.
const DefaultConfigFile = "pfncards.config.json"

// EnvConfigPath names the environment variable holding an explicit config path.
const EnvConfigPath = "PFN_CONFIG"

// Config holds application configuration.
// Priority: ENV > config file > defaults (via env-default tags). CLI flags
// are applied on top by the caller.
type Config struct {
	// InputPath is the line-oriented source file
	InputPath string `json:"input_path" env:"PFN_INPUT" env-default:"raw.txt"`

	// OutputPath is the JSON destination file
	OutputPath string `json:"output_path" env:"PFN_OUTPUT" env-default:"pfn_cards.json"`

	// PreviewCount is how many cards the parse summary lists.
	// A zero in the file falls back to the default; use PFN_PREVIEW=0 or --preview 0 to disable.
	PreviewCount int `json:"preview_count" env:"PFN_PREVIEW" env-default:"5"`

	// DataDir holds the deck database. Empty means ~/.pfncards.
	DataDir string `json:"data_dir" env:"PFN_DATA_DIR"`

	// SampleSize is the default number of cards drawn by sample
	SampleSize int `json:"sample_size" env:"PFN_SAMPLE_SIZE" env-default:"20"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `json:"log_level" env:"PFN_LOG_LEVEL" env-default:"warn"`
}

// Load reads configuration from a JSON file and environment variables.
// The file path is path, else PFN_CONFIG, else ./pfncards.config.json.
// A missing file is an error only when its path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	explicitPath := path != ""
	if !explicitPath {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("input_path must not be empty")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("output_path must not be empty")
	}
	if c.PreviewCount < 0 {
		return fmt.Errorf("preview_count must be non-negative, got %d", c.PreviewCount)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", c.SampleSize)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolveDataDir returns DataDir, defaulting to ~/.pfncards.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".pfncards"), nil
}

// ParseLevel maps a log level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", s)
	}
}
