package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/masmgr/gitdrill/internal/bugfix"
)

// Config is the root configuration structure.
type Config struct {
	Mining  MiningConfig  `json:"mining" yaml:"mining"`
	Filters FilterConfig  `json:"filters" yaml:"filters"`
	Blame   BlameConfig   `json:"blame" yaml:"blame"`
	Bugfix  BugfixConfig  `json:"bugfix" yaml:"bugfix"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// MiningConfig holds traversal defaults.
type MiningConfig struct {
	Branch        string `json:"branch" yaml:"branch"` // Empty means HEAD
	ReversedOrder bool   `json:"reversedOrder" yaml:"reversedOrder"`
	OnlyNoMerge   bool   `json:"onlyNoMerge" yaml:"onlyNoMerge"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" yaml:"include"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// BlameConfig selects the blame strategy used for attribution.
type BlameConfig struct {
	IgnoreAware    bool   `json:"ignoreAware" yaml:"ignoreAware"`
	IgnoreRevsFile string `json:"ignoreRevsFile" yaml:"ignoreRevsFile"`
}

// BugfixConfig holds bugfix detection configuration.
type BugfixConfig struct {
	Patterns []string `json:"patterns" yaml:"patterns"` // Regex patterns for bugfix commit detection
}

// OutputConfig holds report defaults.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"`
	Top    int    `json:"top" yaml:"top"` // 0 means unlimited
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"` // "text" or "json"
	File       string `json:"file" yaml:"file"`     // Empty logs to stderr
	MaxSizeMB  int    `json:"maxSizeMB" yaml:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Blame: BlameConfig{
			IgnoreRevsFile: ".git-blame-ignore-revs",
		},
		Bugfix: BugfixConfig{
			Patterns: append([]string(nil), bugfix.DefaultPatterns...),
		},
		Output: OutputConfig{
			Format: "console",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

var configNames = []string{".gitdrill.json", ".gitdrill.yaml", ".gitdrill.yml"}

// LoadConfig loads configuration from a file, merging with defaults.
// With an empty path the working directory and then the home directory are
// searched for .gitdrill.json, .gitdrill.yaml or .gitdrill.yml.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func findConfig() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// Environment variables overriding logging settings.
const (
	EnvLogLevel  = "GITDRILL_LOG_LEVEL"
	EnvLogFormat = "GITDRILL_LOG_FORMAT"
	EnvLogFile   = "GITDRILL_LOG_FILE"
)

// ApplyEnv loads envFile when it exists, without overriding variables
// already set, then applies the GITDRILL_LOG_* overrides to cfg.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Logging.File = v
	}
	return nil
}

// SaveConfig saves configuration to a file as JSON, or YAML for .yaml/.yml.
func SaveConfig(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
