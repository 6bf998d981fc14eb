// Package config loads the FitGlide settings from config.yaml in the data
// directory, with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fitglide/fitglide/internal/core"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	EnvDataDir       = "FITGLIDE_DATA_DIR"
	EnvLogLevel      = "FITGLIDE_LOG_LEVEL"
	EnvBannerSeconds = "FITGLIDE_BANNER_SECONDS"
)

const (
	defaultLogLevel       = "info"
	defaultBannerDuration = 3 * time.Second
	defaultRecentLimit    = 10
)

// Config holds the resolved settings. Paths are absolute.
type Config struct {
	DataDir        string        `yaml:"-"`
	DatabaseFile   string        `yaml:"database_file"`
	LogFile        string        `yaml:"log_file"`
	LogLevel       string        `yaml:"log_level"`
	BannerDuration time.Duration `yaml:"banner_duration"`
	RecentLimit    int           `yaml:"recent_limit"`
}

// Load resolves the configuration. getenv is usually os.Getenv. A missing
// config.yaml is not an error.
func Load(getenv func(string) string) (*Config, error) {
	var paths core.Paths
	if dir := getenv(EnvDataDir); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
		paths = core.PathsIn(dir)
	} else {
		paths = core.PathsIn(core.DataDir())
	}

	cfg := &Config{
		DataDir:        paths.DataDir,
		DatabaseFile:   paths.LedgerFile,
		LogFile:        paths.LogFile,
		LogLevel:       defaultLogLevel,
		BannerDuration: defaultBannerDuration,
		RecentLimit:    defaultRecentLimit,
	}

	data, err := os.ReadFile(paths.ConfigFile)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", paths.ConfigFile, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if level := getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	if secs := getenv(EnvBannerSeconds); secs != "" {
		n, err := strconv.ParseFloat(secs, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", EnvBannerSeconds, err)
		}
		cfg.BannerDuration = time.Duration(n * float64(time.Second))
	}

	// Relative paths in the file are relative to the data dir
	cfg.DatabaseFile = resolve(cfg.DataDir, cfg.DatabaseFile)
	cfg.LogFile = resolve(cfg.DataDir, cfg.LogFile)

	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(dir, path)
}

// Level parses LogLevel for the zap logger config.
func (c *Config) Level() (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
