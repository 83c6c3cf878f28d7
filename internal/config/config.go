// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/ik5/audingest/resample"
	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	appName  = "audingest"
	fileName = "config.yaml"

	EnvLogLevel  = "AUDINGEST_LOG_LEVEL"
	EnvResampler = "AUDINGEST_RESAMPLER"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrReadConfig    = errors.New("unable to read configuration")
)

// LogConfig controls logging and optional file rotation.
type LogConfig struct {
	Level string `yaml:"level"`
	// File enables rotated file output in addition to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Config stores the application configuration.
type Config struct {
	TargetSampleRate int       `yaml:"target_sample_rate"`
	BlockSize        int       `yaml:"block_size"`
	Resampler        string    `yaml:"resampler"`
	Workers          int       `yaml:"workers"`
	Log              LogConfig `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TargetSampleRate: 16000,
		BlockSize:        1024,
		Resampler:        string(resample.Spectral),
		Workers:          4,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// SearchPaths lists where Load looks for a config file, user directory first.
func SearchPaths() []string {
	paths := []string{filepath.Join(xdg.ConfigHome, appName, fileName)}
	for _, dir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(dir, appName, fileName))
	}
	return paths
}

// Load reads the file at path over the defaults. With an empty path the
// first file found in SearchPaths is used, and finding none is not an error.
func Load(fsys afero.Fs, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(fsys, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	for _, candidate := range SearchPaths() {
		err := cfg.loadFile(fsys, candidate)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) loadFile(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadConfig, path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is os.LookupEnv
// outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvResampler); ok && v != "" {
		c.Resampler = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.TargetSampleRate <= 0 {
		errs = append(errs, fmt.Errorf("target_sample_rate must be positive, got %d", c.TargetSampleRate))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block_size must be positive, got %d", c.BlockSize))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if _, err := resample.ParseEngine(c.Resampler); err != nil {
		errs = append(errs, err)
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.File != "" && (c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0) {
		errs = append(errs, errors.New("log rotation limits must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
