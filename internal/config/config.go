// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Repository configuration via viper

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DirName is the configuration directory inside the repository root
	DirName = ".pybench"
	// FileName is the configuration file inside DirName
	FileName = "config.yaml"
)

// Config holds the process-wide settings. It is loaded once and handed to
// the dispatcher and reporter constructors as an explicit value.
type Config struct {
	// ResultDir stores benchmark runs, relative to the repository root
	ResultDir string `mapstructure:"resultdir"`
	// TimeUnit is the target unit reports rescale timings into
	TimeUnit string `mapstructure:"timeunit"`
	// SignificantDigits controls floating point formatting in reports
	SignificantDigits int `mapstructure:"significantdigits"`
	// Repetitions is the default per-benchmark repetition count
	Repetitions int `mapstructure:"repetitions"`
	// Executable is the base interpreter for fresh environments
	Executable string `mapstructure:"executable"`
	// VenvOptions are forwarded to environment creation
	VenvOptions []string `mapstructure:"venvoptions"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("resultdir", "results")
	v.SetDefault("timeunit", "usec")
	v.SetDefault("significantdigits", 2)
	v.SetDefault("repetitions", 1)
	v.SetDefault("executable", "python3")
	v.SetDefault("venvoptions", []string{})
}

// Dir returns the configuration directory for a repository root
func Dir(repoRoot string) string {
	return filepath.Join(repoRoot, DirName)
}

// Load reads the repository configuration, falling back to defaults for
// anything unset. A missing config file yields the pure defaults.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()
	defaults(v)

	path := filepath.Join(Dir(repoRoot), FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// Write materializes the current defaults as a config file, for init
func Write(repoRoot string) error {
	v := viper.New()
	defaults(v)

	dir := Dir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResultPath resolves the result directory against the repository root
func (c *Config) ResultPath(repoRoot string) string {
	if filepath.IsAbs(c.ResultDir) {
		return c.ResultDir
	}
	return filepath.Join(Dir(repoRoot), c.ResultDir)
}
