package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors  int
	TestTimeout time.Duration

	// Group selection applied when no flag overrides it
	Groups        []string
	ExcludeGroups []string

	// MySQL DSN for run history, empty disables it
	DatabaseDSN string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors    int
	Groups        []string
	ExcludeGroups []string
	NameFilter    string
	FailFast      bool
	OnlyFailed    bool
	RerunFailures bool
	OpenFaills    bool
	Verbose       bool
	Timeout       time.Duration
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		ProjectPath:    DefaultProjectPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		TestTimeout:    DefaultTestTimeout,
		Flags:          Flags{Processors: DefaultProcessors},
	}
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.ApplyFlags(flags)
	return cfg
}

// ApplyFlags stores flags and lets non-zero values override configured settings
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Timeout > 0 {
		c.TestTimeout = flags.Timeout
	}
}

// LoadEnv reads the .env file under the project path (if any) and applies ATH_* variables.
// Variables already set in the process environment take precedence over the file.
func (c *Config) LoadEnv() error {
	envPath := filepath.Join(c.ProjectPath, DefaultEnvFile)
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", envPath, err)
	}

	if v := os.Getenv(EnvProcessors); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %q", EnvProcessors, v)
		}
		c.Processors = n
	}
	if v := os.Getenv(EnvTestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTestTimeout, err)
		}
		c.TestTimeout = d
	}
	if v := os.Getenv(EnvGroups); v != "" {
		c.Groups = SplitList(v)
	}
	if v := os.Getenv(EnvExcludeGroups); v != "" {
		c.ExcludeGroups = SplitList(v)
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputJSONDir = v
	}
	c.DatabaseDSN = os.Getenv(EnvDatabaseDSN)
	return nil
}

// SelectedGroups returns the include groups, flags first
func (c *Config) SelectedGroups() []string {
	if len(c.Flags.Groups) > 0 {
		return c.Flags.Groups
	}
	return c.Groups
}

// ExcludedGroups returns the exclude groups, flags first
func (c *Config) ExcludedGroups() []string {
	if len(c.Flags.ExcludeGroups) > 0 {
		return c.Flags.ExcludeGroups
	}
	return c.ExcludeGroups
}

// GetOutputPath returns the full path to the output JSON file (under project so run and faills use the same file).
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if filepath.IsAbs(c.OutputJSONDir) {
		p = filepath.Join(c.OutputJSONDir, c.OutputJSONFile)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
