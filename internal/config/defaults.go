package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 4
	// DefaultTestTimeout bounds a single test case
	DefaultTestTimeout = 5 * time.Minute
	// DefaultEnvFile is read from the project path when present
	DefaultEnvFile = ".env"
)

// Environment variables recognised by LoadEnv
const (
	EnvProcessors    = "ATH_PROCESSORS"
	EnvGroups        = "ATH_GROUPS"
	EnvExcludeGroups = "ATH_EXCLUDE_GROUPS"
	EnvOutputDir     = "ATH_OUTPUT_DIR"
	EnvTestTimeout   = "ATH_TEST_TIMEOUT"
	EnvDatabaseDSN   = "ATH_DATABASE_DSN"
)
