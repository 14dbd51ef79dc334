package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gorepness/domain/stats"
	"gorepness/internal/errors"

	"gopkg.in/yaml.v3"
)

// Vote sources selectable with VOTE_SOURCE
const (
	SourcePostgres  = "postgres"
	SourceParquet   = "parquet"
	SourceCSV       = "csv"
	SourceSynthetic = "synthetic"
)

// Config represents the complete application configuration
type Config struct {
	Store     StoreConfig
	Server    ServerConfig
	Profiling ProfilingConfig
	Analysis  AnalysisConfig
}

// StoreConfig selects and locates the vote store
type StoreConfig struct {
	Source         string
	DatabaseURL    string
	VotesFile      string
	StatementsFile string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// AnalysisConfig holds default analysis options and aggregation fan-out
type AnalysisConfig struct {
	Options                stats.AnalysisOptions
	AggregationConcurrency int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Store:     *loadStoreConfig(),
		Server:    *loadServerConfig(),
		Profiling: *loadProfilingConfig(),
		Analysis:  *loadAnalysisConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Source:         strings.ToLower(getEnvOrDefault("VOTE_SOURCE", SourceSynthetic)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		VotesFile:      getEnvOrDefault("VOTES_FILE", ""),
		StatementsFile: getEnvOrDefault("STATEMENTS_FILE", ""),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Options: stats.AnalysisOptions{
			IncludeModerated:   getEnvBoolOrDefault("INCLUDE_MODERATED", false),
			MinVoteCount:       getEnvIntOrDefault("MIN_VOTE_COUNT", stats.DefaultMinVoteCount),
			MaxStatementsCount: getEnvIntOrDefault("MAX_STATEMENTS_COUNT", stats.DefaultMaxStatementsCount),
		},
		AggregationConcurrency: getEnvIntOrDefault("AGGREGATION_CONCURRENCY", 4),
	}
}

func validateConfig(config *Config) error {
	switch config.Store.Source {
	case SourcePostgres:
		if config.Store.DatabaseURL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when VOTE_SOURCE=postgres")
		}
	case SourceParquet, SourceCSV:
		if config.Store.VotesFile == "" {
			return errors.ConfigInvalid(fmt.Sprintf("VOTES_FILE is required when VOTE_SOURCE=%s", config.Store.Source))
		}
	case SourceSynthetic:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown VOTE_SOURCE %q", config.Store.Source))
	}
	if config.Analysis.AggregationConcurrency < 1 {
		return errors.ConfigInvalid("AGGREGATION_CONCURRENCY must be at least 1")
	}
	if config.Analysis.Options.MinVoteCount < 0 || config.Analysis.Options.MaxStatementsCount < 0 {
		return errors.ConfigInvalid("analysis option counts must not be negative")
	}
	return nil
}

// LoadAnalysisOptions reads options from a YAML file on top of base.
// Keys absent from the file keep the base values.
func LoadAnalysisOptions(path string, base stats.AnalysisOptions) (stats.AnalysisOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(err, "failed to read options file %s", path)
	}

	opts := base
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return base, errors.WithCode(errors.CodeConfigInvalid, errors.Wrapf(err, "failed to parse options file %s", path))
	}
	return opts.WithDefaults(), nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
