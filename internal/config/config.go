package config

import (
	"fmt"
	"os"
	"strconv"

	"assocreport/adapters/stats/senses"
	"assocreport/internal"
	"assocreport/internal/encoding"
	"assocreport/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Server   ServerConfig
	LogLevel internal.LogLevel
}

// DataConfig holds input and output locations
type DataConfig struct {
	DataFile   string
	OutputFile string
	PlanFile   string
}

// AnalysisConfig holds the statistical options applied to every pair
type AnalysisConfig struct {
	SignificanceLevel float64
	CategoryOrder     encoding.Order
	YatesCorrection   bool
	Workers           int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DefaultOutputFile is where the CLI tees the report when OUTPUT_FILE is unset
const DefaultOutputFile = "association_report.txt"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     *loadDataConfig(),
		Server:   *loadServerConfig(),
		LogLevel: internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		DataFile:   getEnvOrDefault("DATA_FILE", ""),
		OutputFile: getEnvOrDefault("OUTPUT_FILE", DefaultOutputFile),
		PlanFile:   getEnvOrDefault("PLAN_FILE", ""),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	order, err := encoding.ParseOrder(os.Getenv("CATEGORY_ORDER"))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}

	alpha, err := getEnvFloat("SIGNIFICANCE_LEVEL", 0.05)
	if err != nil {
		return nil, err
	}
	yates, err := getEnvBool("YATES_CORRECTION", false)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("REPORT_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	return &AnalysisConfig{
		SignificanceLevel: alpha,
		CategoryOrder:     order,
		YatesCorrection:   yates,
		Workers:           workers,
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func validateConfig(config *Config) error {
	if a := config.Analysis.SignificanceLevel; a <= 0 || a >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("SIGNIFICANCE_LEVEL must be in (0,1), got %g", a))
	}
	if config.Analysis.Workers < 1 {
		return errors.ConfigInvalid("REPORT_WORKERS must be at least 1")
	}
	if config.Data.OutputFile == "" {
		return errors.ConfigInvalid("OUTPUT_FILE is required")
	}
	if port, err := strconv.Atoi(config.Server.Port); err != nil || port <= 0 || port > 65535 {
		return errors.ConfigInvalid(fmt.Sprintf("PORT must be a TCP port, got %q", config.Server.Port))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be a number, got %q", key, value))
	}
	return floatValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return boolValue, nil
}

// ChiSquareOptions converts the analysis settings into test options
func (a AnalysisConfig) ChiSquareOptions() senses.ChiSquareOptions {
	return senses.ChiSquareOptions{
		Alpha:           a.SignificanceLevel,
		Order:           a.CategoryOrder,
		YatesCorrection: a.YatesCorrection,
	}
}
