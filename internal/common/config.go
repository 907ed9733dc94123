package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	Entity   EntityConfig
	Units    UnitsConfig
}

// PipelineConfig holds pipeline-related configuration
type PipelineConfig struct {
	OutputRoot          string
	MaxRetries          int
	ClassifierThreshold float64
	FuzzyThreshold      float64
	ToleranceAbsolute   float64
}

// EntityConfig identifies the reporting ULB on the output envelope.
type EntityConfig struct {
	ULBName string
	ULBCode string
	State   string
}

// UnitsConfig holds the currency units reported on the envelope.
type UnitsConfig struct {
	Currency     string
	ReportedUnit string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			OutputRoot:          getEnv("AFS_OUTPUT_ROOT", "./out"),
			MaxRetries:          getEnvAsInt("AFS_MAX_RETRIES", 2),
			ClassifierThreshold: getEnvAsFloat("AFS_CLASSIFIER_THRESHOLD", 0.75),
			FuzzyThreshold:      getEnvAsFloat("AFS_FUZZY_THRESHOLD", 0.86),
			ToleranceAbsolute:   getEnvAsFloat("AFS_VALIDATION_TOLERANCE", 1),
		},
		Entity: EntityConfig{
			ULBName: getEnv("AFS_ULB_NAME", ""),
			ULBCode: getEnv("AFS_ULB_CODE", ""),
			State:   getEnv("AFS_STATE", ""),
		},
		Units: UnitsConfig{
			Currency:     getEnv("AFS_CURRENCY", "INR"),
			ReportedUnit: getEnv("AFS_REPORTED_UNIT", "INR"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.OutputRoot == "" {
		return NewAppError(CodeConfigError, "AFS_OUTPUT_ROOT is required", ErrInvalidInput)
	}
	if c.Pipeline.MaxRetries < 0 {
		return NewAppError(CodeConfigError, "AFS_MAX_RETRIES must be >= 0", ErrInvalidInput)
	}
	if c.Pipeline.ClassifierThreshold < 0 || c.Pipeline.ClassifierThreshold > 1 {
		return NewAppError(CodeConfigError, "AFS_CLASSIFIER_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	if c.Pipeline.FuzzyThreshold < 0 || c.Pipeline.FuzzyThreshold > 1 {
		return NewAppError(CodeConfigError, "AFS_FUZZY_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	return nil
}
