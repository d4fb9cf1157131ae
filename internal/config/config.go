// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/halcyon-energy/halcyon/internal/domain"
)

// Config holds application configuration.
type Config struct {
	DataDir  string // Base directory for all databases, always absolute
	Port     int
	LogLevel string
	DevMode  bool

	// Engine defaults, overridable per calculation request.
	Constants domain.Constants
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("HALCYON_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Config{
		DataDir:   absDataDir,
		Port:      getEnvAsInt("HALCYON_PORT", 8001),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		Constants: loadConstants(),
	}, nil
}

// loadConstants applies environment overrides on top of the engine
// defaults. Every knob has a sensible default, so none are required.
func loadConstants() domain.Constants {
	constants := domain.DefaultConstants()
	constants.HoursInYear = getEnvAsFloat("HALCYON_HOURS_IN_YEAR", constants.HoursInYear)
	constants.VolumeVariation = getEnvAsFloat("HALCYON_VOLUME_VARIATION", constants.VolumeVariation)
	constants.GreenPriceVariation = getEnvAsFloat("HALCYON_GREEN_PRICE_VARIATION", constants.GreenPriceVariation)
	constants.EnergyPriceVariation = getEnvAsFloat("HALCYON_ENERGY_PRICE_VARIATION", constants.EnergyPriceVariation)
	constants.Escalation = getEnvAsFloat("HALCYON_ESCALATION", constants.Escalation)
	constants.ReferenceYear = getEnvAsInt("HALCYON_REFERENCE_YEAR", constants.ReferenceYear)
	return constants
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
