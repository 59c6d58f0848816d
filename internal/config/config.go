package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Hamster
	HamsterDBPath string

	// GetMyTime
	GetMyTimeURL        string
	GetMyTimeUsername   string
	GetMyTimePassword   string
	GetMyTimeToken      string
	GetMyTimeEmployeeID string
	GetMyTimeProjectID  int
	RequestDelay        time.Duration

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	LogMode string // "dev" or "prod"
}

// Load loads the configuration from environment variables.
// envFile is loaded first when set; otherwise a .env in the working
// directory is used if present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	projectID, err := strconv.Atoi(getEnv("GETMYTIME_PROJECT_ID", "139"))
	if err != nil {
		return nil, &ConfigError{Field: "GETMYTIME_PROJECT_ID", Message: "must be an integer"}
	}
	delay, err := time.ParseDuration(getEnv("GETMYTIME_REQUEST_DELAY", "1s"))
	if err != nil {
		return nil, &ConfigError{Field: "GETMYTIME_REQUEST_DELAY", Message: "must be a duration such as 1s"}
	}

	return &Config{
		HamsterDBPath:       getEnv("HAMSTER_DB_PATH", defaultHamsterPath()),
		GetMyTimeURL:        getEnv("GETMYTIME_URL", "https://app.getmytime.com/service.aspx"),
		GetMyTimeUsername:   getEnv("GETMYTIME_USERNAME", ""),
		GetMyTimePassword:   getEnv("GETMYTIME_PASSWORD", ""),
		GetMyTimeToken:      getEnv("GETMYTIME_TOKEN", ""),
		GetMyTimeEmployeeID: getEnv("GETMYTIME_EMPLOYEE_ID", ""),
		GetMyTimeProjectID:  projectID,
		RequestDelay:        delay,
		StorageType:         getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:          getEnv("SQLITE_PATH", "./timesheets.db"),
		PostgresURL:         getEnv("POSTGRES_URL", ""),
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "localhost"),
		APIEndpoint:         getEnv("API_ENDPOINT", "http://localhost:8080"),
		LogMode:             getEnv("LOG_MODE", "dev"),
	}, nil
}

func defaultHamsterPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hamster.db"
	}
	return filepath.Join(home, ".local", "share", "hamster-applet", "hamster.db")
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate validates the storage configuration
func (c *Config) Validate() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ValidateBilling checks that GetMyTime credentials are present.
func (c *Config) ValidateBilling() error {
	if c.GetMyTimeToken != "" {
		if c.GetMyTimeEmployeeID == "" {
			return &ConfigError{Field: "GETMYTIME_EMPLOYEE_ID", Message: "employee id is required when GETMYTIME_TOKEN is set"}
		}
		return nil
	}
	if c.GetMyTimeUsername == "" {
		return &ConfigError{Field: "GETMYTIME_USERNAME", Message: "username is required"}
	}
	if c.GetMyTimePassword == "" {
		return &ConfigError{Field: "GETMYTIME_PASSWORD", Message: "password is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
