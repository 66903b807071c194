package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application: the queue service
// (server side) and the queue engine client settings.
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Queue                     QueueConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// QueueConfig holds the queue engine's client-side settings: where the remote
// queue service lives (empty means local-only), where the local durable store
// keeps its data, and how often subscribers are refreshed in each mode.
type QueueConfig struct {
	APIBaseURL         string
	LocalStorePath     string
	LocalPollInterval  time.Duration
	RemotePollInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinicqueue"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	localPoll, err := time.ParseDuration(getEnv("QUEUE_LOCAL_POLL_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_LOCAL_POLL_INTERVAL: %w", err)
	}

	remotePoll, err := time.ParseDuration(getEnv("QUEUE_REMOTE_POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUEUE_REMOTE_POLL_INTERVAL: %w", err)
	}

	queueConfig := QueueConfig{
		APIBaseURL:         getEnv("QUEUE_API_BASE_URL", ""),
		LocalStorePath:     getEnv("QUEUE_LOCAL_STORE_PATH", "queue.db"),
		LocalPollInterval:  localPoll,
		RemotePollInterval: remotePoll,
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("NODE_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Queue:                     queueConfig,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
