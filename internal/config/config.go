package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// SetLogLevel overrides the APP_ENV default for configuration logging.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Fitbit endpoints used when no override is configured.
const (
	DefaultAuthURL  = "https://www.fitbit.com/oauth2/authorize"
	DefaultTokenURL = "https://api.fitbit.com/oauth2/token"
	DefaultAPIBase  = "https://api.fitbit.com"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Fitbit OAuth client
	FitbitClientID     string `json:"fitbit_client_id"`
	FitbitClientSecret string `json:"fitbit_client_secret"`
	FitbitRedirectURI  string `json:"fitbit_redirect_uri"`
	FitbitAuthURL      string `json:"fitbit_auth_url"`
	FitbitTokenURL     string `json:"fitbit_token_url"`
	FitbitAPIBase      string `json:"fitbit_api_base"`

	// Token lifecycle and upstream behaviour
	RefreshLeeway   time.Duration `json:"refresh_leeway"`
	UpstreamTimeout time.Duration `json:"upstream_timeout"`

	// Security Configuration. Empty disables the API bearer guard.
	APIJWTSecret string `json:"api_jwt_secret"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, FitbitClientID: %s, FitbitClientSecret: [REDACTED], FitbitRedirectURI: %s, FitbitAPIBase: %s, RefreshLeeway: %s, UpstreamTimeout: %s, APIJWTSecret: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBPath, c.DBHost, c.DBName, c.DBUser, c.LogLevel,
		c.FitbitClientID, c.FitbitRedirectURI, c.FitbitAPIBase, c.RefreshLeeway, c.UpstreamTimeout, maskSecret(c.APIJWTSecret))
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates the redirect URI and the lifecycle durations
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	redirectURI := GetEnvWithDefault("FITBIT_REDIRECT_URI", "http://localhost:8000/auth/callback")
	if _, err := url.ParseRequestURI(redirectURI); err != nil {
		return nil, fmt.Errorf("invalid FITBIT_REDIRECT_URI format: %w", err)
	}

	leeway, err := secondsFromEnv("TOKEN_REFRESH_LEEWAY_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	timeout, err := secondsFromEnv("UPSTREAM_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	if timeout == 0 {
		return nil, errors.New("UPSTREAM_TIMEOUT_SECONDS must be positive")
	}

	config := &Config{
		Environment:        GetEnvWithDefault("APP_ENV", "development"),
		Port:               port,
		Host:               GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:           GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBPath:             GetEnvWithDefault("DB_PATH", "./dev.db"),
		DBHost:             GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             GetEnvWithDefault("DB_PORT", "5432"),
		DBName:             GetEnvWithDefault("DB_NAME", "fitbit_gateway"),
		DBUser:             GetEnvWithDefault("DB_USER", "user"),
		DBPassword:         GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:          GetEnvWithDefault("DB_SSLMODE", "disable"),
		LogLevel:           GetEnvWithDefault("LOG_LEVEL", "info"),
		FitbitClientID:     GetEnvWithDefault("FITBIT_CLIENT_ID", "dev"),
		FitbitClientSecret: GetEnvWithDefault("FITBIT_CLIENT_SECRET", "dev"),
		FitbitRedirectURI:  redirectURI,
		FitbitAuthURL:      GetEnvWithDefault("FITBIT_AUTH_URL", DefaultAuthURL),
		FitbitTokenURL:     GetEnvWithDefault("FITBIT_TOKEN_URL", DefaultTokenURL),
		FitbitAPIBase:      GetEnvWithDefault("FITBIT_API_BASE", DefaultAPIBase),
		RefreshLeeway:      leeway,
		UpstreamTimeout:    timeout,
		APIJWTSecret:       GetEnvAsType("API_JWT_SECRET", ""),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// secondsFromEnv reads a non-negative number of seconds.
func secondsFromEnv(key string, defaultSeconds int) (time.Duration, error) {
	raw := GetEnvWithDefault(key, strconv.Itoa(defaultSeconds))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, n)
	}
	return time.Duration(n) * time.Second, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
