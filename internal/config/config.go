package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Geocoder GeocoderConfig
	Media    MediaConfig
	Matching MatchingConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// GeocoderConfig holds forward-geocoding configuration
type GeocoderConfig struct {
	BaseURL        string
	TimeoutSeconds int
	UserAgent      string
}

// MediaConfig holds evidence file storage configuration
type MediaConfig struct {
	Dir string
}

// MatchingConfig holds volunteer matching configuration
type MatchingConfig struct {
	MaxInProgress int
	// EmptySubscriptionMatchesAll controls whether a volunteer with no
	// category subscriptions sees every category or none.
	EmptySubscriptionMatchesAll bool
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Geocoder: loadGeocoderConfig(),
		Media:    loadMediaConfig(),
		Matching: loadMatchingConfig(),
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "helpbridge"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadGeocoderConfig loads forward-geocoder config
func loadGeocoderConfig() GeocoderConfig {
	timeout, _ := strconv.Atoi(getEnv("GEOCODER_TIMEOUT_SECONDS", "5"))

	return GeocoderConfig{
		BaseURL:        getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		TimeoutSeconds: timeout,
		UserAgent:      getEnv("GEOCODER_USER_AGENT", "helpbridge/1.0"),
	}
}

// loadMediaConfig loads evidence storage config
func loadMediaConfig() MediaConfig {
	return MediaConfig{
		Dir: getEnv("MEDIA_DIR", "./media"),
	}
}

// loadMatchingConfig loads volunteer matching config
func loadMatchingConfig() MatchingConfig {
	maxInProgress, _ := strconv.Atoi(getEnv("MATCH_MAX_IN_PROGRESS", "3"))
	emptyMatchesAll, _ := strconv.ParseBool(getEnv("MATCH_EMPTY_SUBSCRIPTION_ALL", "false"))

	return MatchingConfig{
		MaxInProgress:               maxInProgress,
		EmptySubscriptionMatchesAll: emptyMatchesAll,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
