package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database config
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string // SQLite database file path

	// Auth config
	JWTSecret      string
	JWTExpiryHours int

	// App config
	Environment string

	// Firewall config
	RateLimitCapacity  int  // requests allowed per window, per IP
	RateLimitWindowSec int  // window length in seconds
	WAFFailClosed      bool // block traffic when the decision engine is unreachable

	// Geo enrichment config
	GeoAPIBaseURL string
	GeoTimeoutSec int

	// Admin seed config
	AdminEmail    string
	AdminPassword string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set default database driver to PostgreSQL
	dbDriver := getEnv("DB_DRIVER", "postgres")

	AppConfig = Config{
		DBDriver:           dbDriver,
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "digitaltwin"),
		DBPath:             getEnv("DB_PATH", "./digitaltwin.db"), // Default SQLite database path
		JWTSecret:          getEnv("JWT_SECRET", "digitaltwin_default_secret_key"),
		JWTExpiryHours:     getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		Environment:        getEnv("ENVIRONMENT", "development"),
		RateLimitCapacity:  getEnvAsInt("RATE_LIMIT_CAPACITY", 50),
		RateLimitWindowSec: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 10),
		WAFFailClosed:      getEnvAsBool("WAF_FAIL_CLOSED", false),
		GeoAPIBaseURL:      getEnv("GEO_API_BASE_URL", "http://ip-api.com/json"),
		GeoTimeoutSec:      getEnvAsInt("GEO_TIMEOUT_SECONDS", 3),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@digitaltwin.dev"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
	}
}

// Helper function to get environment variable with fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get integer environment variable with fallback
func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// Helper function to get boolean environment variable with fallback
func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// GetJWTExpiration returns JWT expiration time
func GetJWTExpiration() time.Duration {
	return time.Duration(AppConfig.JWTExpiryHours) * time.Hour
}

// GetRateLimitWindow returns the per-IP rate limiter window length
func GetRateLimitWindow() time.Duration {
	return time.Duration(AppConfig.RateLimitWindowSec) * time.Second
}

// GetGeoTimeout returns the geolocation lookup timeout
func GetGeoTimeout() time.Duration {
	return time.Duration(AppConfig.GeoTimeoutSec) * time.Second
}

// IsDevelopment returns true if the application is running in development mode
func IsDevelopment() bool {
	return AppConfig.Environment == "development"
}
