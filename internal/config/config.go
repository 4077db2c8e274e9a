// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Supported session stores
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Metrics   MetricsConfig
	Logging   LoggingConfig
	Session   SessionConfig
	Weather   WeatherConfig
	RateLimit RateLimitConfig
	AdminCode string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Path     string // sqlite only
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// MetricsConfig holds settings for the separate metrics listener
type MetricsConfig struct {
	Port int // 0 disables the listener
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// SessionConfig holds session cookie and store settings
type SessionConfig struct {
	Secret          string
	TTL             time.Duration
	CookieSecure    bool
	Store           string
	CleanupSchedule string
}

// WeatherConfig holds settings for the geocoding and forecast services
type WeatherConfig struct {
	GeocodingURL      string
	ForecastURL       string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// RateLimitConfig holds inbound rate limit settings
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	if err := loadDatabase(cfg); err != nil {
		return nil, err
	}

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Metrics listener
	if cfg.Metrics.Port, err = intEnv("METRICS_PORT", 9090); err != nil {
		return nil, err
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port == cfg.Server.Port {
		return nil, fmt.Errorf("invalid METRICS_PORT: %d", cfg.Metrics.Port)
	}

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// Session configuration
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	cfg.Session.Secret = secret

	ttl, err := durationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	cfg.Session.TTL = ttl

	secure, err := boolEnv("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	cfg.Session.CookieSecure = secure

	cfg.Session.Store = stringEnv("SESSION_STORE", SessionStoreMemory)
	if cfg.Session.Store != SessionStoreMemory && cfg.Session.Store != SessionStoreRedis {
		return nil, fmt.Errorf("invalid SESSION_STORE: %q", cfg.Session.Store)
	}
	cfg.Session.CleanupSchedule = stringEnv("SESSION_CLEANUP_SCHEDULE", "@every 10m")

	// Redis configuration (only used by the redis session store)
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// Shared secret granting the admin role at registration; empty disables it
	cfg.AdminCode = os.Getenv("ADMIN_CODE")

	// Weather services
	cfg.Weather.GeocodingURL = stringEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	cfg.Weather.ForecastURL = stringEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	if cfg.Weather.Timeout, err = durationEnv("WEATHER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	rps := stringEnv("WEATHER_RATE_PER_SECOND", "5")
	cfg.Weather.RequestsPerSecond, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.Weather.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("invalid WEATHER_RATE_PER_SECOND: %q", rps)
	}

	// Inbound rate limit
	if cfg.RateLimit.Requests, err = intEnv("RATE_LIMIT_REQUESTS", 100); err != nil {
		return nil, err
	}
	cfg.RateLimit.Window = time.Minute

	return cfg, nil
}

// loadDatabase fills the database section; mysql settings are mandatory for the mysql driver
func loadDatabase(cfg *Config) error {
	cfg.Database.Driver = stringEnv("DB_DRIVER", DriverMySQL)

	switch cfg.Database.Driver {
	case DriverSQLite:
		cfg.Database.Path = stringEnv("DB_PATH", "studentportal.db")
		return nil
	case DriverMySQL:
	default:
		return fmt.Errorf("invalid DB_DRIVER: %q", cfg.Database.Driver)
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	return nil
}

// DSN returns the database connection string for the configured driver
func (c *Config) DSN() string {
	if c.Database.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.Database.Path)
	}
	if c.Database.Host == "" {
		return ""
	}
	// clientFoundRows makes UPDATE report matched rows, so an unchanged row is not mistaken for a missing one
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
