package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the TEST_DB_* variables are not set, it returns a SQLite config pointing at dbPath
// so tests can run without an external database
func LoadTestConfig(dbPath string) (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Session.Secret = stringEnv("TEST_SECRET_KEY", "test-secret-key")
	cfg.Session.TTL = time.Hour
	cfg.Session.Store = SessionStoreMemory
	cfg.Session.CleanupSchedule = "@every 1m"
	cfg.AdminCode = stringEnv("TEST_ADMIN_CODE", "letmein")
	cfg.Weather.Timeout = 2 * time.Second
	cfg.Weather.RequestsPerSecond = 100
	cfg.RateLimit.Requests = 10000
	cfg.RateLimit.Window = time.Minute

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		cfg.Database.Driver = DriverSQLite
		cfg.Database.Path = dbPath
		return cfg, nil
	}
	cfg.Database.Driver = DriverMySQL
	cfg.Database.Host = dbHost

	dbPort, err := strconv.Atoi(stringEnv("TEST_DB_PORT", "3306"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort
	cfg.Database.User = stringEnv("TEST_DB_USER", "root")
	cfg.Database.Password = os.Getenv("TEST_DB_PASSWORD")
	cfg.Database.DBName = stringEnv("TEST_DB_NAME", "studentportal_test")

	return cfg, nil
}
