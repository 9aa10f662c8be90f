package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL     string `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
	} `yaml:"smtp"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	RateLimit struct {
		LoginLimit  int    `yaml:"login_limit" env:"RATE_LIMIT_LOGIN"`
		LoginWindow string `yaml:"login_window" env:"RATE_LIMIT_LOGIN_WINDOW"`
	} `yaml:"rate_limit"`

	Notifications struct {
		EmailWorkers     int    `yaml:"email_workers" env:"NOTIFY_EMAIL_WORKERS"`
		EmailQueueSize   int    `yaml:"email_queue_size" env:"NOTIFY_EMAIL_QUEUE_SIZE"`
		EmailMaxAttempts int    `yaml:"email_max_attempts" env:"NOTIFY_EMAIL_MAX_ATTEMPTS"`
		EmailBackoff     string `yaml:"email_backoff" env:"NOTIFY_EMAIL_BACKOFF"`
	} `yaml:"notifications"`

	Reminders struct {
		Enabled   bool   `yaml:"enabled" env:"REMINDERS_ENABLED"`
		Schedule  string `yaml:"schedule" env:"REMINDERS_SCHEDULE"`
		WindowMin int    `yaml:"window_min_days" env:"REMINDERS_WINDOW_MIN_DAYS"`
		WindowMax int    `yaml:"window_max_days" env:"REMINDERS_WINDOW_MAX_DAYS"`
	} `yaml:"reminders"`

	Catalog struct {
		PageSize int `yaml:"page_size" env:"CATALOG_PAGE_SIZE"`
	} `yaml:"catalog"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminName     string `yaml:"admin_name" env:"SEED_ADMIN_NAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory, if present, is loaded first.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Environment always wins over the file
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "internhub"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "internhub.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.From = "no-reply@internhub.app"

	config.RateLimit.LoginLimit = 10
	config.RateLimit.LoginWindow = "1m"

	config.Notifications.EmailWorkers = 2
	config.Notifications.EmailQueueSize = 256
	config.Notifications.EmailMaxAttempts = 3
	config.Notifications.EmailBackoff = "2s"

	config.Reminders.Enabled = true
	config.Reminders.Schedule = "@hourly"
	config.Reminders.WindowMin = 1
	config.Reminders.WindowMax = 3

	config.Catalog.PageSize = 50

	config.Seed.AdminEmail = "admin@internhub.app"
	config.Seed.AdminName = "System Admin"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"login rate limit window":     config.RateLimit.LoginWindow,
		"email retry backoff":         config.Notifications.EmailBackoff,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Notifications.EmailWorkers < 1 {
		return fmt.Errorf("at least one email worker is required")
	}
	if config.Notifications.EmailMaxAttempts < 1 {
		return fmt.Errorf("email max attempts must be positive")
	}
	if config.Reminders.WindowMin < 0 || config.Reminders.WindowMax < config.Reminders.WindowMin {
		return fmt.Errorf("invalid reminder window %d..%d days", config.Reminders.WindowMin, config.Reminders.WindowMax)
	}
	if config.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog page size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// PublicBaseURL returns the externally reachable URL of the API.
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// SMTPEnabled reports whether outgoing mail has credentials configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.Username != "" && c.SMTP.Password != ""
}

// Duration parses a duration value that validateConfig already checked.
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
