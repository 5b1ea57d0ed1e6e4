package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		BaseURL        string   `yaml:"base_url" env:"SERVER_BASE_URL"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		SchoolName     string   `yaml:"school_name" env:"SERVER_SCHOOL_NAME"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
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
	} `yaml:"database"`

	Session struct {
		Expiration    string `yaml:"expiration" env:"SESSION_EXPIRATION"`
		CookieName    string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		CookieSecure  bool   `yaml:"cookie_secure" env:"SESSION_COOKIE_SECURE"`
		SweepInterval string `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL"`
	} `yaml:"session"`

	OTP struct {
		TTL            string `yaml:"ttl" env:"OTP_TTL"`
		ResendCooldown string `yaml:"resend_cooldown" env:"OTP_RESEND_COOLDOWN"`
		MaxAttempts    int    `yaml:"max_attempts" env:"OTP_MAX_ATTEMPTS"`
	} `yaml:"otp"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	Webhook struct {
		URL       string `yaml:"url" env:"WEBHOOK_URL"`
		QueueSize int    `yaml:"queue_size" env:"WEBHOOK_QUEUE_SIZE"`
	} `yaml:"webhook"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// A .env file is optional; ignore the error when it is absent
	_ = godotenv.Load()

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

	// Override with environment variables
	if err := processStructFields(config); err != nil {
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
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.StoragePath = "uploads"
	config.Server.SchoolName = "Student Bank"
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "studentbank"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Session.Expiration = "168h"
	config.Session.CookieName = "auth_token"
	config.Session.SweepInterval = "1h"

	config.OTP.TTL = "5m"
	config.OTP.ResendCooldown = "60s"
	config.OTP.MaxAttempts = 5

	config.Webhook.QueueSize = 64

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	for _, d := range []struct {
		name  string
		value string
	}{
		{"session expiration", config.Session.Expiration},
		{"session sweep interval", config.Session.SweepInterval},
		{"otp ttl", config.OTP.TTL},
		{"otp resend cooldown", config.OTP.ResendCooldown},
		{"database conn max lifetime", config.Database.ConnMaxLifetime},
	} {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s format: %w", d.name, err)
		}
	}

	if config.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("otp max attempts must be positive")
	}

	return nil
}

// SessionExpiration returns the parsed session lifetime
func (c *Config) SessionExpiration() time.Duration {
	d, _ := time.ParseDuration(c.Session.Expiration)
	return d
}

// SessionSweepInterval returns the parsed expiry sweep interval
func (c *Config) SessionSweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.Session.SweepInterval)
	return d
}

// OTPTTL returns the parsed one-time code lifetime
func (c *Config) OTPTTL() time.Duration {
	d, _ := time.ParseDuration(c.OTP.TTL)
	return d
}

// OTPResendCooldown returns the parsed cooldown between code requests
func (c *Config) OTPResendCooldown() time.Duration {
	d, _ := time.ParseDuration(c.OTP.ResendCooldown)
	return d
}

// GetPostgresConnectionString returns the postgres connection string
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
