package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort string `yaml:"server_port"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	JWTSecret        string `yaml:"jwt_secret"`
	JWTExpiryMinutes int    `yaml:"jwt_expiry_minutes"`

	// Base URL of the ledger service, used by the transfer service only.
	LedgerBaseURL string `yaml:"ledger_base_url"`
}

// Load reads configuration from the environment, with an optional YAML file
// (CONFIG_FILE) applied first so env vars win.
func Load() *Config {
	cfg := &Config{
		ServerPort:       "8080",
		DBHost:           "localhost",
		DBPort:           "5432",
		DBUser:           "postgres",
		DBPassword:       "password",
		DBName:           "bank_ledger",
		DBSSLMode:        "disable",
		JWTSecret:        "dev-secret-change-me",
		JWTExpiryMinutes: 60,
		LedgerBaseURL:    "http://localhost:8080",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
		}
	}

	overlayEnv(&cfg.ServerPort, "SERVER_PORT")
	overlayEnv(&cfg.DBHost, "DB_HOST")
	overlayEnv(&cfg.DBPort, "DB_PORT")
	overlayEnv(&cfg.DBUser, "DB_USER")
	overlayEnv(&cfg.DBPassword, "DB_PASSWORD")
	overlayEnv(&cfg.DBName, "DB_NAME")
	overlayEnv(&cfg.DBSSLMode, "DB_SSLMODE")
	overlayEnv(&cfg.JWTSecret, "JWT_SECRET")
	overlayEnv(&cfg.LedgerBaseURL, "LEDGER_BASE_URL")

	if v := os.Getenv("JWT_EXPIRY_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.JWTExpiryMinutes = minutes
		}
	}

	return cfg
}

func overlayEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryMinutes) * time.Minute
}
