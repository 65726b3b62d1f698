package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"inkpost/internal/logs"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port          string
	Mode          string
	DatabaseURL   string
	DBLogLevel    string
	SessionSecret string
	SiteURL       string

	Storage   string // "local" or "s3"
	MediaRoot string
	MediaURL  string

	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	GoogleClientID     string
	GoogleClientSecret string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logs.Info.Println("No .env file found, reading configuration from environment")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Mode:          getEnv("GIN_MODE", "debug"),
		DatabaseURL:   getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkpost port=5432 sslmode=disable"),
		DBLogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SiteURL:       strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:8080"), "/"),

		Storage:   getEnv("STORAGE", "local"),
		MediaRoot: getEnv("MEDIA_ROOT", "./media"),
		MediaURL:  getEnv("MEDIA_URL", "/media"),

		AWSRegion:          getEnv("AWS_REGION", ""),
		AWSBucket:          getEnv("AWS_BUCKET_NAME", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
	}

	if cfg.SessionSecret == "secret_key_change_me" {
		logs.Warn.Println("SESSION_SECRET not set, using the development default")
	}
	return cfg
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
