package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppURL string

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // overrides the individual DB_* pieces when set

	JWTKey    string
	JWTTTL    time.Duration
	SaltRound int

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePrices        map[string]string // plan tier -> price id

	EmailProvider  string // sendgrid, resend, log
	SendGridAPIKey string
	ResendAPIKey   string
	EmailFrom      string
	EmailFromName  string

	UploadDir             string
	WebhookEventRetention time.Duration
}

// Load initializes configuration from a .env file (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:   getEnv("PORT", "3000"),
		AppURL: getEnv("APP_URL", "http://localhost:3000"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "academy"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		SaltRound: getEnvInt("SALT_ROUND", 10),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePrices: map[string]string{
			"STARTER": getEnv("STRIPE_PRICE_STARTER", ""),
			"PRO":     getEnv("STRIPE_PRICE_PRO", ""),
			"TEAM":    getEnv("STRIPE_PRICE_TEAM", ""),
		},

		EmailProvider:  getEnv("EMAIL_PROVIDER", "log"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "onboarding@academy.local"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Kingdom Way Academy"),

		UploadDir:             getEnv("UPLOAD_DIR", "./uploads"),
		WebhookEventRetention: time.Duration(getEnvInt("WEBHOOK_EVENT_RETENTION_DAYS", 30)) * 24 * time.Hour,
	}

	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is empty. Every webhook delivery will be rejected.")
	}

	return cfg
}

// DSN builds the connection string for the configured driver
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
