package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

type Config struct {
	Environment Environment
	Port        string
	SiteURL     string
	LoginURL    string
	LogLevel    string

	DatabaseURL string
	RedisURL    string

	AuthJWTSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	RateLimit int

	Currency              string
	StripeSecretKey       string
	StripeWebhookSecret   string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	ReconcileSchedule string
}

func Load() (*Config, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if env != "production" {
		if err := godotenv.Load(); err != nil {
			// .env is optional; the process environment is authoritative.
			_ = godotenv.Load("../../.env")
		}
	}

	siteURL := strings.TrimSuffix(getEnv("SITE_URL", "http://localhost:3000"), "/")

	cfg := &Config{
		Environment: Environment(env),
		Port:        getEnv("PORT", "8080"),
		SiteURL:     siteURL,
		LoginURL:    getEnv("LOGIN_URL", siteURL+"/login"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		AuthJWTSecret: getEnv("AUTH_JWT_SECRET", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@courses.local"),
		FromName:     getEnv("FROM_NAME", "Courses"),

		RateLimit: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),

		// Must be a two-decimal currency; see Validate.
		Currency:              strings.ToLower(getEnv("CHECKOUT_CURRENCY", "usd")),
		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),

		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "0 */15 * * * *"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Currencies whose minor unit is not 1/100. Course prices are minor units with
// two decimals, so these would be charged and displayed wrongly.
var nonDecimalCurrencies = map[string]struct{}{
	"bif": {}, "clp": {}, "djf": {}, "gnf": {}, "jpy": {}, "kmf": {}, "krw": {}, "mga": {},
	"pyg": {}, "rwf": {}, "ugx": {}, "vnd": {}, "vuv": {}, "xaf": {}, "xof": {}, "xpf": {},
	"bhd": {}, "jod": {}, "kwd": {}, "omr": {}, "tnd": {},
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.AuthJWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}

	if _, ok := nonDecimalCurrencies[c.Currency]; ok {
		return fmt.Errorf("CHECKOUT_CURRENCY %q is not supported: prices are stored and displayed with two decimal places", c.Currency)
	}

	if (c.StripeSecretKey == "") != (c.StripeWebhookSecret == "") {
		return fmt.Errorf("incomplete Stripe configuration: STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET must be set together")
	}

	if (c.RazorpayKeyID == "") != (c.RazorpayKeySecret == "") {
		return fmt.Errorf("incomplete Razorpay configuration: RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")
	}

	if c.IsProduction() {
		missing := []string{}
		for name, value := range map[string]string{
			"STRIPE_SECRET_KEY":       c.StripeSecretKey,
			"STRIPE_WEBHOOK_SECRET":   c.StripeWebhookSecret,
			"RAZORPAY_KEY_ID":         c.RazorpayKeyID,
			"RAZORPAY_KEY_SECRET":     c.RazorpayKeySecret,
			"RAZORPAY_WEBHOOK_SECRET": c.RazorpayWebhookSecret,
		} {
			if value == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("payment secrets required in production: %s", strings.Join(missing, ", "))
		}
	}

	if c.SMTPHost != "" || c.SMTPUsername != "" || c.SMTPPassword != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("incomplete SMTP configuration: all SMTP fields must be set")
		}
	}

	return nil
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

func (c *Config) IsStaging() bool {
	return c.Environment == Staging
}

func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
