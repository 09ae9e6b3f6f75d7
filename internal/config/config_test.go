package config

import (
	"strings"
	"testing"
)

func TestConfigLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("SITE_URL", "https://courses.example.com/")
	t.Setenv("CHECKOUT_CURRENCY", "INR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseURL != "postgres://test" {
		t.Errorf("Expected DatabaseURL 'postgres://test', got '%s'", cfg.DatabaseURL)
	}

	if cfg.SiteURL != "https://courses.example.com" {
		t.Errorf("Expected trailing slash trimmed, got '%s'", cfg.SiteURL)
	}

	if cfg.LoginURL != "https://courses.example.com/login" {
		t.Errorf("Expected default LoginURL derived from SiteURL, got '%s'", cfg.LoginURL)
	}

	if cfg.Currency != "inr" {
		t.Errorf("Expected lower-cased currency 'inr', got '%s'", cfg.Currency)
	}

	if cfg.RateLimit != 10 {
		t.Errorf("Expected default RateLimit 10, got %d", cfg.RateLimit)
	}
}

func TestConfigValidation(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:   Development,
			DatabaseURL:   "postgres://test",
			AuthJWTSecret: "secret",
			RateLimit:     10,
		}
	}

	fullyConfigured := func() *Config {
		c := base()
		c.Environment = Production
		c.StripeSecretKey = "sk_test"
		c.StripeWebhookSecret = "whsec_test"
		c.RazorpayKeyID = "rzp_test"
		c.RazorpayKeySecret = "rzp_secret"
		c.RazorpayWebhookSecret = "rzp_whsec"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		build   func() *Config
		wantErr string
	}{
		{
			name:  "Valid config",
			build: base,
		},
		{
			name:    "Missing database URL",
			build:   base,
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "Missing JWT secret",
			build:   base,
			mutate:  func(c *Config) { c.AuthJWTSecret = "" },
			wantErr: "AUTH_JWT_SECRET",
		},
		{
			name:    "Stripe key without webhook secret",
			build:   base,
			mutate:  func(c *Config) { c.StripeSecretKey = "sk_test" },
			wantErr: "Stripe",
		},
		{
			name:    "Razorpay key id without secret",
			build:   base,
			mutate:  func(c *Config) { c.RazorpayKeyID = "rzp_test" },
			wantErr: "Razorpay",
		},
		{
			name:  "Production fully configured",
			build: fullyConfigured,
		},
		{
			name:    "Production missing webhook secret",
			build:   fullyConfigured,
			mutate:  func(c *Config) { c.RazorpayWebhookSecret = "" },
			wantErr: "RAZORPAY_WEBHOOK_SECRET",
		},
		{
			name:   "Two-decimal currency",
			build:  base,
			mutate: func(c *Config) { c.Currency = "inr" },
		},
		{
			name:    "Zero-decimal currency",
			build:   base,
			mutate:  func(c *Config) { c.Currency = "jpy" },
			wantErr: "CHECKOUT_CURRENCY",
		},
		{
			name:    "Three-decimal currency",
			build:   base,
			mutate:  func(c *Config) { c.Currency = "kwd" },
			wantErr: "CHECKOUT_CURRENCY",
		},
		{
			name:    "Incomplete SMTP config",
			build:   base,
			mutate:  func(c *Config) { c.SMTPHost = "smtp.gmail.com" },
			wantErr: "SMTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.build()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := &Config{Environment: Development}
	if !cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment() to be true")
	}
	if cfg.IsProduction() {
		t.Error("Expected IsProduction() to be false")
	}

	cfg.Environment = Production
	if cfg.IsDevelopment() {
		t.Error("Expected IsDevelopment() to be false")
	}
	if !cfg.IsProduction() {
		t.Error("Expected IsProduction() to be true")
	}
}
