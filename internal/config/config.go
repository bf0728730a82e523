package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingSecretKey = errors.New("PAYSTACK_SECRET_KEY environment variable is not set")

type Config struct {
	Port string `env:"PORT" envDefault:"3333"`

	// PaystackSecretKey is both the API bearer token and the webhook HMAC key.
	PaystackSecretKey   string        `env:"PAYSTACK_SECRET_KEY"`
	PaystackBaseURL     string        `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`
	PaystackHTTPTimeout time.Duration `env:"PAYSTACK_HTTP_TIMEOUT" envDefault:"30s"`

	FirebaseProjectID          string `env:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountJSON string `env:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseCredentialsFile    string `env:"FIREBASE_CREDENTIALS_FILE" envDefault:"./serviceAccountKey.json"`

	// DatabaseURL enables the payment event ledger when set.
	DatabaseURL string `env:"DATABASE_URL"`

	// PushNotifications sends an FCM notice when a webhook activates a subscription.
	PushNotifications bool `env:"PUSH_NOTIFICATIONS_ENABLED" envDefault:"false"`

	MetricsUser string `env:"METRICS_USER"`
	MetricsPass string `env:"METRICS_PASS"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"30"`

	// Set only behind a proxy that appends the peer to X-Forwarded-For.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads .env (if present) and the process environment into a Config and
// validates it. A missing Paystack secret is a startup error.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	c.PaystackSecretKey = strings.TrimSpace(c.PaystackSecretKey)
	if c.PaystackSecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive: rps=%v burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}
