package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresURL string `env:"POSTGRES_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR,required"`

	IngestServerAddr    string `env:"INGEST_SERVER_ADDR" envDefault:":8080"`
	DashboardServerAddr string `env:"DASHBOARD_SERVER_ADDR" envDefault:":10000"`
	MetricsServerAddr   string `env:"METRICS_SERVER_ADDR" envDefault:":9091"`

	PlatformAPIURL string `env:"PLATFORM_API_URL,required"`
	PlatformToken  string `env:"PLATFORM_TOKEN,required"`

	MaxMessageSize int64 `env:"MAX_MESSAGE_SIZE_BYTES" envDefault:"65536"` // 64KB

	APIKeyCacheTTL time.Duration `env:"API_KEY_CACHE_TTL" envDefault:"5m"`

	PolicyCacheSize int           `env:"POLICY_CACHE_SIZE" envDefault:"1024"`
	PolicyCacheTTL  time.Duration `env:"POLICY_CACHE_TTL" envDefault:"5m"`

	SpamSweepInterval time.Duration `env:"SPAM_SWEEP_INTERVAL" envDefault:"30s"`
	SpamStaleAfter    time.Duration `env:"SPAM_STALE_AFTER" envDefault:"1m"`
	SpamMaxTracked    int           `env:"SPAM_MAX_TRACKED" envDefault:"10000"`

	EnforcementTimeout time.Duration `env:"ENFORCEMENT_TIMEOUT" envDefault:"5s"`

	ReplayDepth       int     `env:"EVENT_REPLAY_DEPTH" envDefault:"100"`
	WebhookRatePerSec float64 `env:"WEBHOOK_RATE_PER_SEC" envDefault:"5"`
	WebhookRateBurst  int     `env:"WEBHOOK_RATE_BURST" envDefault:"10"`

	// Mask emails, phone numbers and IPs in content delivered to webhooks.
	RedactOutbound bool `env:"REDACT_OUTBOUND" envDefault:"true"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
