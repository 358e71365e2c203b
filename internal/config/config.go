package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// Builds API
	BuildsAPIURL string        `env:"BUILDS_API_URL" envDefault:"https://discord.sale/api/builds"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Build cache; Redis is used when REDIS_URL is set
	RedisURL      string        `env:"REDIS_URL"`
	BuildCacheTTL time.Duration `env:"BUILD_CACHE_TTL" envDefault:"10m"`

	// Browsing sessions
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionSweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 1m"`

	// Usage log
	UsageLogPath        string `env:"USAGE_LOG_PATH" envDefault:"logs/usage.jsonl"`
	DailyReportSchedule string `env:"DAILY_REPORT_SCHEDULE" envDefault:"0 21 * * *"`

	// Formatting; pages are rendered as legacy Telegram Markdown only
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"Markdown"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.MessageParseMode != "Markdown" {
		return nil, fmt.Errorf("unsupported MESSAGE_PARSE_MODE %q: only Markdown is supported", cfg.MessageParseMode)
	}
	return cfg, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		logrus.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
