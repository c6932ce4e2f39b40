package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// HardMaxRows 是单次请求的行数上限，配置只能调低不能调高。
const HardMaxRows = 1000

type Config struct {
	// ----------------------------
	// SMTP
	// ----------------------------
	SMTPServer   string `envconfig:"SMTP_SERVER" default:""`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"0"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASS" default:""`
	MailFrom     string `envconfig:"MAIL_FROM" default:""`

	// ----------------------------
	// Email dispatch
	// ----------------------------
	EmailRateLimit     float64       `envconfig:"EMAIL_RATE_LIMIT" default:"5"`
	EmailRetryAttempts int           `envconfig:"EMAIL_RETRY_ATTEMPTS" default:"2"`
	EmailJobTTL        time.Duration `envconfig:"EMAIL_JOB_TTL" default:"30m"`
	EmailJobSweep      time.Duration `envconfig:"EMAIL_JOB_SWEEP" default:"1m"`
	EmailMaxJobs       int           `envconfig:"EMAIL_MAX_JOBS" default:"100"`

	// ----------------------------
	// Generation
	// ----------------------------
	MaxRows int    `envconfig:"MAX_ROWS" default:"1000"`
	FontDir string `envconfig:"FONT_DIR" default:""`

	// ----------------------------
	// HTTP API
	// ----------------------------
	Port         string `envconfig:"PORT" default:"4000"`
	MaxBodyBytes int64  `envconfig:"MAX_BODY_BYTES" default:"26214400"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
}

func Load() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if cfg.MaxRows <= 0 || cfg.MaxRows > HardMaxRows {
		cfg.MaxRows = HardMaxRows
	}
	return &cfg, err
}

// EmailConfigured reports whether server, port and sender address are all set.
func (c *Config) EmailConfigured() bool {
	return c.SMTPServer != "" && c.SMTPPort > 0 && c.MailFrom != ""
}
