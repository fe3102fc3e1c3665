package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read once at startup.
type Config struct {
	HTTPAddr      string `env:"AUTOUPGRADER_HTTP_ADDR" envDefault:":8080"`
	DBDSN         string `env:"AUTOUPGRADER_DB_DSN"`
	MigrationsDir string `env:"AUTOUPGRADER_MIGRATIONS_DIR" envDefault:"db/migrations"`
	ProfileID     string `env:"AUTOUPGRADER_PROFILE_ID" envDefault:"default"`
	PolicyFile    string `env:"AUTOUPGRADER_POLICY_FILE"`
	SeedFile      string `env:"AUTOUPGRADER_SEED_FILE"`
	OTELEndpoint  string `env:"AUTOUPGRADER_OTEL_ENDPOINT"`

	PollInterval        time.Duration `env:"AUTOUPGRADER_POLL_INTERVAL" envDefault:"150ms"`
	OpenPollAttempts    int           `env:"AUTOUPGRADER_OPEN_POLL_ATTEMPTS" envDefault:"20"`
	ConfirmPollAttempts int           `env:"AUTOUPGRADER_CONFIRM_POLL_ATTEMPTS" envDefault:"40"`
	SettleDelay         time.Duration `env:"AUTOUPGRADER_SETTLE_DELAY" envDefault:"200ms"`
	Cooldown            time.Duration `env:"AUTOUPGRADER_COOLDOWN" envDefault:"300ms"`
	MaxFodder           int           `env:"AUTOUPGRADER_MAX_FODDER" envDefault:"3"`
	NotificationBuffer  int           `env:"AUTOUPGRADER_NOTIFICATION_BUFFER" envDefault:"100"`

	SimRenderDelay time.Duration `env:"AUTOUPGRADER_SIM_RENDER_DELAY" envDefault:"300ms"`
	SimResultDelay time.Duration `env:"AUTOUPGRADER_SIM_RESULT_DELAY" envDefault:"400ms"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("AUTOUPGRADER_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.OpenPollAttempts < 1 || c.ConfirmPollAttempts < 1 {
		return fmt.Errorf("poll attempts must be at least 1, got open=%d confirm=%d", c.OpenPollAttempts, c.ConfirmPollAttempts)
	}
	if c.MaxFodder < 1 {
		return fmt.Errorf("AUTOUPGRADER_MAX_FODDER must be at least 1, got %d", c.MaxFodder)
	}
	if c.SettleDelay < 0 || c.Cooldown < 0 || c.SimRenderDelay < 0 || c.SimResultDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
