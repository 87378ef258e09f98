package returnstatusnotify

import (
	"fmt"
	"time"

	"return-notifier/internal/common/config"
)

type Config struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxJobsActive    int           `mapstructure:"max_jobs_active"`
	Timeout          time.Duration `mapstructure:"timeout"`
	EmailEnabled     bool          `mapstructure:"email_enabled"`
	SMSEnabled       bool          `mapstructure:"sms_enabled"`
	Parallel         bool          `mapstructure:"parallel"`
	MaxParallelSends int           `mapstructure:"max_parallel_sends"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		MaxJobsActive:    5,
		Timeout:          30 * time.Second,
		EmailEnabled:     true,
		SMSEnabled:       true,
		Parallel:         true,
		MaxParallelSends: 4,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxParallelSends <= 0 {
		return fmt.Errorf("max_parallel_sends must be positive")
	}
	return nil
}

// createConfigFromAppConfig builds the worker config from the application
// config. A custom config, when given, wins.
func createConfigFromAppConfig(appCfg *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}

	cfg := DefaultConfig()
	if appCfg == nil {
		return cfg
	}

	wc := config.GetWorkerConfig(appCfg, TaskType)
	cfg.Enabled = wc.Enabled
	cfg.MaxJobsActive = wc.MaxJobsActive
	cfg.Timeout = config.GetDuration(wc.Timeout)

	n := appCfg.Notifications
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SMSEnabled = n.SMS.Enabled
	cfg.Parallel = n.Dispatch.Parallel
	if n.Dispatch.MaxParallelSends > 0 {
		cfg.MaxParallelSends = n.Dispatch.MaxParallelSends
	}
	return cfg
}
