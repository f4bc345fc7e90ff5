// Package worker holds the runtime pieces of the scheduled fetch
// worker: its configuration, health endpoints, and metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"tubefeed/internal/pkg/config"
)

// Config controls the fetch worker: when the scheduled run fires, how
// long it may take, and where the health server listens.
type Config struct {
	// CronSchedule is the 5-field cron expression for the periodic
	// fetch of all sources.
	CronSchedule string

	// Timezone is the IANA timezone the cron schedule is evaluated in.
	Timezone string

	// FetchTimeout caps a single run over all sources. After it the
	// run's context is canceled and in-flight sources report a
	// cancellation.
	FetchTimeout time.Duration

	// NotifyMaxConcurrent caps concurrent notification deliveries.
	NotifyMaxConcurrent int

	// HealthPort is the port for the worker's health check server.
	HealthPort int
}

// DefaultConfig returns production defaults: an hourly fetch with a
// generous timeout, since resolving media for a large playlist can take
// most of an hour on its own.
func DefaultConfig() Config {
	return Config{
		CronSchedule:        "30 * * * *",
		Timezone:            "UTC",
		FetchTimeout:        2 * time.Hour,
		NotifyMaxConcurrent: 10,
		HealthPort:          9091,
	}
}

// Validate checks every field and reports all violations together.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.FetchTimeout, time.Minute, 8*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("fetch timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration fail-open: an invalid
// value falls back to its default with a warning and a metrics bump, so
// a typo in an environment variable never keeps the worker down.
//
// Environment variables:
//   - FETCH_CRON_SCHEDULE
//   - WORKER_TIMEZONE
//   - FETCH_TIMEOUT
//   - NOTIFY_MAX_CONCURRENT
//   - WORKER_HEALTH_PORT
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	cfg := DefaultConfig()
	fallbackApplied := false

	note := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordConfigFallback(field)
		for _, warning := range warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	schedule := config.Validated("FETCH_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = schedule.Value
	if schedule.FallbackApplied {
		note("cron_schedule", schedule.Warnings)
	}

	timezone := config.Validated("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = timezone.Value
	if timezone.FallbackApplied {
		note("timezone", timezone.Warnings)
	}

	timeout := config.Duration("FETCH_TIMEOUT", cfg.FetchTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, time.Minute, 8*time.Hour)
	})
	cfg.FetchTimeout = timeout.Value
	if timeout.FallbackApplied {
		note("fetch_timeout", timeout.Warnings)
	}

	concurrent := config.Int("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
		return config.ValidateIntRange(v, 1, 50)
	})
	cfg.NotifyMaxConcurrent = concurrent.Value
	if concurrent.FallbackApplied {
		note("notify_max_concurrent", concurrent.Warnings)
	}

	port := config.Int("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = port.Value
	if port.FallbackApplied {
		note("health_port", port.Warnings)
	}

	metrics.SetConfigFallbackActive(fallbackApplied)
	metrics.RecordConfigLoad()
	return cfg
}
