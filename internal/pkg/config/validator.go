package config

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the standard 5-field cron syntax plus descriptors
// like @hourly.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ValidateCronSchedule checks that the schedule parses as a cron
// expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("cron schedule is empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone checks that the name resolves as an IANA timezone.
func ValidateTimezone(timezone string) error {
	if timezone == "" {
		return fmt.Errorf("timezone is empty")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidateDuration checks that the duration falls within [min, max].
func ValidateDuration(duration, min, max time.Duration) error {
	if duration < min || duration > max {
		return fmt.Errorf("duration %v out of range [%v, %v]", duration, min, max)
	}
	return nil
}

// ValidatePositiveDuration checks that the duration is greater than zero.
func ValidatePositiveDuration(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("duration %v must be positive", duration)
	}
	return nil
}

// ValidateIntRange checks that the value falls within [min, max].
func ValidateIntRange(value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("value %d out of range [%d, %d]", value, min, max)
	}
	return nil
}
