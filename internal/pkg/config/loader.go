// Package config loads configuration values from environment variables
// with validation and fail-open fallback: an invalid value never stops a
// component from starting, it falls back to the default and reports a
// warning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result is the outcome of loading one configuration value. When
// FallbackApplied is set, Value holds the default and Warnings explains
// what was rejected.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// String loads a plain string value without validation.
func String(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// load parses and validates an environment variable, falling back to the
// default on any failure.
func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := os.Getenv(envKey)
	if raw == "" {
		return Result[T]{Value: defaultValue}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return Result[T]{
			Value:           defaultValue,
			FallbackApplied: true,
			Warnings: []string{fmt.Sprintf(
				"%s=%q rejected (%v), using default %v", envKey, raw, err, defaultValue)},
		}
	}
	return Result[T]{Value: value}
}

// Validated loads a string value checked by the given validator.
func Validated(envKey, defaultValue string, validate func(string) error) Result[string] {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validate)
}

// Duration loads a time.Duration value in time.ParseDuration syntax.
func Duration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return load(envKey, defaultValue, time.ParseDuration, validate)
}

// Int loads an integer value.
func Int(envKey string, defaultValue int, validate func(int) error) Result[int] {
	return load(envKey, defaultValue, strconv.Atoi, validate)
}

// Bool loads a boolean value in strconv.ParseBool syntax.
func Bool(envKey string, defaultValue bool) Result[bool] {
	return load(envKey, defaultValue, strconv.ParseBool, nil)
}
