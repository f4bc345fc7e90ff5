package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"tubefeed/internal/handler/http/requestid"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		envValue string
		want     slog.Level
	}{
		{envValue: "", want: slog.LevelInfo},
		{envValue: "debug", want: slog.LevelDebug},
		{envValue: "warn", want: slog.LevelWarn},
		{envValue: "error", want: slog.LevelError},
		{envValue: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("LOG_LEVEL="+tt.envValue, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envValue)
			assert.Equal(t, tt.want, levelFromEnv())
		})
	}
}

func TestWithRequestID(t *testing.T) {
	logger := slog.Default()

	// Context without an id returns the logger unchanged.
	assert.Same(t, logger, WithRequestID(context.Background(), logger))

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	assert.NotSame(t, logger, WithRequestID(ctx, logger))
}

func TestLoggerContext(t *testing.T) {
	logger := NewTextLogger()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
