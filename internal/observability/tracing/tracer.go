// Package tracing provides the OpenTelemetry tracer and HTTP middleware
// for the api server.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tubefeed")

// GetTracer returns the process-wide tracer for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}
