// Package postgres implements the repository interfaces on top of
// PostgreSQL via database/sql and lib/pq.
package postgres

import (
	"errors"
	"time"

	"tubefeed/internal/observability/metrics"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// observeQuery records query latency under a stable operation label.
// Call as: defer observeQuery("source_get", time.Now()).
func observeQuery(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
