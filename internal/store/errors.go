package store

import "errors"

var (
	// ErrNotFound means the referenced event does not exist.
	ErrNotFound = errors.New("event not found")
	// ErrUnavailable means the durable backend is unreachable. Distinct from
	// ErrNotFound so callers can retry later instead of treating the miss as
	// permanent.
	ErrUnavailable = errors.New("event store unavailable")
)
