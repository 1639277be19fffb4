package host

import (
	"log/slog"

	"github.com/lantern-dev/lanternhost/domain/ports"
)

// Option defines a functional option for configuring the Adapter.
type Option func(*Adapter)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics backend. Without it, metrics are dropped.
func WithMetrics(metrics ports.Metrics) Option {
	return func(a *Adapter) {
		a.metrics = metrics
	}
}
