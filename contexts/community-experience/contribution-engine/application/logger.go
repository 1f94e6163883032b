package application

import (
	"log/slog"

	"paperportal/contexts/community-experience/contribution-engine/ports"
)

// ResolveLogger guarantees a non-nil logger for application/worker code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// ResolveMetrics guarantees a non-nil metrics sink.
func ResolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics == nil {
		return nopMetrics{}
	}
	return metrics
}

type nopMetrics struct{}

func (nopMetrics) EventRecorded(string)          {}
func (nopMetrics) VersionConflict()              {}
func (nopMetrics) RecalculationCompleted(string) {}
func (nopMetrics) OutboxPublished()              {}
