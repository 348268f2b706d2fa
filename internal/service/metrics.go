package service

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

type dietMetrics struct {
	requests metric.Int64Counter
	failures metric.Int64Counter
	outcomes metric.Int64Counter
	latency  metric.Float64Histogram
}

func newDietMetrics(meter metric.Meter) (*dietMetrics, error) {
	var (
		m   dietMetrics
		err error
	)
	if m.requests, err = meter.Int64Counter("oracle_requests_total",
		metric.WithDescription("Requests sent to the oracle")); err != nil {
		return nil, fmt.Errorf("failed to create oracle_requests_total: %w", err)
	}
	if m.failures, err = meter.Int64Counter("oracle_failures_total",
		metric.WithDescription("Oracle requests that failed in transport")); err != nil {
		return nil, fmt.Errorf("failed to create oracle_failures_total: %w", err)
	}
	if m.outcomes, err = meter.Int64Counter("extraction_outcomes_total",
		metric.WithDescription("Outcome of each diet request by shape")); err != nil {
		return nil, fmt.Errorf("failed to create extraction_outcomes_total: %w", err)
	}
	if m.latency, err = meter.Float64Histogram("oracle_latency_seconds",
		metric.WithDescription("Oracle round-trip time"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create oracle_latency_seconds: %w", err)
	}
	return &m, nil
}
