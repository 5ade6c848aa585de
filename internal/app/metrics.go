package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"champhelper/internal/config"
	"champhelper/internal/metrics"
	"champhelper/internal/metrics/datadog"
)

// metricsBackend is what InitMetrics needs from a concrete backend.
type metricsBackend interface {
	metrics.Backend
	Close() error
}

// Seams for tests.
var (
	newDatadogBackend = func(ctx context.Context, opts datadog.Options) metricsBackend {
		return datadog.NewBackend(ctx, opts)
	}
	setMetricsBackend = metrics.SetBackend
	logPrintf         = log.Printf
)

// InitMetrics installs the configured metrics backend. The returned cleanup
// is never nil and must be called once before exit; it flushes and closes
// the backend.
func InitMetrics(ctx context.Context, mc config.MetricsConfig) (func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(mc.Backend)) {
	case "", "none", "noop":
		return noop, nil

	case "datadog", "dd":
		b := newDatadogBackend(ctx, datadog.Options{
			JobName:    mc.Job,
			Tags:       mc.Tags,
			FlushEvery: mc.FlushEvery.Duration,
		})
		setMetricsBackend(b)
		return func() {
			if err := b.Close(); err != nil {
				logPrintf("metrics: datadog close error: %v", err)
			}
			setMetricsBackend(nil)
		}, nil

	default:
		return noop, fmt.Errorf("unknown metrics backend %q (want none|datadog)", mc.Backend)
	}
}
