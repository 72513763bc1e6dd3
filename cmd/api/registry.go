package main

import (
	"time"

	"users-backend/infrastructure/config"
	"users-backend/infrastructure/di"

	"github.com/prometheus/client_golang/prometheus"
)

// CloudWatch standard resolution is one minute
const metricsFlushInterval = time.Minute

// metricsRegistry returns the registry to expose, or nil when metrics are off
// or pushed to CloudWatch
func metricsRegistry(c *di.Container) *prometheus.Registry {
	if c.Metrics == nil || c.Config.MetricsSink != config.MetricsSinkPrometheus {
		return nil
	}
	return c.Registry
}
