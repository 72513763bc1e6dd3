package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics records per-operation counters and latencies, either in Prometheus
// collectors or in a CloudWatch sink. Methods are no-ops on a nil receiver.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	cloudwatch *CloudWatchSink
}

// NewCloudWatchMetrics records operations into sink. Callers flush it.
func NewCloudWatchMetrics(sink *CloudWatchSink) *Metrics {
	return &Metrics{cloudwatch: sink}
}

// NewMetrics registers the user operation collectors with reg
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_operations_total",
			Help:      "User gateway operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "user_operation_duration_seconds",
			Help:      "User gateway operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveOperation records one finished operation
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	elapsed := time.Since(start)

	if m.cloudwatch != nil {
		m.cloudwatch.record(operation, outcome, elapsed)
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Flush pushes buffered datums to CloudWatch. Prometheus metrics are pulled,
// so there is nothing to flush for them.
func (m *Metrics) Flush(ctx context.Context) error {
	if m == nil || m.cloudwatch == nil {
		return nil
	}
	return m.cloudwatch.Flush(ctx)
}

// FlushEvery flushes on every tick until ctx is done, reporting failures to
// onError. Long-running processes use it with the CloudWatch sink.
func (m *Metrics) FlushEvery(ctx context.Context, interval time.Duration, onError func(error)) {
	if m == nil || m.cloudwatch == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Flush(ctx); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
