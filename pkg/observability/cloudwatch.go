package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// PutMetricData accepts at most this many datums per request
const maxDatumsPerRequest = 1000

// CloudWatchAPI is the part of the CloudWatch client the sink needs
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink buffers operation datums until Flush. Lambda freezes the
// process between invocations, so nothing is sent in the background.
type CloudWatchSink struct {
	namespace string
	client    CloudWatchAPI

	mu      sync.Mutex
	pending []types.MetricDatum
	now     func() time.Time
}

// NewCloudWatchSink creates a sink publishing under namespace
func NewCloudWatchSink(namespace string, client CloudWatchAPI) *CloudWatchSink {
	return &CloudWatchSink{
		namespace: namespace,
		client:    client,
		now:       time.Now,
	}
}

func (s *CloudWatchSink) record(operation, outcome string, latency time.Duration) {
	ts := aws.Time(s.now())
	datums := []types.MetricDatum{
		{
			MetricName: aws.String("OperationCount"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Operation"), Value: aws.String(operation)},
				{Name: aws.String("Outcome"), Value: aws.String(outcome)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: ts,
		},
		{
			MetricName: aws.String("OperationLatency"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Operation"), Value: aws.String(operation)},
			},
			Value:     aws.Float64(float64(latency.Microseconds()) / 1000),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: ts,
		},
	}

	s.mu.Lock()
	s.pending = append(s.pending, datums...)
	s.mu.Unlock()
}

// Flush sends everything buffered so far. A failed batch is dropped along
// with the batches after it.
func (s *CloudWatchSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	for start := 0; start < len(batch); start += maxDatumsPerRequest {
		end := min(start+maxDatumsPerRequest, len(batch))
		_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(s.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			return fmt.Errorf("failed to put %d metric datums: %w", len(batch)-start, err)
		}
	}
	return nil
}

// Pending reports how many datums wait for the next Flush
func (s *CloudWatchSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
