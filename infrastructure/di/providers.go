package di

import (
	"context"
	"fmt"

	"users-backend/application/ports"
	"users-backend/application/services"
	"users-backend/infrastructure/config"
	"users-backend/infrastructure/persistence/dynamodb"
	"users-backend/infrastructure/storage/gcs"
	s3store "users-backend/infrastructure/storage/s3"
	"users-backend/pkg/auth"
	"users-backend/pkg/observability"
	"users-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "users-backend"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build(zap.Fields(
		zap.String("service", serviceName),
		zap.String("environment", cfg.Environment),
	))
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideS3Client creates an S3 client. Custom endpoints (local stacks) use
// path-style addressing.
func ProvideS3Client(awsCfg aws.Config, cfg *config.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
}

// ProvideUserRepository creates the user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return dynamodb.NewUserRepository(
		client,
		cfg.UsersTable,
		cfg.UsersEmailIndex,
		logger,
	)
}

// ProvideBlobStore creates the blob store selected by BLOB_PROVIDER. The
// cleanup closes the Cloud Storage client; the S3 client holds nothing open.
func ProvideBlobStore(ctx context.Context, cfg *config.Config, s3Client *awss3.Client, logger *zap.Logger) (ports.BlobStore, func(), error) {
	switch cfg.BlobProvider {
	case config.BlobProviderGCS:
		client, err := gcs.NewClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close storage client", zap.Error(err))
			}
		}
		return gcs.NewBlobStore(client, logger), cleanup, nil
	case config.BlobProviderS3:
		return s3store.NewBlobStore(s3Client, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown blob provider %q", cfg.BlobProvider)
	}
}

// ProvideIDGenerator creates the identifier generator
func ProvideIDGenerator() ports.IDGenerator {
	return utils.UUIDGenerator{}
}

// ProvideSecretHasher creates the bcrypt secret hasher
func ProvideSecretHasher(cfg *config.Config) ports.SecretHasher {
	return auth.NewPasswordHasher(cfg.BcryptCost)
}

// ProvideRegistry creates the Prometheus registry served on /metrics
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates metrics instance for the configured sink. Returns nil
// when metrics are disabled.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry, client *awscloudwatch.Client) (*observability.Metrics, error) {
	if !cfg.EnableMetrics {
		return nil, nil
	}
	if cfg.MetricsSink == config.MetricsSinkCloudWatch {
		return observability.NewCloudWatchMetrics(observability.NewCloudWatchSink(cfg.MetricsNamespace, client)), nil
	}
	return observability.NewMetrics("users", reg)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideMediaOptions maps media configuration onto the service
func ProvideMediaOptions(cfg *config.Config) services.MediaOptions {
	return services.MediaOptions{
		Bucket:             cfg.MediaBucket,
		LinkUploadedFiles:  cfg.LinkUploadedFiles,
		UnlinkDeletedFiles: cfg.UnlinkDeletedFiles,
	}
}
