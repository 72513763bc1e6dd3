package di

import (
	"context"
	"testing"
	"time"

	"users-backend/infrastructure/config"
	"users-backend/infrastructure/storage/gcs"
	s3store "users-backend/infrastructure/storage/s3"

	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        "development",
		AWSRegion:          "us-east-1",
		UsersTable:         "users",
		UsersEmailIndex:    "userEmail-index",
		MediaBucket:        "media",
		BlobProvider:       config.BlobProviderS3,
		MaxUploadBytes:     1024,
		LinkUploadedFiles:  true,
		UnlinkDeletedFiles: true,
		BcryptCost:         4,
		LogLevel:           "debug",
		EnableMetrics:      true,
		MetricsSink:        config.MetricsSinkPrometheus,
		MetricsNamespace:   "UsersBackend/development",
	}
}

func TestProvideLogger(t *testing.T) {
	cfg := testConfig()

	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestProvideMetrics(t *testing.T) {
	cfg := testConfig()
	cw := awscloudwatch.New(awscloudwatch.Options{Region: "us-east-1"})

	t.Run("prometheus registers collectors", func(t *testing.T) {
		reg := ProvideRegistry()

		m, err := ProvideMetrics(cfg, reg, cw)
		require.NoError(t, err)
		require.NotNil(t, m)

		m.ObserveOperation("GetUsers", time.Now(), nil)
		families, err := reg.Gather()
		require.NoError(t, err)
		assert.True(t, hasFamily(families, "users_user_operations_total"))
	})

	t.Run("cloudwatch buffers without touching the registry", func(t *testing.T) {
		cwCfg := testConfig()
		cwCfg.MetricsSink = config.MetricsSinkCloudWatch
		reg := ProvideRegistry()

		m, err := ProvideMetrics(cwCfg, reg, cw)
		require.NoError(t, err)
		require.NotNil(t, m)

		families, err := reg.Gather()
		require.NoError(t, err)
		assert.False(t, hasFamily(families, "users_user_operations_total"))
		assert.NoError(t, m.Flush(context.Background()), "empty flush makes no call")
	})

	t.Run("disabled", func(t *testing.T) {
		off := testConfig()
		off.EnableMetrics = false

		m, err := ProvideMetrics(off, ProvideRegistry(), cw)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func hasFamily(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}

func TestProvideBlobStore(t *testing.T) {
	cfg := testConfig()
	client := awss3.New(awss3.Options{Region: "us-east-1"})

	store, cleanup, err := ProvideBlobStore(context.Background(), cfg, client, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &s3store.BlobStore{}, store)
	require.NotNil(t, cleanup)
	assert.NotPanics(t, cleanup)

	cfg.BlobProvider = "ftp"
	_, _, err = ProvideBlobStore(context.Background(), cfg, client, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideBlobStore_GCSCleanupClosesClient(t *testing.T) {
	// the emulator setting skips credential lookup
	t.Setenv("STORAGE_EMULATOR_HOST", "localhost:9023")
	cfg := testConfig()
	cfg.BlobProvider = config.BlobProviderGCS

	store, cleanup, err := ProvideBlobStore(context.Background(), cfg, nil, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &gcs.BlobStore{}, store)
	require.NotNil(t, cleanup)
	assert.NotPanics(t, cleanup)
}

func TestInitializeContainer(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, cleanup, err := InitializeContainer(context.Background(), testConfig())

	require.NoError(t, err)
	require.NotNil(t, cleanup)
	defer cleanup()
	assert.NotNil(t, c.UserService)
	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Registry)
}

func TestProvideMediaOptions(t *testing.T) {
	opts := ProvideMediaOptions(testConfig())

	assert.Equal(t, "media", opts.Bucket)
	assert.True(t, opts.LinkUploadedFiles)
	assert.True(t, opts.UnlinkDeletedFiles)
}
