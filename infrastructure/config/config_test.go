package config_test

import (
	"testing"

	"users-backend/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("USERS_TABLE", "users-staging")
	t.Setenv("MEDIA_BUCKET", "media-staging")
	t.Setenv("BLOB_PROVIDER", "gcs")
	t.Setenv("LINK_UPLOADED_FILES", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("METRICS_SINK", "")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "users-staging", cfg.UsersTable)
	assert.Equal(t, "media-staging", cfg.MediaBucket)
	assert.Equal(t, config.BlobProviderGCS, cfg.BlobProvider)
	assert.True(t, cfg.LinkUploadedFiles)
	assert.False(t, cfg.UnlinkDeletedFiles)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, "userEmail-index", cfg.UsersEmailIndex)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("USERS_TABLE", "")
	t.Setenv("MEDIA_BUCKET", "")
	t.Setenv("BLOB_PROVIDER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SERVER_ADDRESS", "")
	t.Setenv("METRICS_SINK", "")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, config.BlobProviderS3, cfg.BlobProvider)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_ServerDefaultsToDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("METRICS_SINK", "")
	t.Setenv("METRICS_NAMESPACE", "")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, config.MetricsSinkPrometheus, cfg.MetricsSink)
	assert.Equal(t, "UsersBackend/development", cfg.MetricsNamespace)
}

func TestLoadLambdaConfig(t *testing.T) {
	t.Run("unset environment is production", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "")
		t.Setenv("METRICS_SINK", "")
		t.Setenv("METRICS_NAMESPACE", "")
		t.Setenv("USERS_TABLE", "users")
		t.Setenv("MEDIA_BUCKET", "media")
		t.Setenv("BLOB_PROVIDER", "")

		cfg, err := config.LoadLambdaConfig()

		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.False(t, cfg.IsDevelopment())
		assert.Equal(t, config.MetricsSinkCloudWatch, cfg.MetricsSink)
		assert.Equal(t, "UsersBackend/production", cfg.MetricsNamespace)
	})

	t.Run("table and bucket are required", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "")
		t.Setenv("METRICS_SINK", "")
		t.Setenv("USERS_TABLE", "")
		t.Setenv("MEDIA_BUCKET", "media")
		t.Setenv("BLOB_PROVIDER", "")

		_, err := config.LoadLambdaConfig()

		assert.ErrorContains(t, err, "USERS_TABLE is required")
	})

	t.Run("explicit settings win", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("METRICS_SINK", config.MetricsSinkPrometheus)
		t.Setenv("BLOB_PROVIDER", "")

		cfg, err := config.LoadLambdaConfig()

		require.NoError(t, err)
		assert.True(t, cfg.IsDevelopment())
		assert.Equal(t, config.MetricsSinkPrometheus, cfg.MetricsSink)
	})
}

func TestConfigValidation(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Environment:    "production",
			UsersTable:     "users",
			MediaBucket:    "media",
			BlobProvider:   config.BlobProviderS3,
			MaxUploadBytes: 1024,
			MetricsSink:    config.MetricsSinkPrometheus,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"missing table", func(c *config.Config) { c.UsersTable = "" }, "USERS_TABLE is required"},
		{"missing bucket", func(c *config.Config) { c.MediaBucket = "" }, "MEDIA_BUCKET is required"},
		{"unknown provider", func(c *config.Config) { c.BlobProvider = "azure" }, "BLOB_PROVIDER"},
		{"unknown metrics sink", func(c *config.Config) { c.MetricsSink = "statsd" }, "METRICS_SINK"},
		{"zero upload limit", func(c *config.Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
