package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Blob store providers
const (
	BlobProviderS3  = "s3"
	BlobProviderGCS = "gcs"
)

// Metrics sinks
const (
	MetricsSinkPrometheus = "prometheus"
	MetricsSinkCloudWatch = "cloudwatch"
)

// defaults differ per binary. The HTTP server is what developers run
// locally; a Lambda function is always deployed.
type defaults struct {
	environment string
	metricsSink string
}

var (
	serverDefaults = defaults{environment: "development", metricsSink: MetricsSinkPrometheus}
	lambdaDefaults = defaults{environment: "production", metricsSink: MetricsSinkCloudWatch}
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // optional, for local DynamoDB
	S3Endpoint       string // optional, for S3-compatible local stacks

	// Users table. USERS_TABLE is the one key every operation reads.
	UsersTable      string
	UsersEmailIndex string

	// Media storage
	MediaBucket        string
	BlobProvider       string
	GCSCredentialsFile string
	MaxUploadBytes     int64

	// Follow-up record updates after media operations
	LinkUploadedFiles  bool
	UnlinkDeletedFiles bool

	// Secret hashing
	BcryptCost int

	// Logging
	LogLevel string

	// Metrics
	MetricsSink      string
	MetricsNamespace string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// CORS
	CORSAllowedOrigins []string
}

// LoadConfig loads the HTTP server configuration from environment variables
func LoadConfig() (*Config, error) {
	return load(serverDefaults)
}

// LoadLambdaConfig loads the Lambda configuration. An unset ENVIRONMENT means
// production, and metrics go to CloudWatch since nothing scrapes a function.
func LoadLambdaConfig() (*Config, error) {
	return load(lambdaDefaults)
}

func load(d defaults) (*Config, error) {
	environment := getEnv("ENVIRONMENT", d.environment)
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   environment,

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		S3Endpoint:       getEnv("S3_ENDPOINT", ""),

		UsersTable:      getEnv("USERS_TABLE", ""),
		UsersEmailIndex: getEnv("USERS_EMAIL_INDEX", "userEmail-index"),

		MediaBucket:        getEnv("MEDIA_BUCKET", ""),
		BlobProvider:       getEnv("BLOB_PROVIDER", BlobProviderS3),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		LinkUploadedFiles:  getEnvBool("LINK_UPLOADED_FILES", false),
		UnlinkDeletedFiles: getEnvBool("UNLINK_DELETED_FILES", false),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		MetricsSink:      getEnv("METRICS_SINK", d.metricsSink),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "UsersBackend/"+environment),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.BlobProvider {
	case BlobProviderS3, BlobProviderGCS:
	default:
		return fmt.Errorf("BLOB_PROVIDER must be %q or %q, got %q", BlobProviderS3, BlobProviderGCS, c.BlobProvider)
	}

	switch c.MetricsSink {
	case MetricsSinkPrometheus, MetricsSinkCloudWatch:
	default:
		return fmt.Errorf("METRICS_SINK must be %q or %q, got %q", MetricsSinkPrometheus, MetricsSinkCloudWatch, c.MetricsSink)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	if !c.IsDevelopment() {
		if c.UsersTable == "" {
			return fmt.Errorf("USERS_TABLE is required")
		}
		if c.MediaBucket == "" {
			return fmt.Errorf("MEDIA_BUCKET is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default value
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
