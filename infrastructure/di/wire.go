//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"users-backend/application/services"
	"users-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideUserRepository,
	ProvideBlobStore,
	ProvideIDGenerator,
	ProvideSecretHasher,
	ProvideRegistry,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideMediaOptions,
	services.NewUserService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. Call the returned
// cleanup on shutdown.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
