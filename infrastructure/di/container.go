package di

import (
	"users-backend/application/services"
	"users-backend/infrastructure/config"
	"users-backend/pkg/observability"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	UserService *services.UserService
	Tracer      *observability.Tracer
	Metrics     *observability.Metrics
	Registry    *prometheus.Registry
}
