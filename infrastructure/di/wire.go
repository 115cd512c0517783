//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/stoat/Mewton-family-tree/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideTracing,
	ProvideMetrics,
	ProvideStoreObserver,
	ProvideTreeObserver,
	ProvideLoginObserver,
	ProvideTreeStore,
	ProvideTreeService,
	ProvideErrorHandler,
	ProvideAuthenticator,
	ProvideTokenVerifier,
	ProvideRateLimiter,
	ProvideTreeHandler,
	ProvideAuthHandler,
	ProvideHealthHandler,
	ProvideRouterOptions,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
