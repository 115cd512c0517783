package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/application/services"
	"github.com/stoat/Mewton-family-tree/infrastructure/config"
	"github.com/stoat/Mewton-family-tree/infrastructure/persistence/dynamostore"
	"github.com/stoat/Mewton-family-tree/infrastructure/persistence/filestore"
	"github.com/stoat/Mewton-family-tree/interfaces/http/rest"
	"github.com/stoat/Mewton-family-tree/interfaces/http/rest/handlers"
	"github.com/stoat/Mewton-family-tree/pkg/auth"
	apperrors "github.com/stoat/Mewton-family-tree/pkg/errors"
	"github.com/stoat/Mewton-family-tree/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// ProvideTracing installs the OTLP exporter when tracing is enabled. It
// returns nil otherwise; spans then go to the no-op global provider.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: "family-tree",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	return tp, nil
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are
// disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("family_tree")
}

// ProvideStoreObserver adapts the collector to the store's observer port.
func ProvideStoreObserver(metrics *observability.Collector) ports.StoreObserver {
	if metrics == nil {
		return ports.NopStoreObserver{}
	}
	return metrics
}

// ProvideTreeObserver adapts the collector to the service's observer port.
func ProvideTreeObserver(metrics *observability.Collector) ports.TreeObserver {
	if metrics == nil {
		return ports.NopTreeObserver{}
	}
	return metrics
}

// ProvideLoginObserver adapts the collector to the auth handler.
func ProvideLoginObserver(metrics *observability.Collector) handlers.LoginObserver {
	if metrics == nil {
		return nil
	}
	return metrics
}

// ProvideTreeStore opens the configured backend. A storage location that
// cannot be prepared fails startup.
func ProvideTreeStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, observer ports.StoreObserver) (ports.TreeStore, error) {
	switch cfg.Storage.Backend {
	case dynamostore.Backend:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Storage.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Storage.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, apperrors.NewStorageUnavailableError(cfg.Storage.DynamoDBTable, err)
		}
		seed, err := readSeed(cfg.Storage.SeedPath)
		if err != nil {
			return nil, apperrors.NewStorageUnavailableError(cfg.Storage.SeedPath, err)
		}
		store, err := dynamostore.Open(ctx, awsdynamodb.NewFromConfig(awsCfg), dynamostore.Options{
			TableName: cfg.Storage.DynamoDBTable,
			TreeName:  cfg.Storage.TreeName,
			Seed:      seed,
		}, logger, observer)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := filestore.Open(ctx, filestore.Options{
			Dir:      cfg.Storage.DataDir,
			FileName: cfg.Storage.FileName,
			SeedPath: cfg.Storage.SeedPath,
			Watch:    cfg.Storage.Watch,
		}, logger, observer)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// readSeed returns nil when there is no seed document to copy.
func readSeed(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	seed, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return seed, err
}

// ProvideTreeService creates the tree service
func ProvideTreeService(store ports.TreeStore, observer ports.TreeObserver, logger *zap.Logger) *services.TreeService {
	return services.NewTreeService(store, observer, logger)
}

// ProvideErrorHandler creates the JSON error writer. Stack traces are only
// exposed in development.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideAuthenticator builds the password gate and its token scheme.
func ProvideAuthenticator(cfg *config.Config) (*auth.Authenticator, error) {
	scheme, err := auth.NewScheme(auth.Scheme(cfg.Auth.Scheme), cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthenticator(cfg.Auth.Secret, scheme), nil
}

// ProvideTokenVerifier exposes the authenticator as the capability the
// router checks tokens against.
func ProvideTokenVerifier(authenticator *auth.Authenticator) auth.TokenVerifier {
	return authenticator
}

// ProvideRateLimiter creates the per-IP login limiter
func ProvideRateLimiter(cfg *config.Config) *auth.IPRateLimiter {
	return auth.NewIPRateLimiter(cfg.Auth.LoginAttempts, cfg.Auth.LoginWindow)
}

// ProvideTreeHandler creates the tree handler
func ProvideTreeHandler(service *services.TreeService, errs *apperrors.ErrorHandler, cfg *config.Config, logger *zap.Logger) *handlers.TreeHandler {
	return handlers.NewTreeHandler(service, errs, logger, cfg.Server.MaxBodyBytes)
}

// ProvideAuthHandler creates the login handler
func ProvideAuthHandler(authenticator *auth.Authenticator, observer handlers.LoginObserver, errs *apperrors.ErrorHandler, logger *zap.Logger) *handlers.AuthHandler {
	return handlers.NewAuthHandler(authenticator, observer, errs, logger)
}

// ProvideHealthHandler creates the health handler
func ProvideHealthHandler(logger *zap.Logger) *handlers.HealthHandler {
	return handlers.NewHealthHandler(logger)
}

// ProvideRouterOptions maps configuration onto router options.
func ProvideRouterOptions(cfg *config.Config) rest.Options {
	return rest.Options{
		EnableCORS:  cfg.EnableCORS,
		CORSOrigins: cfg.CORSOrigins,
	}
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	tree *handlers.TreeHandler,
	authHandler *handlers.AuthHandler,
	health *handlers.HealthHandler,
	verifier auth.TokenVerifier,
	limiter *auth.IPRateLimiter,
	metrics *observability.Collector,
	errs *apperrors.ErrorHandler,
	options rest.Options,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(tree, authHandler, health, verifier, limiter, metrics, errs, options, logger)
}
