// Package di wires the server's dependencies with google/wire.
package di

import (
	"context"
	"errors"

	"github.com/stoat/Mewton-family-tree/application/ports"
	"github.com/stoat/Mewton-family-tree/infrastructure/config"
	"github.com/stoat/Mewton-family-tree/interfaces/http/rest"
	"github.com/stoat/Mewton-family-tree/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   ports.TreeStore
	Router  *rest.Router
	Metrics *observability.Collector
	Tracing *observability.TracerProvider
}

// Close waits for pending store writes and flushes spans. The logger is left
// to the caller to sync.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.Store != nil {
		if err := c.Store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Tracing != nil {
		if err := c.Tracing.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
