package modules

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/metrics"
	"github.com/Aman-CERP/conductorboot/internal/properties"
)

// Defaults written after the embedded engine starts. Operator values always win.
const (
	EmbeddedIndexURL  = "localhost:9300"
	EmbeddedIndexName = "conductor"
)

// Engine starts an in-process index engine of the given generation.
// Start returns once the engine accepts work; it must not block for the
// engine's lifetime.
type Engine interface {
	Start(ctx context.Context, version SearchVersion) error
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, version SearchVersion) error

// Start calls f.
func (f EngineFunc) Start(ctx context.Context, version SearchVersion) error {
	return f(ctx, version)
}

// BootstrapOption configures a Bootstrapper.
type BootstrapOption func(*Bootstrapper)

// WithBootstrapLogger sets the logger used for bootstrap events.
func WithBootstrapLogger(l *slog.Logger) BootstrapOption {
	return func(b *Bootstrapper) { b.logger = l }
}

// Bootstrapper starts the embedded index engine at most once. Production
// code creates one per process; every resolver that may see the MEMORY
// backend shares it.
type Bootstrapper struct {
	engine  Engine
	logger  *slog.Logger
	claimed atomic.Bool
	started atomic.Bool
}

// NewBootstrapper creates a Bootstrapper around engine.
func NewBootstrapper(engine Engine, opts ...BootstrapOption) *Bootstrapper {
	b := &Bootstrapper{engine: engine, logger: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Started reports whether the engine was started successfully.
func (b *Bootstrapper) Started() bool {
	return b.started.Load()
}

// BootstrapIfNeeded starts the engine for version and then defaults
// index.url and index.name in props if they are unset.
//
// Only the first call does anything; later calls return (false, nil). The
// first call reports ran=true even when the start fails, and a failed start
// is not retried. Failures come back as an EmbeddedBootstrap error, which
// callers treat as a warning.
func (b *Bootstrapper) BootstrapIfNeeded(ctx context.Context, version SearchVersion, props *properties.Properties) (ran bool, err error) {
	if !b.claimed.CompareAndSwap(false, true) {
		b.logger.Debug("embedded_index_bootstrap_skipped",
			slog.String("reason", "already attempted"))
		metrics.Bootstraps.WithLabelValues(version.String(), metrics.OutcomeSkipped).Inc()
		return false, nil
	}

	if err := b.start(ctx, version); err != nil {
		metrics.Bootstraps.WithLabelValues(version.String(), metrics.OutcomeFailed).Inc()
		return true, err
	}
	b.started.Store(true)

	if props.SetIfAbsent(properties.IndexURL, EmbeddedIndexURL) {
		b.logger.Info("property_defaulted",
			slog.String("key", properties.IndexURL),
			slog.String("value", EmbeddedIndexURL))
	}
	if props.SetIfAbsent(properties.IndexName, EmbeddedIndexName) {
		b.logger.Info("property_defaulted",
			slog.String("key", properties.IndexName),
			slog.String("value", EmbeddedIndexName))
	}

	metrics.Bootstraps.WithLabelValues(version.String(), metrics.OutcomeOK).Inc()
	b.logger.Info("embedded_index_started", slog.String("version", version.String()))
	return true, nil
}

// start calls the engine, turning errors and panics into EmbeddedBootstrap errors.
func (b *Bootstrapper) start(ctx context.Context, version SearchVersion) (retErr error) {
	if b.engine == nil {
		return cerrors.EmbeddedBootstrap("no embedded index engine configured", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			retErr = cerrors.EmbeddedBootstrap(
				fmt.Sprintf("embedded index engine %s panicked during start", version),
				fmt.Errorf("panic: %v", r))
		}
	}()

	if err := b.engine.Start(ctx, version); err != nil {
		return cerrors.EmbeddedBootstrap(
			fmt.Sprintf("error starting embedded index engine %s, search functionality will be impacted", version),
			err)
	}
	return nil
}
