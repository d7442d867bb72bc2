package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/conductorboot/internal/config"
	"github.com/Aman-CERP/conductorboot/internal/embedded"
	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/modules"
	"github.com/Aman-CERP/conductorboot/internal/properties"
)

const shutdownTimeout = 10 * time.Second

// boot holds the components of one process: one engine, one bootstrapper
// and one properties store shared by every resolution.
type boot struct {
	cfg      *config.Config
	logger   *slog.Logger
	props    *properties.Properties
	engine   *embedded.Engine
	resolver *modules.Resolver
}

// newBoot loads configuration for the project containing dir and wires
// the resolver to a bleve-backed embedded engine.
func newBoot(cmd *cobra.Command, dir string) (*boot, error) {
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return nil, cerrors.ConfigError("failed to locate project root", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, cerrors.ConfigError("failed to load configuration", err).
			WithDetail("dir", root).
			WithSuggestion("Run 'conductorboot config show' to inspect the merged configuration")
	}

	logger := commandLogger(cmd, cfg.Server.LogLevel)
	engine := embedded.New(embedded.Config{
		ListenAddr: cfg.Embedded.ListenAddr,
		DataDir:    cfg.Embedded.DataDir,
	}, embedded.WithLogger(logger))
	props := cfg.RuntimeProperties()
	bootstrapper := modules.NewBootstrapper(engine, modules.WithBootstrapLogger(logger))

	return &boot{
		cfg:      cfg,
		logger:   logger,
		props:    props,
		engine:   engine,
		resolver: modules.NewResolver(bootstrapper, props, modules.WithLogger(logger)),
	}, nil
}

func (b *boot) resolve(ctx context.Context) (*modules.Resolution, error) {
	return b.resolver.Resolve(ctx, b.cfg)
}

// shutdown stops the embedded engine if it was started.
func (b *boot) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.engine.Shutdown(ctx); err != nil {
		b.logger.Warn("embedded engine shutdown failed", slog.String("error", err.Error()))
	}
}
