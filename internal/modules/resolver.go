package modules

import (
	"context"
	"log/slog"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/metrics"
	"github.com/Aman-CERP/conductorboot/internal/properties"
)

// Configuration is the view of operator configuration the resolver needs.
type Configuration interface {
	// DBString returns the raw configured backend identifier.
	DBString() string
	// IntProperty returns an integer property, or def when unset or invalid.
	IntProperty(key string, def int) int
	// APIEnabled reports whether the HTTP API layer is exposed.
	APIEnabled() bool
	// AdditionalModules returns operator extension module names in order.
	AdditionalModules() []string
}

// Resolution is the outcome of one resolve call.
type Resolution struct {
	Backend       Backend
	SearchVersion SearchVersion
	Modules       Bundle

	// Bootstrapped is true when this call started the embedded engine.
	Bootstrapped bool

	// Warnings holds non-fatal problems, such as an embedded engine that
	// failed to start. Resolution still succeeded.
	Warnings []error
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// Resolver assembles the ordered module list for a configuration.
type Resolver struct {
	bootstrapper *Bootstrapper
	props        *properties.Properties
	logger       *slog.Logger
}

// NewResolver creates a Resolver. bootstrapper is shared process-wide; props
// receives the embedded engine defaults.
func NewResolver(bootstrapper *Bootstrapper, props *properties.Properties, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		bootstrapper: bootstrapper,
		props:        props,
		logger:       slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.props == nil {
		r.props = properties.New()
	}
	if r.bootstrapper == nil {
		// No engine: a MEMORY resolution reports a bootstrap warning.
		r.bootstrapper = NewBootstrapper(nil, WithBootstrapLogger(r.logger))
	}
	return r
}

// Resolve computes the module list for cfg:
//
//	[primary backend bundle] + [index module] + [api, api-docs if enabled] + [extensions]
//
// An unknown backend is the only error. Embedded bootstrap failures are
// returned in Resolution.Warnings.
func (r *Resolver) Resolve(ctx context.Context, cfg Configuration) (*Resolution, error) {
	backend, err := ParseBackend(cfg.DBString())
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "invalid_backend", cerrors.LogAttrs(err)...)
		metrics.Resolutions.WithLabelValues("unknown", metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	// Read once: the bootstrap flavor and the index module must match.
	version := SelectSearchVersion(cfg.IntProperty)
	res := &Resolution{Backend: backend, SearchVersion: version}

	modules := Catalog(backend)

	if backend == BackendMemory {
		ran, err := r.bootstrapper.BootstrapIfNeeded(ctx, version, r.props)
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "embedded_index_bootstrap_failed", cerrors.LogAttrs(err)...)
			res.Warnings = append(res.Warnings, err)
		}
		res.Bootstrapped = ran && err == nil
	}

	modules = append(modules, version.IndexModule())

	if cfg.APIEnabled() {
		modules = append(modules, API, APIDocs)
	}

	res.Modules = MergeExtensions(modules, Descriptors(cfg.AdditionalModules()))

	r.logger.Info(startupMessage(backend),
		slog.String("backend", backend.String()),
		slog.String("search_version", version.String()),
		slog.Any("modules", res.Modules.Strings()),
		slog.Int("warnings", len(res.Warnings)))
	metrics.Resolutions.WithLabelValues(backend.String(), metrics.OutcomeOK).Inc()

	return res, nil
}

func startupMessage(b Backend) string {
	switch b {
	case BackendRedis, BackendDynomite:
		return "starting conductor server using dynomite/redis cluster"
	case BackendMySQL:
		return "starting conductor server using MySQL data store"
	case BackendMemory:
		return "starting conductor server using in memory data store"
	case BackendRedisCluster:
		return "starting conductor server using redis_cluster"
	default:
		return "starting conductor server"
	}
}
