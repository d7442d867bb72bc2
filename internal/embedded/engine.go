package embedded

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/go-chi/chi/v5"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/modules"
)

const readHeaderTimeout = 10 * time.Second

// errNotStarted is returned by index operations before Start.
var errNotStarted = cerrors.InternalError("embedded index engine not started", nil)

// Config configures the engine.
type Config struct {
	// ListenAddr is the HTTP listen address. Empty starts the engine
	// without a listener; Router still serves requests.
	ListenAddr string
	// DataDir holds version 5 indexes.
	DataDir string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine is a bleve-backed index engine. It implements modules.Engine.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	router *chi.Mux

	mu       sync.RWMutex
	started  bool
	version  modules.SearchVersion
	indexes  map[string]bleve.Index
	lock     *dataDirLock
	listener net.Listener
	server   *http.Server

	done     chan struct{}
	doneOnce sync.Once
	serveErr error
}

var _ modules.Engine = (*Engine)(nil)

// New creates an engine. Nothing is opened or bound until Start.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		logger:  slog.Default(),
		indexes: map[string]bleve.Index{},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.router = e.newRouter()
	return e
}

// Start opens the engine for version and, if ListenAddr is set, binds the
// listener and serves on a goroutine. It returns once the listener is
// bound. Starting again with the same version is a no-op; a different
// version is an error. An engine cannot be restarted after Shutdown.
func (e *Engine) Start(ctx context.Context, version modules.SearchVersion) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case <-e.done:
		return cerrors.InternalError("embedded index engine has been shut down", nil)
	default:
	}

	if e.started {
		if e.version != version {
			return cerrors.New(cerrors.ErrCodeInvalidInput,
				fmt.Sprintf("engine already running as %s, cannot start as %s", e.version, version), nil)
		}
		return nil
	}

	if version == modules.SearchV5 {
		if e.cfg.DataDir == "" {
			return cerrors.New(cerrors.ErrCodeConfigInvalid, "embedded.data_dir is required for index version 5", nil)
		}
		lock, err := acquireDataDir(e.cfg.DataDir)
		if err != nil {
			return err
		}
		e.lock = lock
	}

	if e.cfg.ListenAddr != "" {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", e.cfg.ListenAddr)
		if err != nil {
			_ = e.lock.release()
			e.lock = nil
			return fmt.Errorf("listen on %s: %w", e.cfg.ListenAddr, err)
		}
		e.listener = ln
		e.server = &http.Server{
			Handler:           e.router,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go e.serve(e.server, ln)
	}

	e.version = version
	e.started = true

	e.logger.Info("embedded_engine_started",
		slog.String("version", version.String()),
		slog.String("addr", e.addrLocked()),
		slog.String("data_dir", e.dataDirLocked()))
	return nil
}

func (e *Engine) serve(srv *http.Server, ln net.Listener) {
	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.logger.Error("embedded_engine_serve_failed", slog.String("error", err.Error()))
		e.mu.Lock()
		e.serveErr = err
		e.mu.Unlock()
	}
	e.closeDone()
}

// Router returns the HTTP handler, for embedding or tests.
func (e *Engine) Router() http.Handler {
	return e.router
}

// Addr returns the bound listen address, or "" without a listener.
func (e *Engine) Addr() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.addrLocked()
}

func (e *Engine) addrLocked() string {
	if e.listener == nil {
		return ""
	}
	return e.listener.Addr().String()
}

func (e *Engine) dataDirLocked() string {
	if e.lock == nil {
		return ""
	}
	return e.cfg.DataDir
}

// Version returns the running version and whether the engine is started.
func (e *Engine) Version() (modules.SearchVersion, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version, e.started
}

// Done is closed when the engine stops serving.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns the error that stopped the server, if any.
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.serveErr
}

func (e *Engine) closeDone() {
	e.doneOnce.Do(func() { close(e.done) })
}

// Shutdown stops the HTTP server, closes every index and releases the
// data directory lock. It is safe to call more than once.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	server := e.server
	indexes := e.indexes
	lock := e.lock
	wasStarted := e.started
	e.server = nil
	e.indexes = map[string]bleve.Index{}
	e.lock = nil
	e.started = false
	e.mu.Unlock()

	var errs []error
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	for name, idx := range indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close index %s: %w", name, err))
		}
	}
	if err := lock.release(); err != nil {
		errs = append(errs, err)
	}
	e.closeDone()

	if wasStarted {
		e.logger.Info("embedded_engine_stopped")
	}
	return errors.Join(errs...)
}
