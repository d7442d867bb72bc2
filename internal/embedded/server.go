package embedded

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/metrics"
)

const (
	maxBodySize = 1 << 20
	unmatched   = "unmatched"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type resultResponse struct {
	Index  string `json:"_index"`
	ID     string `json:"_id"`
	Result string `json:"result"`
}

type countResponse struct {
	Count uint64 `json:"count"`
}

func (e *Engine) newRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(e.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", e.handleHealthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/{index}", func(r chi.Router) {
		r.Post("/_doc", e.handlePostDocument)
		r.Put("/_doc/{id}", e.handlePutDocument)
		r.Delete("/_doc/{id}", e.handleDeleteDocument)
		r.Get("/_search", e.handleSearch)
		r.Get("/_count", e.handleCount)
	})

	return r
}

func (e *Engine) handleHealthz(w http.ResponseWriter, r *http.Request) {
	version, started := e.Version()
	if !started {
		e.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "stopped"})
		return
	}
	e.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.String()})
}

func (e *Engine) handlePostDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	doc, ok := e.decodeDocument(w, r)
	if !ok {
		return
	}

	id, err := e.AddDocument(name, doc)
	if err != nil {
		e.writeEngineError(w, r, err)
		return
	}
	e.writeJSON(w, http.StatusCreated, resultResponse{Index: name, ID: id, Result: "created"})
}

func (e *Engine) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	id := chi.URLParam(r, "id")

	doc, ok := e.decodeDocument(w, r)
	if !ok {
		return
	}

	if err := e.IndexDocument(name, id, doc); err != nil {
		e.writeEngineError(w, r, err)
		return
	}
	e.writeJSON(w, http.StatusCreated, resultResponse{Index: name, ID: id, Result: "created"})
}

// decodeDocument reads a JSON object body, writing a 400 on failure.
func (e *Engine) decodeDocument(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var doc map[string]any
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
		e.writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return doc, true
}

func (e *Engine) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	id := chi.URLParam(r, "id")

	if err := e.DeleteDocument(name, id); err != nil {
		e.writeEngineError(w, r, err)
		return
	}
	e.writeJSON(w, http.StatusOK, resultResponse{Index: name, ID: id, Result: "deleted"})
}

func (e *Engine) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	size := parseIntQuery(r, "size", DefaultSearchSize)

	res, err := e.Search(name, r.URL.Query().Get("q"), size)
	if err != nil {
		e.writeEngineError(w, r, err)
		return
	}
	e.writeJSON(w, http.StatusOK, res)
}

func (e *Engine) handleCount(w http.ResponseWriter, r *http.Request) {
	n, err := e.Count(chi.URLParam(r, "index"))
	if err != nil {
		e.writeEngineError(w, r, err)
		return
	}
	e.writeJSON(w, http.StatusOK, countResponse{Count: n})
}

// writeEngineError maps engine error codes to HTTP statuses.
func (e *Engine) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case err == errNotStarted:
		status = http.StatusServiceUnavailable
	case cerrors.GetCode(err) == cerrors.ErrCodeIndexNotFound:
		status = http.StatusNotFound
	case cerrors.GetCode(err) == cerrors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		e.logger.LogAttrs(r.Context(), slog.LevelError, "index request failed", cerrors.LogAttrs(err)...)
	}
	e.writeJSON(w, status, cerrors.ToJSON(err))
}

// writeJSON writes a JSON response with the given status code.
func (e *Engine) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (e *Engine) writeError(w http.ResponseWriter, status int, message string) {
	e.writeJSON(w, status, map[string]string{"error": message})
}

// loggingMiddleware logs each request at debug level.
func (e *Engine) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		e.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// metricsMiddleware records request count and duration by chi route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := routePattern(r)
		metrics.IndexRequests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		metrics.IndexRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatched
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
