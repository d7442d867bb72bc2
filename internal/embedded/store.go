package embedded

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/oklog/ulid/v2"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/metrics"
	"github.com/Aman-CERP/conductorboot/internal/modules"
)

const (
	// DefaultSearchSize is the hit count returned when size is not given.
	DefaultSearchSize = 10
	// MaxSearchSize caps the hit count of a single search.
	MaxSearchSize = 1000
)

var indexNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,127}$`)

// Hit is one search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// SearchResult is the outcome of a search against one index.
type SearchResult struct {
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// IndexDocument stores doc under id in the named index, creating the index
// on first use.
func (e *Engine) IndexDocument(name, id string, doc map[string]any) error {
	if id == "" {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "document id must not be empty", nil)
	}
	idx, err := e.index(name, true)
	if err != nil {
		return err
	}
	if err := idx.Index(id, doc); err != nil {
		return cerrors.New(cerrors.ErrCodeIndexFailed, "failed to index document", err).
			WithDetail("index", name).
			WithDetail("id", id)
	}
	metrics.DocumentsIndexed.Inc()
	return nil
}

// AddDocument stores doc under a new ULID in the named index and returns
// the id.
func (e *Engine) AddDocument(name string, doc map[string]any) (string, error) {
	id := ulid.Make().String()
	if err := e.IndexDocument(name, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteDocument removes id from the named index. Deleting an id that was
// never indexed is not an error.
func (e *Engine) DeleteDocument(name, id string) error {
	idx, err := e.index(name, false)
	if err != nil {
		return err
	}
	if err := idx.Delete(id); err != nil {
		return cerrors.New(cerrors.ErrCodeIndexFailed, "failed to delete document", err).
			WithDetail("index", name).
			WithDetail("id", id)
	}
	return nil
}

// Search runs a query-string query against the named index. An empty query
// matches every document. size is clamped to [1, MaxSearchSize].
func (e *Engine) Search(name, query string, size int) (*SearchResult, error) {
	idx, err := e.index(name, false)
	if err != nil {
		return nil, err
	}

	switch {
	case size <= 0:
		size = DefaultSearchSize
	case size > MaxSearchSize:
		size = MaxSearchSize
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), size, 0, false)
	if query != "" {
		req = bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), size, 0, false)
	}

	res, err := idx.Search(req)
	if err != nil {
		return nil, cerrors.New(cerrors.ErrCodeIndexFailed, "search failed", err).
			WithDetail("index", name).
			WithDetail("query", query)
	}

	out := &SearchResult{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, Hit{ID: h.ID, Score: h.Score})
	}
	return out, nil
}

// Count returns the number of documents in the named index.
func (e *Engine) Count(name string) (uint64, error) {
	idx, err := e.index(name, false)
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	if err != nil {
		return 0, cerrors.New(cerrors.ErrCodeIndexFailed, "count failed", err).
			WithDetail("index", name)
	}
	return n, nil
}

// Indexes returns the names of the open indexes, sorted.
func (e *Engine) Indexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// index returns the named index. With create=false, a missing index is an
// ErrCodeIndexNotFound error; v5 indexes left on disk by an earlier run are
// reopened either way.
func (e *Engine) index(name string, create bool) (bleve.Index, error) {
	if !indexNamePattern.MatchString(name) {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput,
			fmt.Sprintf("invalid index name %q", name), nil).
			WithSuggestion("Use lowercase letters, digits, '-' and '_'")
	}

	e.mu.RLock()
	idx, ok := e.indexes[name]
	started := e.started
	e.mu.RUnlock()
	if ok {
		return idx, nil
	}
	if !started {
		return nil, errNotStarted
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another request may have opened it meanwhile.
	if idx, ok := e.indexes[name]; ok {
		return idx, nil
	}
	if !e.started {
		return nil, errNotStarted
	}

	idx, err := e.openIndex(name, create)
	if err != nil {
		return nil, err
	}
	e.indexes[name] = idx
	e.logger.Debug("index_opened",
		"index", name,
		"version", e.version.String())
	return idx, nil
}

// openIndex opens or creates an index for the running version. Caller holds mu.
func (e *Engine) openIndex(name string, create bool) (bleve.Index, error) {
	notFound := func() error {
		return cerrors.New(cerrors.ErrCodeIndexNotFound,
			fmt.Sprintf("index %s not found", name), nil).
			WithDetail("index", name)
	}

	if e.version != modules.SearchV5 {
		if !create {
			return nil, notFound()
		}
		idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, cerrors.New(cerrors.ErrCodeIndexFailed, "failed to create in-memory index", err)
		}
		return idx, nil
	}

	path := filepath.Join(e.cfg.DataDir, name)
	idx, err := bleve.Open(path)
	if err == nil {
		return idx, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist {
		return nil, cerrors.New(cerrors.ErrCodeIndexFailed, "failed to open index", err).
			WithDetail("path", path)
	}
	if !create {
		return nil, notFound()
	}

	if err := os.MkdirAll(e.cfg.DataDir, 0o755); err != nil {
		return nil, cerrors.New(cerrors.ErrCodeIndexFailed, "failed to create data directory", err)
	}
	idx, err = bleve.New(path, bleve.NewIndexMapping())
	if err != nil {
		return nil, cerrors.New(cerrors.ErrCodeIndexFailed, "failed to create index", err).
			WithDetail("path", path)
	}
	return idx, nil
}
