// Package properties holds the runtime key/value defaults shared by the
// resolver and the embedded index engine (index.url, index.name, ...).
//
// A Properties value is passed explicitly rather than living in a global so
// tests can start from a fresh instance.
package properties

import (
	"maps"
	"sync"
)

// Well-known property keys.
const (
	IndexVersion = "index.version"
	IndexURL     = "index.url"
	IndexName    = "index.name"
)

// Properties is a concurrency-safe string map.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty Properties.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// FromMap creates Properties seeded with a copy of m.
func FromMap(m map[string]string) *Properties {
	p := New()
	maps.Copy(p.values, m)
	return p
}

// Get returns the value for key and whether it is set.
func (p *Properties) Get(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// GetOrDefault returns the value for key, or def when unset.
func (p *Properties) GetOrDefault(key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// Set stores value under key, replacing any existing value.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// SetIfAbsent stores value only if key is unset. The check and the write
// happen under one lock. Reports whether the value was stored.
func (p *Properties) SetIfAbsent(key, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.values[key]; ok {
		return false
	}
	p.values[key] = value
	return true
}

// Snapshot returns a copy of all properties.
func (p *Properties) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values)
}
