package modules

import (
	"context"
	"strconv"
	"sync"
)

// fakeConfig is an in-memory Configuration.
type fakeConfig struct {
	db         string
	props      map[string]string
	api        bool
	extensions []string
}

func (c *fakeConfig) DBString() string { return c.db }

func (c *fakeConfig) IntProperty(key string, def int) int {
	v, ok := c.props[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *fakeConfig) APIEnabled() bool { return c.api }

func (c *fakeConfig) AdditionalModules() []string { return c.extensions }

// fakeEngine records Start calls.
type fakeEngine struct {
	mu       sync.Mutex
	err      error
	versions []SearchVersion
}

func (e *fakeEngine) Start(_ context.Context, v SearchVersion) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.versions = append(e.versions, v)
	return e.err
}

func (e *fakeEngine) calls() []SearchVersion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]SearchVersion(nil), e.versions...)
}
