package modules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
	"github.com/Aman-CERP/conductorboot/internal/properties"
)

func newTestResolver(engine Engine, props *properties.Properties) *Resolver {
	return NewResolver(NewBootstrapper(engine), props)
}

func TestResolve_RedisAndDynomiteStartWithClusterBundle(t *testing.T) {
	for _, db := range []string{"REDIS", "DYNOMITE"} {
		t.Run(db, func(t *testing.T) {
			r := newTestResolver(&fakeEngine{}, properties.New())

			res, err := r.Resolve(t.Context(), &fakeConfig{db: db})

			require.NoError(t, err)
			require.GreaterOrEqual(t, len(res.Modules), 2)
			assert.Equal(t, Bundle{ClusterClient, WorkflowStore}, res.Modules[:2])
		})
	}
}

func TestResolve_FullBundlePerBackend(t *testing.T) {
	tests := []struct {
		db   string
		want Bundle
	}{
		{"REDIS", Bundle{ClusterClient, WorkflowStore, IndexV2}},
		{"DYNOMITE", Bundle{ClusterClient, WorkflowStore, IndexV2}},
		{"MYSQL", Bundle{WorkflowStore, IndexV2}},
		{"MEMORY", Bundle{LocalCacheClient, WorkflowStore, IndexV2}},
		{"REDIS_CLUSTER", Bundle{RedisClusterClient, WorkflowStore, IndexV2}},
	}

	for _, tt := range tests {
		t.Run(tt.db, func(t *testing.T) {
			r := newTestResolver(&fakeEngine{}, properties.New())

			res, err := r.Resolve(t.Context(), &fakeConfig{db: tt.db})

			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Modules)
		})
	}
}

func TestResolve_MySQLHasSingleWorkflowStore(t *testing.T) {
	r := newTestResolver(&fakeEngine{}, properties.New())

	res, err := r.Resolve(t.Context(), &fakeConfig{db: "MYSQL"})

	require.NoError(t, err)
	count := 0
	for _, m := range res.Modules {
		if m == WorkflowStore {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestResolve_InvalidBackend(t *testing.T) {
	engine := &fakeEngine{}
	r := newTestResolver(engine, properties.New())

	res, err := r.Resolve(t.Context(), &fakeConfig{db: "FOO"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, cerrors.ErrInvalidBackend))
	assert.Contains(t, err.Error(), "FOO")
	for _, name := range []string{"REDIS", "DYNOMITE", "MYSQL", "MEMORY", "REDIS_CLUSTER"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.Empty(t, engine.calls(), "no bootstrap on invalid backend")
}

func TestResolve_MemoryBootstrapsOnceAcrossResolves(t *testing.T) {
	engine := &fakeEngine{}
	r := newTestResolver(engine, properties.New())
	cfg := &fakeConfig{db: "MEMORY"}

	first, err := r.Resolve(t.Context(), cfg)
	require.NoError(t, err)
	second, err := r.Resolve(t.Context(), cfg)
	require.NoError(t, err)

	assert.Len(t, engine.calls(), 1)
	assert.True(t, first.Bootstrapped)
	assert.False(t, second.Bootstrapped)
	assert.Equal(t, first.Modules, second.Modules)
}

func TestResolve_SharedBootstrapperAcrossResolvers(t *testing.T) {
	engine := &fakeEngine{}
	b := NewBootstrapper(engine)
	props := properties.New()

	_, err := NewResolver(b, props).Resolve(t.Context(), &fakeConfig{db: "MEMORY"})
	require.NoError(t, err)
	_, err = NewResolver(b, props).Resolve(t.Context(), &fakeConfig{db: "memory"})
	require.NoError(t, err)

	assert.Len(t, engine.calls(), 1)
}

func TestResolve_NonMemoryDoesNotBootstrap(t *testing.T) {
	engine := &fakeEngine{}
	props := properties.New()
	r := newTestResolver(engine, props)

	for _, db := range []string{"REDIS", "DYNOMITE", "MYSQL", "REDIS_CLUSTER"} {
		res, err := r.Resolve(t.Context(), &fakeConfig{db: db})
		require.NoError(t, err)
		assert.False(t, res.Bootstrapped)
	}

	assert.Empty(t, engine.calls())
	assert.Empty(t, props.Snapshot())
}

func TestResolve_MemoryDefaultsProperties(t *testing.T) {
	props := properties.New()
	r := newTestResolver(&fakeEngine{}, props)

	_, err := r.Resolve(t.Context(), &fakeConfig{db: "MEMORY"})

	require.NoError(t, err)
	assert.Equal(t, "localhost:9300", props.GetOrDefault(properties.IndexURL, ""))
	assert.Equal(t, "conductor", props.GetOrDefault(properties.IndexName, ""))
}

func TestResolve_MemoryKeepsOperatorIndexURL(t *testing.T) {
	props := properties.FromMap(map[string]string{properties.IndexURL: "custom:1234"})
	r := newTestResolver(&fakeEngine{}, props)

	_, err := r.Resolve(t.Context(), &fakeConfig{db: "MEMORY"})

	require.NoError(t, err)
	assert.Equal(t, "custom:1234", props.GetOrDefault(properties.IndexURL, ""))
}

func TestResolve_BootstrapFailureIsNonFatal(t *testing.T) {
	// Given: an embedded engine that fails to start
	engine := &fakeEngine{err: errors.New("port 9300 in use")}
	r := newTestResolver(engine, properties.New())

	// When: resolving the MEMORY backend with extensions
	res, err := r.Resolve(t.Context(), &fakeConfig{db: "MEMORY", api: true, extensions: []string{"A"}})

	// Then: resolution succeeds with every module and one warning
	require.NoError(t, err)
	assert.Equal(t, Bundle{LocalCacheClient, WorkflowStore, IndexV2, API, APIDocs, "A"}, res.Modules)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.Is(res.Warnings[0], cerrors.ErrEmbeddedBootstrap))
	assert.False(t, res.Bootstrapped)
}

func TestResolve_NilBootstrapperWarnsOnMemory(t *testing.T) {
	r := NewResolver(nil, nil)

	res, err := r.Resolve(t.Context(), &fakeConfig{db: "MEMORY"})

	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, Bundle{LocalCacheClient, WorkflowStore, IndexV2}, res.Modules)
}

func TestResolve_SearchVersionDrivesIndexAndBootstrapFlavor(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]string
		version SearchVersion
		index   Descriptor
	}{
		{"unset", nil, SearchV2, IndexV2},
		{"five", map[string]string{"index.version": "5"}, SearchV5, IndexV5},
		{"other", map[string]string{"index.version": "7"}, SearchV2, IndexV2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			r := newTestResolver(engine, properties.New())

			res, err := r.Resolve(t.Context(), &fakeConfig{db: "MEMORY", props: tt.props})

			require.NoError(t, err)
			assert.Equal(t, tt.version, res.SearchVersion)
			assert.Contains(t, res.Modules, tt.index)
			assert.Equal(t, []SearchVersion{tt.version}, engine.calls())
		})
	}
}

// flippingConfig returns a different index.version on every read.
type flippingConfig struct {
	fakeConfig
	reads int
}

func (c *flippingConfig) IntProperty(_ string, def int) int {
	c.reads++
	if c.reads%2 == 1 {
		return 5
	}
	return def
}

func TestResolve_SearchVersionReadOncePerResolution(t *testing.T) {
	engine := &fakeEngine{}
	r := newTestResolver(engine, properties.New())
	cfg := &flippingConfig{fakeConfig: fakeConfig{db: "MEMORY"}}

	res, err := r.Resolve(t.Context(), cfg)

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.reads)
	assert.Equal(t, []SearchVersion{SearchV5}, engine.calls())
	assert.Contains(t, res.Modules, IndexV5)
	assert.NotContains(t, res.Modules, IndexV2)
}

func TestResolve_APIPairPlacement(t *testing.T) {
	r := newTestResolver(&fakeEngine{}, properties.New())

	res, err := r.Resolve(t.Context(), &fakeConfig{db: "REDIS", api: true, extensions: []string{"A", "B"}})

	require.NoError(t, err)
	assert.Equal(t, Bundle{ClusterClient, WorkflowStore, IndexV2, API, APIDocs, "A", "B"}, res.Modules)
}

func TestResolve_APIDisabled(t *testing.T) {
	r := newTestResolver(&fakeEngine{}, properties.New())

	res, err := r.Resolve(t.Context(), &fakeConfig{db: "REDIS", api: false})

	require.NoError(t, err)
	assert.NotContains(t, res.Modules, API)
	assert.NotContains(t, res.Modules, APIDocs)
}

func TestResolve_ExtensionsLastForEveryBackend(t *testing.T) {
	for _, b := range Backends() {
		t.Run(b.String(), func(t *testing.T) {
			r := newTestResolver(&fakeEngine{}, properties.New())

			res, err := r.Resolve(t.Context(), &fakeConfig{db: b.String(), api: true, extensions: []string{"A", "B"}})

			require.NoError(t, err)
			n := len(res.Modules)
			require.GreaterOrEqual(t, n, 2)
			assert.Equal(t, Bundle{"A", "B"}, res.Modules[n-2:])
		})
	}
}
