package modules

import (
	"strings"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
)

// Backend identifies the primary storage technology of the runtime.
type Backend string

const (
	BackendRedis        Backend = "REDIS"
	BackendDynomite     Backend = "DYNOMITE"
	BackendMySQL        Backend = "MYSQL"
	BackendMemory       Backend = "MEMORY"
	BackendRedisCluster Backend = "REDIS_CLUSTER"
)

// DefaultBackend is used when no db value is configured.
const DefaultBackend = BackendMemory

// backends lists every identifier in declaration order.
var backends = []Backend{
	BackendRedis,
	BackendDynomite,
	BackendMySQL,
	BackendMemory,
	BackendRedisCluster,
}

// catalog maps each backend to its primary module bundle.
var catalog = map[Backend]Bundle{
	BackendRedis:        {ClusterClient, WorkflowStore},
	BackendDynomite:     {ClusterClient, WorkflowStore},
	BackendMySQL:        {WorkflowStore},
	BackendMemory:       {LocalCacheClient, WorkflowStore},
	BackendRedisCluster: {RedisClusterClient, WorkflowStore},
}

// Backends returns all known backend identifiers in declaration order.
func Backends() []Backend {
	out := make([]Backend, len(backends))
	copy(out, backends)
	return out
}

// String returns the identifier.
func (b Backend) String() string {
	return string(b)
}

// Valid reports whether b is one of the known identifiers.
func (b Backend) Valid() bool {
	_, ok := catalog[b]
	return ok
}

// ParseBackend converts a configured db value into a Backend. Matching is
// case-insensitive and an empty value selects DefaultBackend. Unknown values
// fail with an InvalidBackend error naming the raw value and all valid
// identifiers.
func ParseBackend(raw string) (Backend, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultBackend, nil
	}

	b := Backend(strings.ToUpper(trimmed))
	if !b.Valid() {
		return "", cerrors.InvalidBackend(raw, backendNames())
	}
	return b, nil
}

// Catalog returns the primary bundle for b. The result is a fresh slice the
// caller may extend. Callers must pass a parsed Backend; an unknown value
// yields nil.
func Catalog(b Backend) Bundle {
	bundle, ok := catalog[b]
	if !ok {
		return nil
	}
	out := make(Bundle, len(bundle))
	copy(out, bundle)
	return out
}

func backendNames() []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	return names
}
