package modules

// Descriptor names one composable capability unit handed to the
// dependency-injection container. Two descriptors are equal when their
// names are equal.
type Descriptor string

// String returns the descriptor name.
func (d Descriptor) String() string {
	return string(d)
}

// Bundle is an ordered list of descriptors. Order is dependency order for
// the container and is preserved end to end.
type Bundle []Descriptor

// Strings returns the descriptor names in order.
func (b Bundle) Strings() []string {
	out := make([]string, len(b))
	for i, d := range b {
		out[i] = string(d)
	}
	return out
}

// Built-in module descriptors.
const (
	ClusterClient      Descriptor = "cluster-client"
	RedisClusterClient Descriptor = "redis-cluster-client"
	LocalCacheClient   Descriptor = "local-cache-client"
	WorkflowStore      Descriptor = "workflow-store"

	IndexV2 Descriptor = "index-v2"
	IndexV5 Descriptor = "index-v5"

	API     Descriptor = "api"
	APIDocs Descriptor = "api-docs"
)

// Descriptors converts raw names into a Bundle, keeping order.
func Descriptors(names []string) Bundle {
	out := make(Bundle, len(names))
	for i, n := range names {
		out[i] = Descriptor(n)
	}
	return out
}
