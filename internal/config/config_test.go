package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/conductorboot/configs"
	"github.com/Aman-CERP/conductorboot/internal/properties"
)

// isolate points the user config at an empty temp dir and clears CONDUCTOR_* vars.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, env := range []string{
		"CONDUCTOR_DB", "CONDUCTOR_API_ENABLED", "CONDUCTOR_ADDITIONAL_MODULES",
		"CONDUCTOR_INDEX_VERSION", "CONDUCTOR_INDEX_URL", "CONDUCTOR_INDEX_NAME",
		"CONDUCTOR_EMBEDDED_LISTEN_ADDR", "CONDUCTOR_EMBEDDED_DATA_DIR", "CONDUCTOR_LOG_LEVEL",
	} {
		t.Setenv(env, "")
	}
	return xdg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	cfg := NewConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "memory", cfg.DB)
	assert.Nil(t, cfg.API.Enabled)
	assert.True(t, cfg.APIEnabled())
	assert.Empty(t, cfg.AdditionalModules())
	assert.Equal(t, "localhost:9300", cfg.Embedded.ListenAddr)
	assert.Contains(t, cfg.Embedded.DataDir, filepath.Join(".conductor", "index"))
	assert.Equal(t, "info", cfg.Server.LogLevel)
}

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DBString())
	assert.Equal(t, 2, cfg.IntProperty(properties.IndexVersion, 2))
}

func TestLoad_ProjectYAML_OverridesDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yaml"), `
db: redis
api:
  enabled: false
additional_modules:
  - com.example.AuditModule
  - com.example.MetricsModule
properties:
  index.version: "5"
  index.url: es.internal:9300
embedded:
  listen_addr: 127.0.0.1:9301
server:
  log_level: debug
`)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.DBString())
	assert.False(t, cfg.APIEnabled())
	assert.Equal(t, []string{"com.example.AuditModule", "com.example.MetricsModule"}, cfg.AdditionalModules())
	assert.Equal(t, 5, cfg.IntProperty(properties.IndexVersion, 2))
	assert.Equal(t, "es.internal:9300", cfg.Properties[properties.IndexURL])
	assert.Equal(t, "127.0.0.1:9301", cfg.Embedded.ListenAddr)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoad_YmlFallback(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yml"), "db: mysql\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBString())
}

func TestLoad_UserConfigThenProjectConfig(t *testing.T) {
	xdg := isolate(t)
	writeFile(t, filepath.Join(xdg, "conductor", "config.yaml"), `
db: dynomite
properties:
  index.name: from-user
  index.url: user:9300
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yaml"), `
properties:
  index.url: project:9300
`)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "dynomite", cfg.DBString())
	assert.Equal(t, "from-user", cfg.Properties[properties.IndexName])
	assert.Equal(t, "project:9300", cfg.Properties[properties.IndexURL])
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yaml"), "db: redis\n")
	t.Setenv("CONDUCTOR_DB", "REDIS_CLUSTER")
	t.Setenv("CONDUCTOR_API_ENABLED", "false")
	t.Setenv("CONDUCTOR_ADDITIONAL_MODULES", " A, ,B ")
	t.Setenv("CONDUCTOR_INDEX_VERSION", "5")
	t.Setenv("CONDUCTOR_INDEX_URL", "env:9300")
	t.Setenv("CONDUCTOR_EMBEDDED_LISTEN_ADDR", "127.0.0.1:0")
	t.Setenv("CONDUCTOR_LOG_LEVEL", "warn")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "REDIS_CLUSTER", cfg.DBString())
	assert.False(t, cfg.APIEnabled())
	assert.Equal(t, []string{"A", "B"}, cfg.AdditionalModules())
	assert.Equal(t, 5, cfg.IntProperty(properties.IndexVersion, 2))
	assert.Equal(t, "env:9300", cfg.Properties[properties.IndexURL])
	assert.Equal(t, "127.0.0.1:0", cfg.Embedded.ListenAddr)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestLoad_UnknownDBIsNotAConfigError(t *testing.T) {
	// The resolver owns backend validation.
	isolate(t)
	t.Setenv("CONDUCTOR_DB", "FOO")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "FOO", cfg.DBString())
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("CONDUCTOR_LOG_LEVEL", "chatty")

	_, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoad_ExtensionNamesPassThrough(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yaml"), "additional_modules: [\"A\", \" \", \"A\"]\n")

	// When: loading a module list with a blank and a duplicate entry
	cfg, err := Load(dir)

	// Then: the list is kept verbatim
	require.NoError(t, err)
	assert.Equal(t, []string{"A", " ", "A"}, cfg.AdditionalModules())
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".conductor.yaml"), "db: [unclosed\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestIntProperty(t *testing.T) {
	cfg := NewConfig()
	cfg.Properties = map[string]string{"a": " 5 ", "b": "x"}

	assert.Equal(t, 5, cfg.IntProperty("a", 2))
	assert.Equal(t, 2, cfg.IntProperty("b", 2))
	assert.Equal(t, 2, cfg.IntProperty("missing", 2))
}

func TestAdditionalModules_ReturnsCopy(t *testing.T) {
	cfg := NewConfig()
	cfg.Extensions = []string{"A"}

	got := cfg.AdditionalModules()
	got[0] = "Z"

	assert.Equal(t, []string{"A"}, cfg.Extensions)
}

func TestRuntimeProperties_SeededFromConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Properties = map[string]string{properties.IndexURL: "custom:1234"}

	props := cfg.RuntimeProperties()
	cfg.Properties[properties.IndexURL] = "changed"

	v, ok := props.Get(properties.IndexURL)
	assert.True(t, ok)
	assert.Equal(t, "custom:1234", v)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".conductor.yaml"), "db: memory\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := FindProjectRoot(nested)

	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotResolved)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.DB = "mysql"
	enabled := false
	cfg.API.Enabled = &enabled

	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".conductor.yaml")))
	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "mysql", loaded.DBString())
	assert.False(t, loaded.APIEnabled())
}

func TestMergeNewDefaults(t *testing.T) {
	cfg := &Config{Server: ServerConfig{LogLevel: "debug"}}

	added := cfg.MergeNewDefaults()

	assert.ElementsMatch(t, []string{"db", "embedded.listen_addr", "embedded.data_dir"}, added)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "memory", cfg.DB)
}

func TestConfigTemplate_LoadsCleanly(t *testing.T) {
	// Given: the embedded template written by `config init`
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectConfigName), configs.ConfigTemplate)

	// When: loading it as a project config
	cfg, err := Load(dir)

	// Then: it yields the defaults
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DBString())
	assert.True(t, cfg.APIEnabled())
	assert.Empty(t, cfg.AdditionalModules())
	assert.Equal(t, 2, cfg.IntProperty(properties.IndexVersion, 0))
	assert.Equal(t, DefaultDataDir(), cfg.Embedded.DataDir)
}
