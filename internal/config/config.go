// Package config loads conductorboot configuration from defaults, the user
// config file, the project config file and CONDUCTOR_* environment variables.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/conductorboot/internal/properties"
)

const (
	// ProjectConfigName is the project-level config file name.
	ProjectConfigName = ".conductor.yaml"

	// DefaultDB is the backend used when none is configured.
	DefaultDB = "memory"

	// DefaultEmbeddedListenAddr is where the embedded index engine listens.
	DefaultEmbeddedListenAddr = "localhost:9300"
)

// Config represents the complete conductorboot configuration.
type Config struct {
	Version int `yaml:"version" json:"version"`

	// DB names the storage backend: REDIS, DYNOMITE, MYSQL, MEMORY or
	// REDIS_CLUSTER (case-insensitive). It is validated by the resolver,
	// not here.
	DB string `yaml:"db" json:"db"`

	API APIConfig `yaml:"api" json:"api"`

	// Extensions are module names appended after every built-in module,
	// in order.
	Extensions []string `yaml:"additional_modules" json:"additional_modules"`

	// Properties seeds the runtime properties (index.version, index.url,
	// index.name, ...).
	Properties map[string]string `yaml:"properties" json:"properties"`

	Embedded EmbeddedConfig `yaml:"embedded" json:"embedded"`
	Server   ServerConfig   `yaml:"server" json:"server"`
}

// APIConfig configures the HTTP API layer.
type APIConfig struct {
	// Enabled exposes the HTTP API (api + api-docs modules).
	// Nil means the default, true.
	Enabled *bool `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// EmbeddedConfig configures the embedded index engine used by the MEMORY backend.
type EmbeddedConfig struct {
	// ListenAddr is the HTTP listen address. Empty disables the HTTP surface.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	// DataDir holds on-disk indexes for the v5 engine.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// ServerConfig configures process-level settings.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version:    1,
		DB:         DefaultDB,
		Extensions: []string{},
		Properties: map[string]string{},
		Embedded: EmbeddedConfig{
			ListenAddr: DefaultEmbeddedListenAddr,
			DataDir:    DefaultDataDir(),
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// DefaultDataDir returns ~/.conductor/index, or a temp-dir fallback.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".conductor", "index")
	}
	return filepath.Join(home, ".conductor", "index")
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/conductor/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/conductor/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "conductor", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "conductor", "config.yaml")
	}
	return filepath.Join(home, ".config", "conductor", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the project in dir, in order of increasing
// precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/conductor/config.yaml)
//  3. Project config (.conductor.yaml in dir)
//  4. Environment variables (CONDUCTOR_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := LoadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads .conductor.yaml, falling back to .conductor.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ProjectConfigName)
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".conductor.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML parses path and merges its non-zero values into c.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c. Properties merge
// key by key; a non-empty module list replaces the current one.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.DB != "" {
		c.DB = other.DB
	}
	if other.API.Enabled != nil {
		enabled := *other.API.Enabled
		c.API.Enabled = &enabled
	}
	if len(other.Extensions) > 0 {
		c.Extensions = append([]string(nil), other.Extensions...)
	}
	if len(other.Properties) > 0 {
		if c.Properties == nil {
			c.Properties = map[string]string{}
		}
		maps.Copy(c.Properties, other.Properties)
	}
	if other.Embedded.ListenAddr != "" {
		c.Embedded.ListenAddr = other.Embedded.ListenAddr
	}
	if other.Embedded.DataDir != "" {
		c.Embedded.DataDir = other.Embedded.DataDir
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies CONDUCTOR_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONDUCTOR_DB"); v != "" {
		c.DB = v
	}
	if v := os.Getenv("CONDUCTOR_API_ENABLED"); v != "" {
		enabled := parseBool(v)
		c.API.Enabled = &enabled
	}
	if v := os.Getenv("CONDUCTOR_ADDITIONAL_MODULES"); v != "" {
		c.Extensions = splitList(v)
	}

	envProps := map[string]string{
		"CONDUCTOR_INDEX_VERSION": properties.IndexVersion,
		"CONDUCTOR_INDEX_URL":     properties.IndexURL,
		"CONDUCTOR_INDEX_NAME":    properties.IndexName,
	}
	for env, key := range envProps {
		if v := os.Getenv(env); v != "" {
			if c.Properties == nil {
				c.Properties = map[string]string{}
			}
			c.Properties[key] = v
		}
	}

	if v := os.Getenv("CONDUCTOR_EMBEDDED_LISTEN_ADDR"); v != "" {
		c.Embedded.ListenAddr = v
	}
	if v := os.Getenv("CONDUCTOR_EMBEDDED_DATA_DIR"); v != "" {
		c.Embedded.DataDir = v
	}
	if v := os.Getenv("CONDUCTOR_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// DBString returns the raw configured backend identifier.
func (c *Config) DBString() string {
	return c.DB
}

// IntProperty returns properties[key] as an int, or def when the key is
// unset or not an integer.
func (c *Config) IntProperty(key string, def int) int {
	v, ok := c.Properties[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// APIEnabled reports whether the HTTP API layer is exposed (default true).
func (c *Config) APIEnabled() bool {
	if c.API.Enabled == nil {
		return true
	}
	return *c.API.Enabled
}

// AdditionalModules returns a copy of the extension module names.
func (c *Config) AdditionalModules() []string {
	return append([]string(nil), c.Extensions...)
}

// RuntimeProperties builds a fresh Properties from the configured values.
func (c *Config) RuntimeProperties() *properties.Properties {
	return properties.FromMap(c.Properties)
}

// FindProjectRoot walks up from startDir looking for a .git directory or a
// .conductor.yaml/.yml file. Returns the absolute startDir if neither is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) ||
			fileExists(filepath.Join(currentDir, ProjectConfigName)) ||
			fileExists(filepath.Join(currentDir, ".conductor.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeNewDefaults fills fields that are missing from an older config file.
// Returns the names of the fields that were added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.DB == "" {
		c.DB = defaults.DB
		added = append(added, "db")
	}
	if c.Embedded.ListenAddr == "" {
		c.Embedded.ListenAddr = defaults.Embedded.ListenAddr
		added = append(added, "embedded.listen_addr")
	}
	if c.Embedded.DataDir == "" {
		c.Embedded.DataDir = defaults.Embedded.DataDir
		added = append(added, "embedded.data_dir")
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.Server.LogLevel
		added = append(added, "server.log_level")
	}
	// api.enabled stays nil: nil already means the default.

	return added
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
