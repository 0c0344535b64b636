// Package config loads and validates YAML configuration for the
// resolver: source groups, query budgets, and cache tuning.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seaholm/nostrkit/internal/resolve"
)

// Duration wraps time.Duration so YAML configs can spell budgets as
// "6s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"6s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// SourceGroup configures one prioritized set of relay endpoints.
type SourceGroup struct {
	Name      string   `yaml:"name"`
	Priority  int      `yaml:"priority"`
	Endpoints []string `yaml:"endpoints"`
}

// ResolverConfig tunes query budgets.
type ResolverConfig struct {
	// Timeout bounds a whole resolution across all groups. Zero means
	// unbounded.
	Timeout Duration `yaml:"timeout"`

	// EndpointTimeout bounds each individual endpoint query.
	EndpointTimeout Duration `yaml:"endpoint_timeout"`
}

// CacheConfig tunes the result caches.
type CacheConfig struct {
	TTL         Duration `yaml:"ttl"`
	IndexSize   int      `yaml:"index_size"`
	ProfileSize int      `yaml:"profile_size"`
	SearchSize  int      `yaml:"search_size"`

	// SnapshotPath, when set, is the sqlite file cache contents are
	// saved to and restored from across runs.
	SnapshotPath string `yaml:"snapshot_path"`
}

// Config is the root configuration document.
type Config struct {
	Groups   []SourceGroup  `yaml:"groups"`
	Resolver ResolverConfig `yaml:"resolver"`
	Cache    CacheConfig    `yaml:"cache"`
}

// Default returns the configuration used when no file is given: no
// source groups (identifiers resolve through their relay hints only)
// and the resolver's stock budgets and cache bounds.
func Default() Config {
	return Config{
		Resolver: ResolverConfig{
			EndpointTimeout: Duration(resolve.DefaultEndpointTimeout),
		},
		Cache: CacheConfig{
			TTL:         Duration(resolve.DefaultCacheTTL),
			IndexSize:   resolve.DefaultIndexCacheSize,
			ProfileSize: resolve.DefaultProfileCacheSize,
			SearchSize:  resolve.DefaultSearchCacheSize,
		},
	}
}

// Load reads and validates the YAML file at path, applying defaults for
// anything the file leaves unset.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural invariants the YAML schema cannot express.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d]: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("groups[%d]: duplicate group name %q", i, g.Name)
		}
		seen[g.Name] = true
		if len(g.Endpoints) == 0 {
			return fmt.Errorf("group %q: at least one endpoint is required", g.Name)
		}
	}
	if c.Cache.IndexSize <= 0 || c.Cache.ProfileSize <= 0 || c.Cache.SearchSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.Cache.TTL.Std() <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	return nil
}

// SourceGroups maps the configured groups onto the resolver's type.
func (c Config) SourceGroups() []resolve.Group {
	groups := make([]resolve.Group, len(c.Groups))
	for i, g := range c.Groups {
		groups[i] = resolve.Group{
			Name:      g.Name,
			Priority:  g.Priority,
			Endpoints: g.Endpoints,
		}
	}
	return groups
}

// ResolveOptions maps the resolver tuning onto functional options.
func (c Config) ResolveOptions() []resolve.Option {
	var opts []resolve.Option
	if d := c.Resolver.EndpointTimeout.Std(); d > 0 {
		opts = append(opts, resolve.WithEndpointTimeout(d))
	}
	return opts
}
