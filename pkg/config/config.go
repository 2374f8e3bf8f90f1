// Package config loads the systemmap TOML configuration file.
//
// A configuration has four sections:
//
//	[layout]   sizing preset (every layout.Config field)
//	[source]   where the content tree comes from
//	[cache]    where layouts and artifacts are cached
//	[server]   HTTP listen address
//
// Missing sections and keys keep their defaults, so an empty file is a valid
// configuration. A handful of deployment settings can also be overridden
// from the environment (see [Config.ApplyEnv]).
package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/systemmap/pkg/errors"
	"github.com/matzehuels/systemmap/pkg/layout"
)

// DefaultFile is the configuration file looked up in the working directory
// when no path is given.
const DefaultFile = "systemmap.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYSTEMMAP_"

// Source kinds.
const (
	SourceStatic = "static"
	SourceMdoc   = "mdoc"
	SourceSQLite = "sqlite"
	SourceMongo  = "mongo"
)

// Cache kinds.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

var (
	sourceKinds = []string{SourceStatic, SourceMdoc, SourceSQLite, SourceMongo}
	cacheKinds  = []string{CacheNone, CacheFile, CacheRedis}
)

// Config is the full configuration.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Source SourceConfig  `toml:"source"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// SourceConfig selects the content tree source.
type SourceConfig struct {
	Kind string `toml:"kind"`

	// Path is the JSON file (static), content directory (mdoc) or database
	// file (sqlite).
	Path string `toml:"path"`

	// Mongo connection.
	URI        string   `toml:"uri"`
	Database   string   `toml:"database"`
	Collection string   `toml:"collection"`
	Timeout    Duration `toml:"timeout"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Kind string `toml:"kind"`

	// Dir is the file cache directory. Empty means the user cache dir.
	Dir string `toml:"dir"`

	// Redis connection.
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`

	LayoutTTL   Duration `toml:"layout_ttl"`
	ArtifactTTL Duration `toml:"artifact_ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// Origins allowed to call the API from a browser. Empty disables CORS.
	AllowedOrigins []string `toml:"allowed_origins"`

	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in time.Duration string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration: the bundled JSON tree, a
// file cache and the default sizing preset.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Source: SourceConfig{
			Kind: SourceStatic,
			Path: "content.json",
		},
		Cache: CacheConfig{
			Kind:        CacheFile,
			Addr:        "localhost:6379",
			Prefix:      "systemmap:",
			LayoutTTL:   Duration{24 * time.Hour},
			ArtifactTTL: Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// Load reads the configuration at path on top of [Default]. An empty path
// tries [DefaultFile] and falls back to the defaults when it does not exist.
// Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(path, data); err != nil {
			return Config{}, err
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	case os.IsNotExist(err):
		return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
	default:
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of [Default] without touching the
// environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	if err := cfg.decode("config", []byte(data)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode rejects unknown keys so typos do not silently fall back to defaults.
func (c *Config) decode(name string, data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides deployment settings from the environment:
//
//	SYSTEMMAP_SOURCE       source kind
//	SYSTEMMAP_SOURCE_PATH  source path
//	SYSTEMMAP_MONGO_URI    mongo connection string
//	SYSTEMMAP_CACHE        cache kind
//	SYSTEMMAP_REDIS_ADDR   redis address
//	SYSTEMMAP_ADDR         server listen address
//
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	set("SOURCE", &c.Source.Kind)
	set("SOURCE_PATH", &c.Source.Path)
	set("MONGO_URI", &c.Source.URI)
	set("CACHE", &c.Cache.Kind)
	set("REDIS_ADDR", &c.Cache.Addr)
	set("ADDR", &c.Server.Addr)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if !slices.Contains(sourceKinds, c.Source.Kind) {
		return errs.New(errs.ErrCodeInvalidConfig, "source.kind %q must be one of: %s", c.Source.Kind, strings.Join(sourceKinds, ", "))
	}
	if c.Source.Kind != SourceMongo && c.Source.Path == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "source.path is required for %s sources", c.Source.Kind)
	}
	if !slices.Contains(cacheKinds, c.Cache.Kind) {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.kind %q must be one of: %s", c.Cache.Kind, strings.Join(cacheKinds, ", "))
	}
	if c.Cache.Kind == CacheRedis && c.Cache.Addr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.addr is required for the redis cache")
	}
	if c.Cache.LayoutTTL.Duration < 0 || c.Cache.ArtifactTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache ttls must not be negative")
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "server.addr is required")
	}
	return nil
}
