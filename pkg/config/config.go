// Package config loads smdgraph settings from a TOML or YAML file.
//
// The file is optional. Every field has a built-in default, and a file only
// needs the keys it changes:
//
//	[data]
//	dir = "./kg"
//
//	[query]
//	depth = 4
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[style.nodes]
//	S = "#2563EB"
//
// [Resolve] picks the file: an explicit path, then $SMDGRAPH_CONFIG, then
// $XDG_CONFIG_HOME/smdgraph/config.toml (or config.yaml). Files ending in
// .yaml or .yml are parsed as YAML; everything else as TOML.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/smdgraph/pkg/errors"
	"github.com/matzehuels/smdgraph/pkg/kg/traverse"
	"github.com/matzehuels/smdgraph/pkg/render/style"
)

// EnvVar names the environment variable holding a config path.
const EnvVar = "SMDGRAPH_CONFIG"

// Data source kinds.
const (
	SourceFiles = "files"
	SourceMongo = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the full settings tree.
type Config struct {
	Data   Data         `toml:"data" yaml:"data"`
	Query  Query        `toml:"query" yaml:"query"`
	Cache  Cache        `toml:"cache" yaml:"cache"`
	Server Server       `toml:"server" yaml:"server"`
	Style  *style.Theme `toml:"style,omitempty" yaml:"style,omitempty" validate:"-"`
}

// Data locates the knowledge graph.
type Data struct {
	Source   string `toml:"source" yaml:"source" validate:"oneof=files mongo"`
	Dir      string `toml:"dir" yaml:"dir"`
	EdgeFile string `toml:"edge_file" yaml:"edge_file"`
	Mongo    Mongo  `toml:"mongo" yaml:"mongo"`
}

// Mongo holds the MongoDB source settings.
type Mongo struct {
	URI      string        `toml:"uri" yaml:"uri"`
	Database string        `toml:"database" yaml:"database"`
	Nodes    string        `toml:"nodes" yaml:"nodes"`
	Edges    string        `toml:"edges" yaml:"edges"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout" validate:"gte=0"`
}

// Query holds the defaults applied when a request leaves a parameter unset.
type Query struct {
	Paths   int  `toml:"paths" yaml:"paths" validate:"min=1,max=20"`
	Depth   int  `toml:"depth" yaml:"depth" validate:"min=1,max=10"`
	Level   int  `toml:"level" yaml:"level" validate:"min=1,max=3"`
	Fanout  int  `toml:"fanout" yaml:"fanout" validate:"min=1,max=10"`
	Closure bool `toml:"closure" yaml:"closure"`
}

// Cache selects where rendered artifacts are kept.
type Cache struct {
	Backend  string        `toml:"backend" yaml:"backend" validate:"oneof=none file redis"`
	Dir      string        `toml:"dir" yaml:"dir"`
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr" yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Data: Data{
			Source:   SourceFiles,
			Dir:      ".",
			EdgeFile: "all_edges.json",
			Mongo: Mongo{
				Database: "smdgraph",
				Nodes:    "nodes",
				Edges:    "edges",
				Timeout:  10 * time.Second,
			},
		},
		Query: Query{
			Paths:  traverse.DefaultPaths,
			Depth:  traverse.DefaultDepth,
			Level:  traverse.DefaultLevel,
			Fanout: traverse.DefaultFanout,
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     7 * 24 * time.Hour,
		},
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Resolve returns the config file to read, or "" when none exists. An
// explicit path is returned as is so a missing file is reported by [Load].
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvVar); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, "smdgraph", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads and validates the file at path. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(data, formatOf(path))
}

// Parse decodes data in the given format ("toml" or "yaml") on top of the
// defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	case "toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges, enumerations, cross-field requirements and
// the style section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
	}
	if c.Data.Source == SourceMongo && (c.Data.Mongo.URI == "" || c.Data.Mongo.Database == "") {
		return errors.New(errors.ErrCodeInvalidConfig, "data.source = mongo needs data.mongo.uri and data.mongo.database")
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend = redis needs cache.redis_url")
	}
	if c.Style != nil {
		if err := c.Style.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Theme returns the built-in palette with the style section applied.
func (c *Config) Theme() *style.Theme {
	return style.Default().Merge(c.Style)
}

// PathParams returns the configured path search defaults.
func (c *Config) PathParams() traverse.PathParams {
	return traverse.PathParams{MaxPaths: c.Query.Paths, MaxDepth: c.Query.Depth}
}

// ExpandParams returns the configured expansion defaults.
func (c *Config) ExpandParams() traverse.ExpandParams {
	return traverse.ExpandParams{Level: c.Query.Level, MaxFanout: c.Query.Fanout, Closure: c.Query.Closure}
}

// WriteTOML writes c as TOML to path, creating parent directories.
func (c *Config) WriteTOML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config dir")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write config")
	}
	return nil
}
