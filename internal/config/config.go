// Package config loads the mmb.toml configuration file.
//
//	[layout]
//	max_steps = 1000
//	fix_obstacles = true
//	fix_non_straight = true
//	fix_intersections = true
//	debug_info = false
//
//	[cache]
//	backend = "file"      # file, redis or none
//	dir = ""              # file backend; empty means the user cache dir
//	redis_addr = "localhost:6379"
//	ttl = "168h"
//	prefix = ""
//
//	[store]
//	backend = "file"      # file or mongo
//	dir = ""
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "mmb"
//
//	[server]
//	addr = ":8080"
//
// Keys left out keep their defaults; unknown keys are an error.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/cache"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/layout"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/store"
)

// FileName is the configuration file name.
const FileName = "mmb.toml"

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
	BackendMongo = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds builder switches.
type LayoutConfig struct {
	MaxSteps         int  `toml:"max_steps"`
	FixObstacles     bool `toml:"fix_obstacles"`
	FixNonStraight   bool `toml:"fix_non_straight"`
	FixIntersections bool `toml:"fix_intersections"`
	DebugInfo        bool `toml:"debug_info"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	Prefix        string   `toml:"prefix"`
}

// StoreConfig selects the history store backend.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures `mmb serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("90m", "168h").
type Duration struct{ time.Duration }

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	lo := layout.DefaultOptions()
	return &Config{
		Layout: LayoutConfig{
			MaxSteps:         lo.MaxSteps,
			FixObstacles:     lo.FixObstacles,
			FixNonStraight:   lo.FixNonStraight,
			FixIntersections: lo.FixIntersections,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration{cache.DefaultTTL},
		},
		Store: StoreConfig{
			Backend:       BackendFile,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "mmb",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns <user config dir>/mmb/mmb.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "mmb", FileName), nil
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document over the defaults.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate checks backend names and ranges.
func (c *Config) Validate() error {
	if c.Layout.MaxSteps < 0 {
		return fmt.Errorf("layout.max_steps must not be negative, got %d", c.Layout.MaxSteps)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if !slices.Contains([]string{BackendFile, BackendMongo}, c.Store.Backend) {
		return fmt.Errorf("store.backend must be file or mongo, got %q", c.Store.Backend)
	}
	return nil
}

// PipelineOptions returns pipeline options built from the layout section.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		MaxSteps:         c.Layout.MaxSteps,
		FixObstacles:     c.Layout.FixObstacles,
		FixNonStraight:   c.Layout.FixNonStraight,
		FixIntersections: c.Layout.FixIntersections,
		DebugInfo:        c.Layout.DebugInfo,
	}
}

// Keyer returns the cache keyer, scoped by cache.prefix.
func (c *Config) Keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// OpenCache opens the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.RedisPassword, c.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	fc, err := cache.NewFileCache(c.Cache.Dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// OpenStore opens the configured history store.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	if c.Store.Backend == BackendMongo {
		ms, err := store.NewMongoStore(ctx, c.Store.MongoURI, c.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(c.Store.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}
