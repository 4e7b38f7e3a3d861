// Package config provides reading and writing of smartbar configuration.
// Supports both global (~/.smartbar/config.yaml) and local (.smartbar/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/smartbar/internal/auth"
	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/extract"
	"github.com/jpl-au/smartbar/internal/query"
	"github.com/jpl-au/smartbar/internal/search"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.smartbar/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is workspace-specific config in .smartbar/config.yaml
	ScopeLocal
)

// Dir is the directory both config scopes live in.
const Dir = ".smartbar"

// Keyboard shortcuts the palette can be bound to.
const (
	ShortcutCtrlK     = "ctrl+k"
	ShortcutCtrlSpace = "ctrl+space"
	ShortcutCtrlSlash = "ctrl+/"
)

// Shortcuts lists the accepted shortcut values.
var Shortcuts = []string{ShortcutCtrlK, ShortcutCtrlSpace, ShortcutCtrlSlash}

// Site holds the URLs results link to.
type Site struct {
	URL       string `yaml:"url,omitempty"`
	AdminPath string `yaml:"admin_path,omitempty"`
	Currency  string `yaml:"currency,omitempty"`
}

// Search holds query and access options.
type Search struct {
	Limit    *int   `yaml:"limit,omitempty"`
	Fuzzy    *bool  `yaml:"fuzzy,omitempty"`
	Boundary string `yaml:"boundary,omitempty"`
}

// Cache holds result cache bounds. TTL is in seconds.
type Cache struct {
	Size *int `yaml:"size,omitempty"`
	TTL  *int `yaml:"ttl,omitempty"`
}

// Extract holds the page-builder text heuristics.
type Extract struct {
	MinLength      *int     `yaml:"min_length,omitempty"`
	MinAlnumRatio  *float64 `yaml:"min_alnum_ratio,omitempty"`
	ShortLength    *int     `yaml:"short_length,omitempty"`
	SkipSubstrings []string `yaml:"skip_substrings,omitempty"`
}

// Log holds structured logger options.
type Log struct {
	Env   string `yaml:"env,omitempty"`
	Level string `yaml:"level,omitempty"`
}

// Server holds HTTP API options. With no API keys the API is open.
type Server struct {
	Addr    string   `yaml:"addr,omitempty"`
	APIKeys []string `yaml:"api_keys,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultSiteURL    = "http://localhost"
	DefaultAdminPath  = "/wp-admin/"
	DefaultCurrency   = "$"
	DefaultServerAddr = "127.0.0.1:8484"
)

// Validation bounds for configuration values.
const (
	MaxSearchLimit = 500
	MaxCacheSize   = 1_000_000
	MaxCacheTTL    = 24 * 60 * 60
)

// Config contains configuration for smartbar.
type Config struct {
	Shortcut    string          `yaml:"shortcut,omitempty"`
	SearchTypes []string        `yaml:"search_types,omitempty"`
	Site        Site            `yaml:"site,omitempty"`
	Search      Search          `yaml:"search,omitempty"`
	Cache       Cache           `yaml:"cache,omitempty"`
	Extract     Extract         `yaml:"extract,omitempty"`
	Log         Log             `yaml:"log,omitempty"`
	Server      Server          `yaml:"server,omitempty"`
	Actions     []search.Action `yaml:"actions,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
// Shortcut and search types are never rejected; they are sanitised on read.
func (c *Config) Validate() error {
	if c.Search.Limit != nil {
		v := *c.Search.Limit
		if v < 1 || v > MaxSearchLimit {
			return fmt.Errorf("%w: search.limit must be between 1 and %d, got %d",
				ErrInvalidValue, MaxSearchLimit, v)
		}
	}
	if c.Cache.Size != nil {
		v := *c.Cache.Size
		if v < 0 || v > MaxCacheSize {
			return fmt.Errorf("%w: cache.size must be between 0 and %d, got %d",
				ErrInvalidValue, MaxCacheSize, v)
		}
	}
	if c.Cache.TTL != nil {
		v := *c.Cache.TTL
		if v < 1 || v > MaxCacheTTL {
			return fmt.Errorf("%w: cache.ttl must be between 1 and %d seconds, got %d",
				ErrInvalidValue, MaxCacheTTL, v)
		}
	}
	if c.Extract.MinAlnumRatio != nil {
		v := *c.Extract.MinAlnumRatio
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: extract.min_alnum_ratio must be between 0 and 1, got %g",
				ErrInvalidValue, v)
		}
	}
	for i, a := range c.Actions {
		if a.Title == "" || a.URL == "" {
			return fmt.Errorf("%w: actions[%d] needs a title and a url", ErrInvalidValue, i)
		}
	}
	return nil
}

// KeyboardShortcut returns the configured shortcut. Anything outside
// Shortcuts falls back to ctrl+k.
func (c *Config) KeyboardShortcut() string {
	if slices.Contains(Shortcuts, c.Shortcut) {
		return c.Shortcut
	}
	return ShortcutCtrlK
}

// Types returns the configured search types with unknown entries dropped.
// When nothing has been configured the defaults apply; an explicitly
// configured list that sanitises to nothing stays empty.
func (c *Config) Types() []content.SearchType {
	if c.SearchTypes == nil {
		return slices.Clone(content.DefaultTypes)
	}
	return content.ParseTypes(c.SearchTypes)
}

// SiteURL returns the public site URL (defaults to http://localhost).
func (c *Config) SiteURL() string {
	if c.Site.URL == "" {
		return DefaultSiteURL
	}
	return c.Site.URL
}

// AdminPath returns the admin area path (defaults to /wp-admin/).
func (c *Config) AdminPath() string {
	if c.Site.AdminPath == "" {
		return DefaultAdminPath
	}
	return c.Site.AdminPath
}

// Currency returns the price symbol (defaults to $).
func (c *Config) Currency() string {
	if c.Site.Currency == "" {
		return DefaultCurrency
	}
	return c.Site.Currency
}

// SearchLimit returns the per-search result bound.
func (c *Config) SearchLimit() int {
	if c.Search.Limit == nil {
		return search.DefaultLimit
	}
	return *c.Search.Limit
}

// Fuzzy returns whether the fuzzy fallback phase runs (defaults to true).
func (c *Config) Fuzzy() bool {
	if c.Search.Fuzzy == nil {
		return true
	}
	return *c.Search.Fuzzy
}

// Boundary returns the capability required to search at all (defaults to read).
func (c *Config) Boundary() string {
	if c.Search.Boundary == "" {
		return auth.CapRead
	}
	return c.Search.Boundary
}

// CacheSize returns the result cache capacity. Zero disables the cache.
func (c *Config) CacheSize() int {
	if c.Cache.Size == nil {
		return query.DefaultCacheSize
	}
	return *c.Cache.Size
}

// CacheTTL returns how long cached results live.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == nil {
		return query.DefaultCacheTTL
	}
	return time.Duration(*c.Cache.TTL) * time.Second
}

// Heuristics returns the extraction heuristics with configured overrides
// applied over the defaults.
func (c *Config) Heuristics() extract.Heuristics {
	h := extract.DefaultHeuristics()
	if c.Extract.MinLength != nil {
		h.MinLength = *c.Extract.MinLength
	}
	if c.Extract.MinAlnumRatio != nil {
		h.MinAlnumRatio = *c.Extract.MinAlnumRatio
	}
	if c.Extract.ShortLength != nil {
		h.ShortLength = *c.Extract.ShortLength
	}
	if c.Extract.SkipSubstrings != nil {
		h.SkipSubstrings = c.Extract.SkipSubstrings
	}
	return h
}

// ServerAddr returns the HTTP listen address.
func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

// LocalPath returns the path to the local (workspace) config file.
func LocalPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.smartbar/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	return LoadAt(LocalPath())
}

// LoadAt is Load with the local config file at local, for workspaces found
// outside the working directory.
func LoadAt(local string) (*Config, error) {
	if local != "" {
		if _, err := os.Stat(local); err == nil {
			return LoadFile(local, ScopeLocal)
		}
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	return LoadFile(pathForScope(scope), scope)
}

// LoadFile reads configuration from path. A missing file yields an empty
// config that saves back to path.
func LoadFile(path string, scope Scope) (*Config, error) {
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
