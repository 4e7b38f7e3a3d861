// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go so that file stays about YAML structure and
// loading, while this one serves the CLI, HTTP and MCP surfaces that address
// settings by string key (e.g., "cache.ttl"). Actions are list-shaped and
// only editable in the YAML file.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/duration"
	"github.com/jpl-au/smartbar/internal/logger"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"shortcut", "search_types",
		"site.url", "site.admin_path", "site.currency",
		"search.limit", "search.fuzzy", "search.boundary",
		"cache.size", "cache.ttl",
		"extract.min_length", "extract.min_alnum_ratio", "extract.short_length", "extract.skip_substrings",
		"log.env", "log.level",
		"server.addr",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the effective value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	v, ok := c.All()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// Set sets the value of a configuration key. The shortcut and search types
// are sanitised the same way they are on read, so an unknown shortcut is
// stored as ctrl+k and unknown search types are dropped.
func (c *Config) Set(key, value string) error {
	switch key {
	case "shortcut":
		c.Shortcut = value
		c.Shortcut = c.KeyboardShortcut()
	case "search_types":
		c.SearchTypes = content.Strings(content.ParseTypes(splitList(value)))
	case "site.url":
		c.Site.URL = value
	case "site.admin_path":
		c.Site.AdminPath = value
	case "site.currency":
		c.Site.Currency = value
	case "search.limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxSearchLimit {
			return fmt.Errorf("%w: search.limit must be an integer between 1 and %d", ErrInvalidValue, MaxSearchLimit)
		}
		c.Search.Limit = &n
	case "search.fuzzy":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Search.Fuzzy = &b
	case "search.boundary":
		c.Search.Boundary = value
	case "cache.size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > MaxCacheSize {
			return fmt.Errorf("%w: cache.size must be an integer between 0 and %d", ErrInvalidValue, MaxCacheSize)
		}
		c.Cache.Size = &n
	case "cache.ttl":
		n, err := duration.Seconds(value)
		if err != nil || n < 1 || n > MaxCacheTTL {
			return fmt.Errorf("%w: cache.ttl must be between 1s and %d seconds (e.g. 300, 5m, 1h)", ErrInvalidValue, MaxCacheTTL)
		}
		c.Cache.TTL = &n
	case "extract.min_length":
		n, err := positive(key, value)
		if err != nil {
			return err
		}
		c.Extract.MinLength = &n
	case "extract.min_alnum_ratio":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("%w: extract.min_alnum_ratio must be a number between 0 and 1", ErrInvalidValue)
		}
		c.Extract.MinAlnumRatio = &f
	case "extract.short_length":
		n, err := positive(key, value)
		if err != nil {
			return err
		}
		c.Extract.ShortLength = &n
	case "extract.skip_substrings":
		c.Extract.SkipSubstrings = splitList(value)
	case "log.env":
		if value != logger.EnvDev && value != logger.EnvProd {
			return fmt.Errorf("%w: log.env must be %s or %s", ErrInvalidValue, logger.EnvDev, logger.EnvProd)
		}
		c.Log.Env = value
	case "log.level":
		switch value {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: log.level must be debug, info, warn or error", ErrInvalidValue)
		}
		c.Log.Level = value
	case "server.addr":
		c.Server.Addr = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all effective configuration values as a map.
func (c *Config) All() map[string]string {
	h := c.Heuristics()
	return map[string]string{
		"shortcut":                c.KeyboardShortcut(),
		"search_types":            strings.Join(content.Strings(c.Types()), ","),
		"site.url":                c.SiteURL(),
		"site.admin_path":         c.AdminPath(),
		"site.currency":           c.Currency(),
		"search.limit":            strconv.Itoa(c.SearchLimit()),
		"search.fuzzy":            strconv.FormatBool(c.Fuzzy()),
		"search.boundary":         c.Boundary(),
		"cache.size":              strconv.Itoa(c.CacheSize()),
		"cache.ttl":               strconv.Itoa(int(c.CacheTTL().Seconds())),
		"extract.min_length":      strconv.Itoa(h.MinLength),
		"extract.min_alnum_ratio": strconv.FormatFloat(h.MinAlnumRatio, 'g', -1, 64),
		"extract.short_length":    strconv.Itoa(h.ShortLength),
		"extract.skip_substrings": strings.Join(h.SkipSubstrings, ","),
		"log.env":                 c.Log.Env,
		"log.level":               c.Log.Level,
		"server.addr":             c.ServerAddr(),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "shortcut":
		return c.Shortcut != ""
	case "search_types":
		return c.SearchTypes != nil
	case "site.url":
		return c.Site.URL != ""
	case "site.admin_path":
		return c.Site.AdminPath != ""
	case "site.currency":
		return c.Site.Currency != ""
	case "search.limit":
		return c.Search.Limit != nil
	case "search.fuzzy":
		return c.Search.Fuzzy != nil
	case "search.boundary":
		return c.Search.Boundary != ""
	case "cache.size":
		return c.Cache.Size != nil
	case "cache.ttl":
		return c.Cache.TTL != nil
	case "extract.min_length":
		return c.Extract.MinLength != nil
	case "extract.min_alnum_ratio":
		return c.Extract.MinAlnumRatio != nil
	case "extract.short_length":
		return c.Extract.ShortLength != nil
	case "extract.skip_substrings":
		return c.Extract.SkipSubstrings != nil
	case "log.env":
		return c.Log.Env != ""
	case "log.level":
		return c.Log.Level != ""
	case "server.addr":
		return c.Server.Addr != ""
	default:
		return false
	}
}

// splitList splits a comma-separated value, trimming blanks. It never
// returns nil so an explicit empty list stays distinguishable from unset.
func splitList(value string) []string {
	out := []string{}
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(key, value string) (bool, error) {
	v := strings.ToLower(value)
	if v != "true" && v != "false" {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
	}
	return v == "true", nil
}

func positive(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidValue, key)
	}
	return n, nil
}
