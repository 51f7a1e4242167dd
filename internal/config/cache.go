package config

import (
	"strings"
	"time"
)

// Cache key strategies.  The caller-aware strategy is the default
// because the cached read endpoints of this API (the available swaps
// listing) return per-caller views; a shared key would serve one
// medic's listing to another.  Caller-independent reads may opt into
// the shared strategy explicitly.
const (
	CacheKeyCaller = "caller_route_query"
	CacheKeyShared = "shared_route_query"
)

// CacheConfig controls the Redis response cache middleware.  Methods
// lists the HTTP methods eligible for caching; TTL bounds how stale a
// cached swap listing may get; MaxBodyBytes caps the size of a
// response worth storing.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig builds a CacheConfig from environment variables.
// The 15s default TTL keeps the available swaps listing close to
// live: a freshly offered swap should surface within seconds.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", CacheKeyCaller),
		Prefix:       getenv("CACHE_PREFIX", "coverage:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
