package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig defines settings for the appointment cache coordinator. TTL
// bounds how long a fetched day list is served without a refresh. When
// Enabled is false the coordinator still runs but every render re-reads from
// the API (useful in tests and development).
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// EffectiveTTL is the TTL the coordinator should run with. Disabled means a
// nanosecond TTL, so each read finds its entry already expired.
func (c CacheConfig) EffectiveTTL() time.Duration {
	if !c.Enabled {
		return time.Nanosecond
	}
	return c.TTL
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "30s")),
	}
}

// Helper functions shared with the other config files.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
