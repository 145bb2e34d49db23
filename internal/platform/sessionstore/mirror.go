package sessionstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jsamuelsen/quoteswipe/internal/platform/cache"
)

// KeyPrefix namespaces mirrored cache entries.
const KeyPrefix = "qs_cache_"

// Mirrored keys used across the application.
const (
	KeyCardTheme      = "cardTheme"
	KeyCardFont       = "cardFont"
	KeyCardBackground = "cardBackground"
	KeyCurrentIndex   = "currentIndex"
	KeyCurrentPath    = "currentPath"
	KeyQuotesPrefix   = "quotes_"
)

// entry is the serialized form. Timestamp is in Unix milliseconds.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// QuotesKey returns the mirror key for a quote list cached under cacheKey.
func QuotesKey(cacheKey string) string {
	return KeyQuotesPrefix + cacheKey
}

// GetFromCache reads key from the mirror. Missing, corrupt or stale entries
// yield fallback; an entry is fresh while now - timestamp < ttl.
func GetFromCache[T any](s Storage, clock cache.Clock, key string, ttl time.Duration, fallback T) T {
	v, ok := Lookup[T](s, clock, key, ttl)
	if !ok {
		return fallback
	}

	return v
}

// Lookup is GetFromCache that reports whether a fresh value was found.
func Lookup[T any](s Storage, clock cache.Clock, key string, ttl time.Duration) (T, bool) {
	var zero T

	raw, ok := s.GetItem(KeyPrefix + key)
	if !ok {
		return zero, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Data == nil {
		return zero, false
	}

	age := clock.Now().Sub(time.UnixMilli(e.Timestamp))
	if age >= ttl {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, false
	}

	return v, true
}

// SetToCache writes value under key, stamped with the current time.
func SetToCache(s Storage, clock cache.Clock, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	raw, err := json.Marshal(entry{Data: data, Timestamp: clock.Now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	if err := s.SetItem(KeyPrefix+key, string(raw)); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}

	return nil
}

// RemoveFromCache deletes a mirrored entry.
func RemoveFromCache(s Storage, key string) {
	s.RemoveItem(KeyPrefix + key)
}

// ClearCache removes every mirrored entry whose key starts with prefix.
// An empty prefix clears the whole mirror; unrelated keys are kept.
func ClearCache(s Storage, prefix string) int {
	n := 0

	for _, k := range s.Keys() {
		if strings.HasPrefix(k, KeyPrefix+prefix) {
			s.RemoveItem(k)
			n++
		}
	}

	return n
}
