// Package cache stores Graphviz layout results between editing sessions.
//
// Graphviz runs are the slowest part of a gesture that relayouts a scope
// or routes splines, and the same DOT input always produces the same output
// for a given engine. Results are therefore cached by content hash:
//
//	c, _ := cache.NewFileCache(cache.DefaultDir())
//	key := cache.LayoutKey("dot", dotBytes)
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // reuse data
//	}
//
// [NullCache] disables caching; [Observed] reports hits and misses to the
// observability hooks; [Scoped] namespaces keys, typically by build version
// so that an upgrade never reads stale layouts.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/graphedit/pkg/observability"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// =============================================================================
// Keys
// =============================================================================

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data as 64 hex characters.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// LayoutKey keys a layout of dot by engine.
func LayoutKey(engine string, dot []byte) string {
	return hashKey("layout", engine, Hash(dot))
}

// =============================================================================
// Wrappers
// =============================================================================

// NullCache never stores anything.
type NullCache struct{}

func (NullCache) Get(context.Context, string) ([]byte, bool, error)          { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                      { return nil }
func (NullCache) Close() error                                              { return nil }

type scoped struct {
	Cache
	prefix string
}

// Scoped prefixes every key of c.
func Scoped(c Cache, prefix string) Cache {
	return &scoped{Cache: c, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.Cache.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.Cache.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Cache.Delete(ctx, s.prefix+key)
}

type observed struct {
	Cache
	keyType string
}

// Observed reports the traffic of c to the registered cache hooks under
// keyType.
func Observed(c Cache, keyType string) Cache {
	return &observed{Cache: c, keyType: keyType}
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	switch {
	case err != nil:
	case ok:
		observability.Cache().OnCacheHit(ctx, o.keyType)
	default:
		observability.Cache().OnCacheMiss(ctx, o.keyType)
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := o.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, o.keyType, len(data))
	return nil
}

var (
	_ Cache = NullCache{}
	_ Cache = (*scoped)(nil)
	_ Cache = (*observed)(nil)
)
