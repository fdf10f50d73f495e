// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [NullCache]: never stores anything
//   - [FileCache]: JSON entry files under the user cache directory, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: durable cache with a TTL index on expiry
//
// [Open] picks a backend from [Options].
//
// # Keys
//
// A [Keyer] derives keys from content hashes. A layout key combines the chart hash
// with the engine parameters; an artifact key combines the layout hash with the
// render parameters. [Prefixed] prefixes every key so several tenants can share
// one backend.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes. Layouts depend only on the chart and engine
// parameters, so they outlive rendered artifacts.
const (
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with optional per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
