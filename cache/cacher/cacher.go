package cacher

import (
	"errors"
	"time"
)

var (
	ErrEntryNotFound = errors.New("cache entry not found")
)

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	HitRatio  float64
	TotalKeys int64
}

// Engine is a best-effort volatile key/value store. It is never the source
// of truth: a miss means "unknown", not "nonexistent", and every error from
// an Engine must degrade the caller to the store path instead of failing
// the request.
type Engine interface {
	// Get returns ErrEntryNotFound on a miss.
	Get(key string) (string, error)
	Set(key, value string, expiration time.Duration) error
	// Delete is idempotent; deleting an absent key is not an error.
	Delete(key string) error
	Ping() error
	Stats() (Stats, error)
}
