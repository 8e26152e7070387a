package inmemory

import (
	"sync/atomic"
	"time"

	"goshortlink/cache/cacher"

	gocache "github.com/patrickmn/go-cache"
)

// New returns an in-memory cache engine, the cache binding for tests and
// single-process deployments.
func New(defaultExp, defaultClearInterval time.Duration) cacher.Engine {
	return &inMemory{
		engine: gocache.New(defaultExp, defaultClearInterval),
	}
}

type inMemory struct {
	engine *gocache.Cache
	hits   int64
	misses int64
}

func (i *inMemory) Get(key string) (string, error) {
	data, found := i.engine.Get(key)
	if !found {
		atomic.AddInt64(&i.misses, 1)
		return "", cacher.ErrEntryNotFound
	}
	value, ok := data.(string)
	if !ok {
		atomic.AddInt64(&i.misses, 1)
		return "", cacher.ErrEntryNotFound
	}
	atomic.AddInt64(&i.hits, 1)
	return value, nil
}

func (i *inMemory) Set(key, value string, expiration time.Duration) error {
	i.engine.Set(key, value, expiration)
	return nil
}

func (i *inMemory) Delete(key string) error {
	i.engine.Delete(key)
	return nil
}

func (i *inMemory) Ping() error {
	return nil
}

func (i *inMemory) Stats() (cacher.Stats, error) {
	hits := atomic.LoadInt64(&i.hits)
	misses := atomic.LoadInt64(&i.misses)

	var hitRatio float64
	if hits+misses > 0 {
		hitRatio = float64(hits) / float64(hits+misses)
	}
	return cacher.Stats{
		HitRatio:  hitRatio,
		TotalKeys: int64(i.engine.ItemCount()),
	}, nil
}
