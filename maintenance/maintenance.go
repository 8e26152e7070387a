package maintenance

import (
	"context"
	"time"

	"goshortlink/cache/cacher"
	"goshortlink/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Jobs holds the offline housekeeping operations: sweeping expired records
// and preloading the cache with the most clicked links.
type Jobs struct {
	db       repository.Repository
	cache    cacher.Engine
	log      *zap.Logger
	cacheTTL time.Duration
}

func NewJobs(db repository.Repository, cache cacher.Engine, log *zap.Logger, cacheTTL time.Duration) *Jobs {
	return &Jobs{
		db:       db,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// CleanupExpired deletes every expired record and evicts its cache entry.
// Running it again right away deletes nothing.
func (j *Jobs) CleanupExpired(ctx context.Context) (int, error) {
	codes, err := j.db.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	for _, code := range codes {
		if err := j.cache.Delete(code); err != nil {
			j.log.Warn("cache evict failed", zap.String("code", code), zap.Error(err))
		}
	}
	return len(codes), nil
}

// PreloadCache warms the cache with up to limit live records, most clicked
// first. A record that fails to cache is skipped, not fatal.
func (j *Jobs) PreloadCache(ctx context.Context, limit int) (int, error) {
	records, err := j.db.ListActiveByPopularity(ctx, limit)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, record := range records {
		if err := j.cache.Set(record.ShortCode, record.OriginalURL, j.cacheTTL); err != nil {
			j.log.Warn("preload skipped record",
				zap.String("code", record.ShortCode), zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded, nil
}

// Scheduler runs CleanupExpired on a cron schedule with a bounded per-run
// timeout.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(jobs *Jobs, spec string, runTimeout time.Duration, log *zap.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		deleted, err := jobs.CleanupExpired(ctx)
		if err != nil {
			log.Warn("scheduled cleanup failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			log.Info("scheduled cleanup done", zap.Int("deleted", deleted))
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
