package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"goshortlink/cache/cacher"
	"goshortlink/codec"
	"goshortlink/models"
	"goshortlink/pkg/multicas"
	"goshortlink/repository"

	"go.uber.org/zap"
)

const (
	maxURLLength = 2048

	// backgroundTimeout bounds the detached store/cache calls (click
	// accounting, lazy eviction, cache warming) that no request waits for.
	backgroundTimeout = 5 * time.Second
)

// Result is what the write pipeline hands back to the HTTP layer.
type Result struct {
	ShortCode   string
	ShortURL    string
	OriginalURL string
	IsNew       bool
}

// Service implements the write and read pipelines over an injected store
// and cache. The store is the source of truth; every cache failure only
// costs latency.
type Service struct {
	db       repository.Repository
	cache    cacher.Engine
	mcas     multicas.MultiCAS
	log      *zap.Logger
	baseURL  string
	cacheTTL time.Duration
}

func New(db repository.Repository, cache cacher.Engine, log *zap.Logger, baseURL string, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		mcas:     multicas.NewMultiCAS(),
		log:      log,
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
	}
}

// Shorten validates rawURL, deduplicates non-expiring requests, persists a
// record in two phases (insert for the id, then fill in the derived code)
// and warms the cache.
func (s *Service) Shorten(ctx context.Context, rawURL string, expiresAt *time.Time) (*Result, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, &ValidationError{Reason: "expiry must be in the future"}
	}

	// Dedup only applies to non-expiring requests; a failed lookup is a
	// lost optimization, not a failed write.
	if expiresAt == nil {
		existing, err := s.db.FindActiveByURL(ctx, rawURL)
		if err == nil {
			return s.result(existing.ShortCode, existing.OriginalURL, false), nil
		}
		if !errors.Is(err, repository.ErrRecordNotFound) {
			s.log.Warn("dedup lookup failed, creating anyway",
				zap.String("url", rawURL), zap.Error(err))
		}
	}

	id, err := s.db.Insert(ctx, rawURL, expiresAt)
	if err != nil {
		return nil, &StorageError{Op: "insert", Err: err}
	}

	code := codec.Encode(id)
	if err := s.db.UpdateCode(ctx, id, code); err != nil {
		return nil, &StorageError{Op: "update code", Err: err}
	}

	if ttl := s.warmTTL(expiresAt); ttl > 0 {
		if err := s.cache.Set(code, rawURL, ttl); err != nil {
			s.log.Warn("cache warm failed", zap.String("code", code), zap.Error(err))
		}
	}

	return s.result(code, rawURL, true), nil
}

// Resolve is the cache-first read pipeline. The fast path costs one cache
// round-trip; the slow path one store round-trip. Click accounting, lazy
// eviction and cache warming all run detached.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	cached, err := s.cache.Get(code)
	if err == nil {
		s.asyncIncrementClicks(code)
		return cached, nil
	}
	if !errors.Is(err, cacher.ErrEntryNotFound) {
		// unavailable cache degrades to a miss
		s.log.Warn("cache get failed, falling back to store",
			zap.String("code", code), zap.Error(err))
	}

	record, err := s.db.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &StorageError{Op: "find by code", Err: err}
	}

	if record.Expired() {
		s.asyncEvict(code)
		return "", ErrNotFound
	}

	s.asyncWarm(code, record.OriginalURL, record.ExpiresAt)
	s.asyncIncrementClicks(code)
	return record.OriginalURL, nil
}

// Stats returns the record behind a code, applying the same lazy-expiry
// rule as Resolve.
func (s *Service) Stats(ctx context.Context, code string) (*models.Url, error) {
	record, err := s.db.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "find by code", Err: err}
	}
	if record.Expired() {
		s.asyncEvict(code)
		return nil, ErrNotFound
	}
	return record, nil
}

func (s *Service) result(code, originalURL string, isNew bool) *Result {
	return &Result{
		ShortCode:   code,
		ShortURL:    fmt.Sprintf("%s/%s", s.baseURL, code),
		OriginalURL: originalURL,
		IsNew:       isNew,
	}
}

// asyncIncrementClicks schedules a single atomic counter bump. Concurrent
// redirects for one code each issue their own; the store serializes them.
func (s *Service) asyncIncrementClicks(code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := s.db.IncrementClicks(ctx, code); err != nil {
			s.log.Warn("click accounting failed", zap.String("code", code), zap.Error(err))
		}
	}()
}

// asyncEvict lazily deletes an expired record from store and cache. The
// caller answers not-found without waiting for it.
func (s *Service) asyncEvict(code string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		if err := s.db.DeleteByCode(ctx, code); err != nil {
			s.log.Warn("lazy delete failed", zap.String("code", code), zap.Error(err))
		}
		if err := s.cache.Delete(code); err != nil {
			s.log.Warn("cache evict failed", zap.String("code", code), zap.Error(err))
		}
	}()
}

// asyncWarm repopulates the cache after a store hit. The multicas guard
// keeps a burst of misses for one code down to a single SET.
func (s *Service) asyncWarm(code, originalURL string, expiresAt *time.Time) {
	ttl := s.warmTTL(expiresAt)
	if ttl <= 0 {
		return
	}
	go func() {
		if !s.mcas.Set(code) {
			return
		}
		defer s.mcas.Unset(code)
		if err := s.cache.Set(code, originalURL, ttl); err != nil {
			s.log.Warn("cache warm failed", zap.String("code", code), zap.Error(err))
		}
	}()
}

// warmTTL clamps the standard TTL to the record's own expiry, so a cache
// entry can never outlive the record it fronts. The cache-hit path has no
// expiry knowledge; this clamp is what keeps it honest.
func (s *Service) warmTTL(expiresAt *time.Time) time.Duration {
	if expiresAt == nil {
		return s.cacheTTL
	}
	if remaining := time.Until(*expiresAt); remaining < s.cacheTTL {
		return remaining
	}
	return s.cacheTTL
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Reason: "url is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{Reason: fmt.Sprintf("url exceeds %d characters", maxURLLength)}
	}
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid url: %s", err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Reason: "url scheme must be http or https"}
	}
	if parsed.Host == "" {
		return &ValidationError{Reason: "url host is required"}
	}
	return nil
}
