package repository

import (
	"context"
	"sync"
	"time"

	"bstn/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCacheRepository serves from the primary store and switches to the
// fallback on the first primary error. The primary is retried once per
// recoveryInterval.
type FailoverCacheRepository struct {
	primary  domain.CacheRepository
	fallback domain.CacheRepository
	logger   *zerolog.Logger

	mu        sync.Mutex
	isDown    bool
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the next call should go to the primary store.
func (r *FailoverCacheRepository) usePrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.isDown {
		return true
	}
	if r.now().Sub(r.lastCheck) > recoveryInterval {
		r.lastCheck = r.now()
		return true
	}
	return false
}

// report records the outcome of a primary call and reports whether the
// primary has just recovered. Bookings made during the outage only bumped the
// fallback, so a recovered primary gets its generation bumped before it serves
// searches again.
func (r *FailoverCacheRepository) report(ctx context.Context, err error) bool {
	r.mu.Lock()
	if err != nil {
		if !r.isDown {
			r.logger.Error().Err(err).Msg("Primary cache repository failed, falling back to memory")
		}
		r.isDown = true
		r.lastCheck = r.now()
		r.mu.Unlock()
		return false
	}
	recovered := r.isDown
	r.isDown = false
	r.mu.Unlock()

	if !recovered {
		return false
	}
	if bumpErr := r.primary.BumpGeneration(ctx); bumpErr != nil {
		r.report(ctx, bumpErr)
		return false
	}
	r.logger.Info().Msg("Primary cache repository recovered")
	return true
}

// IsDown reports whether calls currently go to the fallback.
func (r *FailoverCacheRepository) IsDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isDown
}

func (r *FailoverCacheRepository) Generation(ctx context.Context) (int64, error) {
	if r.usePrimary() {
		gen, err := r.primary.Generation(ctx)
		if r.report(ctx, err) {
			gen, err = r.primary.Generation(ctx)
			r.report(ctx, err)
		}
		if err == nil {
			return gen, nil
		}
	}
	return r.fallback.Generation(ctx)
}

// BumpGeneration bumps both stores so neither serves results from before the
// change once it becomes active again.
func (r *FailoverCacheRepository) BumpGeneration(ctx context.Context) error {
	fallbackErr := r.fallback.BumpGeneration(ctx)
	if r.usePrimary() {
		err := r.primary.BumpGeneration(ctx)
		r.report(ctx, err)
		if err == nil {
			return nil
		}
	}
	return fallbackErr
}

func (r *FailoverCacheRepository) GetSearch(ctx context.Context, key string) ([]byte, bool, error) {
	if r.usePrimary() {
		val, ok, err := r.primary.GetSearch(ctx, key)
		if r.report(ctx, err) {
			// key was built from a generation read before the recovery
			return nil, false, nil
		}
		if err == nil {
			return val, ok, nil
		}
	}
	return r.fallback.GetSearch(ctx, key)
}

func (r *FailoverCacheRepository) SetSearch(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SetSearch(ctx, key, value, ttl)
		r.report(ctx, err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.SetSearch(ctx, key, value, ttl)
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, actorID, limit, window)
		r.report(ctx, err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, actorID, limit, window)
}
