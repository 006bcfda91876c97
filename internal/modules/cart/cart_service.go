package cart

import (
	"context"
	"os"
	"strconv"
	"time"

	"checkout-and-tracking/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const feeCacheTTL = 10 * time.Minute

// ServiceInterface prices a cart into an immutable snapshot.
type ServiceInterface interface {
	Snapshot(ctx context.Context, restaurantID string, items []models.LineItem) *models.CartSnapshot
}

// CacheInterface is the subset of a cache the fee lookup needs.
type CacheInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Service computes cart snapshots. The delivery fee comes from the restaurant
// lookup behind a cache; when both fail the configured default applies, so a
// snapshot is always produced and never blocks checkout.
type Service struct {
	repo       RepositoryInterface
	cache      CacheInterface
	taxRate    float64
	defaultFee float64
}

func NewService(repo RepositoryInterface, cache CacheInterface, taxRate, defaultFee float64) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		taxRate:    taxRate,
		defaultFee: defaultFee,
	}
}

// Snapshot prices the given items. The total is only computed once the
// delivery fee is resolved; callers must request a fresh snapshot after every
// cart mutation.
func (s *Service) Snapshot(ctx context.Context, restaurantID string, items []models.LineItem) *models.CartSnapshot {
	fee := s.resolveFee(ctx, restaurantID)
	return models.NewCartSnapshot(restaurantID, items, fee, s.taxRate)
}

func (s *Service) resolveFee(ctx context.Context, restaurantID string) float64 {
	key := "restaurant-fee:" + restaurantID

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil {
			if fee, err := strconv.ParseFloat(val, 64); err == nil {
				return fee
			}
		}
	}

	fee, err := s.repo.GetDeliveryFee(ctx, restaurantID)
	if err != nil {
		logger.Warn().Err(err).Str("restaurant_id", restaurantID).Msg("delivery fee lookup failed, using default")
		return s.defaultFee
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatFloat(fee, 'f', -1, 64), feeCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("delivery fee cache write failed")
		}
	}
	return fee
}

// RedisCache adapts a redis client to CacheInterface.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}
