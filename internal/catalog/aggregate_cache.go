// Package catalog is the storefront read side: cached category aggregates
// over the catalog written by the import engine.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-service/internal/metrics"
	"catalog-service/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AggregateTTL bounds how stale the category strip may get. Imports do not
// invalidate these entries; counts lag reality by at most this window.
const AggregateTTL = 5 * time.Minute

// AggregateStore is the query the cache fronts. Implemented by
// repository.CategoryRepository.
type AggregateStore interface {
	CategoriesWithImage(ctx context.Context, supplier string) ([]models.CategoryWithImage, error)
}

// AggregateService serves "categories with representative image and live
// product count" cache-first. The aggregation join is the expensive part of
// rendering storefront navigation, and import traffic keeps it volatile, so
// results are held for a short TTL rather than recomputed per request.
type AggregateService struct {
	store  AggregateStore
	redis  *redis.Client
	logger *logrus.Entry
}

// NewAggregateService creates the read-side service. redisClient may be nil;
// every lookup then goes straight to the database.
func NewAggregateService(store AggregateStore, redisClient *redis.Client, logger *logrus.Logger) *AggregateService {
	return &AggregateService{
		store:  store,
		redis:  redisClient,
		logger: logger.WithField("component", "catalog.aggregate"),
	}
}

func cacheKey(supplier string) string {
	if supplier == "" {
		supplier = "all"
	}
	return fmt.Sprintf("catalog:categories:aggregate:%s", supplier)
}

// CategoriesWithImage returns the navigation aggregate for one supplier
// filter (empty = all suppliers), cache-first with a fixed TTL.
func (s *AggregateService) CategoriesWithImage(ctx context.Context, supplier string) ([]models.CategoryWithImage, error) {
	key := cacheKey(supplier)

	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var cached []models.CategoryWithImage
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
				return cached, nil
			}
		}
	}
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	results, err := s.store.CategoriesWithImage(ctx, supplier)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, err := json.Marshal(results)
		if err == nil {
			if err := s.redis.Set(ctx, key, data, AggregateTTL).Err(); err != nil {
				s.logger.WithError(err).Warn("failed to cache category aggregate")
			}
		}
	}

	return results, nil
}
