package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/storefront/metrics"
	"github.com/yashrajoria/storefront/models"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	"go.uber.org/zap"
)

const (
	UpsellCachePrefix = "upsell:v:"
	CacheVersionKey   = "upsell:version"
)

// Manager caches upsell product lists per locale behind a version counter.
type Manager struct {
	redis    *redis.Client
	ttl      time.Duration
	log      *zap.Logger
	recorder awspkg.MetricsRecorder
}

func NewManager(client *redis.Client, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{redis: client, ttl: ttl, log: log}
}

// WithRecorder also counts hits and misses in CloudWatch.
func (m *Manager) WithRecorder(rec awspkg.MetricsRecorder) *Manager {
	m.recorder = rec
	return m
}

// GetUpsell returns the cached list for locale. A miss (or any Redis error) reports false.
func (m *Manager) GetUpsell(ctx context.Context, locale string) ([]models.Product, bool) {
	key, err := m.key(ctx, locale)
	if err != nil {
		m.access(ctx, locale, false)
		return nil, false
	}

	raw, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			m.log.Warn("upsell cache read failed", zap.Error(err))
		}
		m.access(ctx, locale, false)
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		m.log.Warn("failed to unmarshal cached upsell products", zap.Error(err))
		m.access(ctx, locale, false)
		return nil, false
	}
	m.access(ctx, locale, true)
	return products, true
}

func (m *Manager) SetUpsell(ctx context.Context, locale string, products []models.Product) {
	key, err := m.key(ctx, locale)
	if err != nil {
		m.log.Warn("upsell cache version unavailable", zap.Error(err))
		return
	}
	b, err := json.Marshal(products)
	if err != nil {
		m.log.Warn("failed to marshal upsell products for cache", zap.Error(err))
		return
	}
	if err := m.redis.Set(ctx, key, b, m.ttl).Err(); err != nil {
		m.log.Warn("failed to cache upsell products", zap.Error(err))
	}
}

// Invalidate drops every cached list by bumping the version.
func (m *Manager) Invalidate(ctx context.Context) error {
	v, err := m.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate upsell cache: %w", err)
	}
	m.log.Info("upsell cache invalidated", zap.Int64("new_version", v))
	return nil
}

func (m *Manager) access(ctx context.Context, locale string, hit bool) {
	result, metric := "miss", awspkg.MetricCacheMisses
	if hit {
		result, metric = "hit", awspkg.MetricCacheHits
	}
	metrics.UpsellCacheAccess.WithLabelValues(result).Inc()
	if locale == "" {
		locale = "default"
	}
	awspkg.RecordCountAsync(ctx, m.recorder, metric, map[string]string{"Cache": "upsell", "Locale": locale})
}

func (m *Manager) key(ctx context.Context, locale string) (string, error) {
	v, err := m.redis.Get(ctx, CacheVersionKey).Int64()
	if err == redis.Nil {
		v = 0
	} else if err != nil {
		return "", err
	}
	if locale == "" {
		locale = "default"
	}
	return fmt.Sprintf("%s%d:%s", UpsellCachePrefix, v, locale), nil
}
