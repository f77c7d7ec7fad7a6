package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tuanng17/coinfolio/internal/models"
)

// CachedMarker is appended to a loaded snapshot's last_updated field so the
// UI can distinguish stale data from a fresh fetch. The annotation happens
// on the read path only and is never persisted back.
const CachedMarker = " (cached)"

const (
	cacheKeySnapshot = "portfolio:snapshot"
	cacheKeySpot     = "portfolio:holdings:spot"
	cacheKeyMargin   = "portfolio:holdings:margin"
	cacheKeyFutures  = "portfolio:holdings:futures"
)

type snapshotCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot cache over Redis. A zero TTL keeps
// payloads until the next save. Storage failures are logged and swallowed:
// a broken cache degrades to a cache miss, never to an error.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) SnapshotCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &snapshotCache{client: client, logger: logger, ttl: ttl}
}

func (c *snapshotCache) Save(ctx context.Context, snapshot *models.PortfolioSnapshot, holdings *models.SegmentHoldings) {
	if c.client == nil {
		return
	}
	if holdings == nil {
		holdings = &models.SegmentHoldings{}
	}

	if snapshot != nil {
		c.set(ctx, cacheKeySnapshot, snapshot)
	}
	c.set(ctx, cacheKeySpot, holdings.Spot)
	c.set(ctx, cacheKeyMargin, holdings.Margin)
	c.set(ctx, cacheKeyFutures, holdings.Futures)
}

func (c *snapshotCache) set(ctx context.Context, key string, payload any) {
	if payload == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Warn("failed to marshal cache payload", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to persist cache payload", zap.String("key", key), zap.Error(err))
	}
}

func (c *snapshotCache) Load(ctx context.Context) CachedState {
	state := CachedState{}
	if c.client == nil {
		return state
	}

	holdings := &models.SegmentHoldings{}

	var snapshot models.PortfolioSnapshot
	if c.get(ctx, cacheKeySnapshot, &snapshot) {
		snapshot.LastUpdated += CachedMarker
		state.Snapshot = &snapshot
		state.AnyLoaded = true
	}
	if c.get(ctx, cacheKeySpot, &holdings.Spot) {
		state.AnyLoaded = true
	}
	if c.get(ctx, cacheKeyMargin, &holdings.Margin) {
		state.AnyLoaded = true
	}
	if c.get(ctx, cacheKeyFutures, &holdings.Futures) {
		state.AnyLoaded = true
	}
	state.Holdings = holdings

	return state
}

// get loads and unmarshals one key. A missing key, a storage error, or
// corrupt JSON all report false; each key fails independently.
func (c *snapshotCache) get(ctx context.Context, key string, out any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("failed to read cache payload", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("corrupt cache payload", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}
