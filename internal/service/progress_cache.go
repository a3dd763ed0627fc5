package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const progressKeyPrefix = "progress:"

// ProgressUpdate is delivered to subscribers whenever a (user, course)
// snapshot changes.
type ProgressUpdate struct {
	UserID uint
	Record model.ProgressRecord
}

// ProgressCache is the single normalized holder of progress snapshots, keyed
// by (userID, courseID). Every mutation in the enrollment service publishes
// through it and every view reads from it, so no consumer can hold a stale
// private copy. Writes go through to redis; the in-process map serves reads
// and survives a nil redis client (tests).
type ProgressCache struct {
	mu      sync.RWMutex
	entries map[string]model.ProgressRecord
	subs    []func(ProgressUpdate)
	Redis   *redis.Client
	TTL     time.Duration
}

func NewProgressCache(rdb *redis.Client) *ProgressCache {
	return &ProgressCache{
		entries: make(map[string]model.ProgressRecord),
		Redis:   rdb,
		TTL:     24 * time.Hour,
	}
}

func progressKey(userID, courseID uint) string {
	return fmt.Sprintf("%s%d:%d", progressKeyPrefix, userID, courseID)
}

// Subscribe registers a callback for snapshot changes. Callbacks run
// synchronously on the updating goroutine and must not block.
func (c *ProgressCache) Subscribe(fn func(ProgressUpdate)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Put stores a fresh snapshot and notifies subscribers.
func (c *ProgressCache) Put(ctx context.Context, userID uint, record model.ProgressRecord) {
	key := progressKey(userID, record.CourseID)

	c.mu.Lock()
	c.entries[key] = record
	subs := make([]func(ProgressUpdate), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.writeThrough(ctx, key, record)

	for _, fn := range subs {
		fn(ProgressUpdate{UserID: userID, Record: record})
	}
}

// Backfill stores a snapshot computed on a read path without notifying
// subscribers; nothing changed, the cache was just cold.
func (c *ProgressCache) Backfill(ctx context.Context, userID uint, record model.ProgressRecord) {
	key := progressKey(userID, record.CourseID)

	c.mu.Lock()
	c.entries[key] = record
	c.mu.Unlock()

	c.writeThrough(ctx, key, record)
}

func (c *ProgressCache) writeThrough(ctx context.Context, key string, record model.ProgressRecord) {
	if c.Redis == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		logger.Log.Error("progress cache marshal", zap.Error(err))
		return
	}
	if err := c.Redis.Set(ctx, key, payload, c.TTL).Err(); err != nil {
		logger.Log.Warn("progress cache write-through failed", zap.String("key", key), zap.Error(err))
	}
}

// Get returns the cached snapshot for the pair, falling back to redis when the
// in-process map is cold.
func (c *ProgressCache) Get(ctx context.Context, userID, courseID uint) (model.ProgressRecord, bool) {
	key := progressKey(userID, courseID)

	c.mu.RLock()
	record, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return record, true
	}

	if c.Redis == nil {
		return model.ProgressRecord{}, false
	}

	val, err := c.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return model.ProgressRecord{}, false
	}
	if err != nil {
		logger.Log.Warn("progress cache read failed", zap.String("key", key), zap.Error(err))
		return model.ProgressRecord{}, false
	}

	if err := json.Unmarshal([]byte(val), &record); err != nil {
		logger.Log.Error("progress cache unmarshal", zap.String("key", key), zap.Error(err))
		return model.ProgressRecord{}, false
	}

	c.mu.Lock()
	c.entries[key] = record
	c.mu.Unlock()
	return record, true
}

// Forget drops the snapshot for the pair, e.g. when an enrollment is revoked
// or a course deleted.
func (c *ProgressCache) Forget(ctx context.Context, userID, courseID uint) {
	key := progressKey(userID, courseID)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.Redis != nil {
		if err := c.Redis.Del(ctx, key).Err(); err != nil {
			logger.Log.Warn("progress cache delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}
