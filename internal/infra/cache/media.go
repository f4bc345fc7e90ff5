// Package cache provides a Redis-backed cache for volatile media URLs.
// Media references age out per handler, so cache entries carry the
// handler's refresh interval as their TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const mediaKeyPrefix = "media_url:"

// MediaCache caches resolved media URLs keyed by video id. A nil
// *MediaCache is valid and behaves as a miss-only cache, so callers
// need no nil checks when Redis is not configured.
type MediaCache struct {
	client *redis.Client
}

// NewMediaCache creates a media URL cache on the given Redis client.
func NewMediaCache(client *redis.Client) *MediaCache {
	return &MediaCache{client: client}
}

// Get returns the cached media URL for a video, or "" on a miss.
// Redis errors degrade to a miss: the store remains the source of
// truth and delivery must not depend on cache availability.
func (c *MediaCache) Get(ctx context.Context, videoID string) string {
	if c == nil || c.client == nil {
		return ""
	}

	val, err := c.client.Get(ctx, mediaKeyPrefix+videoID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("media cache read failed",
				slog.String("video_id", videoID),
				slog.Any("error", err))
		}
		return ""
	}
	return val
}

// Set stores a media URL with the given TTL.
func (c *MediaCache) Set(ctx context.Context, videoID, mediaURL string, ttl time.Duration) {
	if c == nil || c.client == nil || mediaURL == "" {
		return
	}

	if err := c.client.Set(ctx, mediaKeyPrefix+videoID, mediaURL, ttl).Err(); err != nil {
		slog.Warn("media cache write failed",
			slog.String("video_id", videoID),
			slog.Any("error", err))
	}
}

// Invalidate drops a cached media URL, used after a forced re-fetch.
func (c *MediaCache) Invalidate(ctx context.Context, videoID string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, mediaKeyPrefix+videoID).Err(); err != nil {
		slog.Warn("media cache invalidation failed",
			slog.String("video_id", videoID),
			slog.Any("error", err))
	}
}

// Close releases the underlying Redis connection.
func (c *MediaCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Ping verifies Redis connectivity at startup.
func (c *MediaCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
