package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blogshare/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	// ListTTL bounds how long a cached post listing may be served.
	ListTTL = 2 * time.Minute

	postListVersionKey = "posts:list:version"
)

// Aside serves key from Redis into dest, or runs fetch (which must populate dest) and
// stores the result for ttl. Cache failures never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		middleware.Logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// postListVersion is folded into every listing key so a single INCR invalidates them all.
func postListVersion(ctx context.Context) int64 {
	if client == nil {
		return 0
	}
	v, err := client.Get(ctx, postListVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// RecentPostsKey names the cached newest-first listing of the given size.
func RecentPostsKey(ctx context.Context, limit int) string {
	return fmt.Sprintf("posts:v%d:recent:%d", postListVersion(ctx), limit)
}

// AllPostsKey names the cached unbounded listing.
func AllPostsKey(ctx context.Context) string {
	return fmt.Sprintf("posts:v%d:all", postListVersion(ctx))
}

// OwnerPostsKey names the cached listing of one owner's posts.
func OwnerPostsKey(ctx context.Context, ownerID uint) string {
	return fmt.Sprintf("posts:v%d:owner:%d", postListVersion(ctx), ownerID)
}

// InvalidatePostLists retires every cached post listing.
func InvalidatePostLists(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, postListVersionKey).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate post listings", slog.String("error", err.Error()))
	}
}
