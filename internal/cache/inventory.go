package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PostKeyPrefix       = "post:%d"
	TrendingScorePrefix = "trending:score:%d"
	TrendingRankingKey  = "trending:ranking"
)

const (
	UserTTL          = 5 * time.Minute
	PostTTL          = 30 * time.Minute
	TrendingScoreTTL = 10 * time.Minute
	TrendingRankTTL  = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func TrendingScoreKey(postID uint) string {
	return fmt.Sprintf(TrendingScorePrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateTrending drops both the per-post cached score and the shared
// ranked list; the next read rebuilds them.
func InvalidateTrending(ctx context.Context, postID uint) {
	Invalidate(ctx, TrendingScoreKey(postID))
	Invalidate(ctx, TrendingRankingKey)
}
