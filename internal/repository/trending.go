package repository

import (
	"context"
	"time"

	"tangerine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrendingSignals holds the raw inputs a post's score is derived from.
type TrendingSignals struct {
	Favorites      int64
	Comments       int64
	Views          int64
	LastActivityAt time.Time
}

// TrendingRepository manages the trending_posts projection. The table is a
// rebuildable cache of scores; dropping it loses nothing that a recompute
// cannot restore.
type TrendingRepository interface {
	Upsert(ctx context.Context, entry *models.TrendingPost) error
	TopN(ctx context.Context, n int) ([]*models.TrendingPost, error)
	Signals(ctx context.Context, postID uint) (*TrendingSignals, error)
	Delete(ctx context.Context, postID uint) error
}

type trendingRepository struct {
	db *gorm.DB
}

// NewTrendingRepository creates a new TrendingRepository
func NewTrendingRepository(db *gorm.DB) TrendingRepository {
	return &trendingRepository{db: db}
}

func (r *trendingRepository) Upsert(ctx context.Context, entry *models.TrendingPost) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "last_activity_at", "computed_at"}),
	}).Create(entry).Error
}

// TopN returns the highest-scored posts, most recent activity breaking ties.
func (r *trendingRepository) TopN(ctx context.Context, n int) ([]*models.TrendingPost, error) {
	var entries []*models.TrendingPost
	err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.User").
		Order("score DESC, last_activity_at DESC").
		Limit(n).
		Find(&entries).Error
	return entries, err
}

// Signals gathers the post's favorite count, comment count, view count, and
// last activity timestamp in one round trip.
func (r *trendingRepository) Signals(ctx context.Context, postID uint) (*TrendingSignals, error) {
	var signals TrendingSignals
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("posts.id = ?", postID).
		Select("posts.view_count as views, posts.last_activity_at, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments, " +
			"(SELECT COUNT(*) FROM favorite_comments JOIN comments c ON c.id = favorite_comments.comment_id WHERE c.post_id = posts.id AND c.deleted_at IS NULL) as favorites").
		Scan(&signals).Error
	if err != nil {
		return nil, err
	}
	return &signals, nil
}

func (r *trendingRepository) Delete(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.TrendingPost{}).Error
}
