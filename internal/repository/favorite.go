package repository

import (
	"context"

	"tangerine/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository defines persistence operations for comment favorites.
type FavoriteRepository interface {
	// Insert adds a favorite if absent. Returns true when a row was written,
	// false when the (comment, user) pair already existed.
	Insert(ctx context.Context, commentID, userID uint) (bool, error)
	// Delete removes a favorite. Returns true when a row was removed.
	Delete(ctx context.Context, commentID, userID uint) (bool, error)
	Exists(ctx context.Context, commentID, userID uint) (bool, error)
	ListCommentIDsForPost(ctx context.Context, postID, userID uint) ([]uint, error)
	CountByComment(ctx context.Context, commentID uint) (int64, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Insert(ctx context.Context, commentID, userID uint) (bool, error) {
	// ON CONFLICT DO NOTHING makes the toggle race-safe: two concurrent
	// inserts both succeed at the SQL level but only one reports a row.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO favorite_comments (comment_id, user_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (comment_id, user_id) DO NOTHING`,
		commentID, userID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, commentID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.FavoriteComment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FavoriteComment{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCommentIDsForPost returns the ids of the post's comments the user has
// favorited, in favorite creation order.
func (r *favoriteRepository) ListCommentIDsForPost(ctx context.Context, postID, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.FavoriteComment{}).
		Joins("JOIN comments ON comments.id = favorite_comments.comment_id").
		Where("comments.post_id = ? AND favorite_comments.user_id = ? AND comments.deleted_at IS NULL", postID, userID).
		Order("favorite_comments.created_at ASC").
		Pluck("favorite_comments.comment_id", &ids).Error
	return ids, err
}

func (r *favoriteRepository) CountByComment(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FavoriteComment{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	return count, err
}

func (r *favoriteRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FavoriteComment{}).
		Joins("JOIN comments ON comments.id = favorite_comments.comment_id").
		Where("comments.post_id = ? AND comments.deleted_at IS NULL", postID).
		Count(&count).Error
	return count, err
}
