// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"tangerine/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for threaded comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByPost(ctx context.Context, postID, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error)
	CountTopLevel(ctx context.Context, postID uint) (int64, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	MaxGroupNumber(ctx context.Context, postID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteThread(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// applyCommentDetails adds subqueries to fetch counts in a single query.
func (r *commentRepository) applyCommentDetails(db *gorm.DB) *gorm.DB {
	return db.Select("comments.*, " +
		"(SELECT COUNT(*) FROM favorite_comments WHERE favorite_comments.comment_id = comments.id) as favorites_count, " +
		"(SELECT COUNT(*) FROM comments replies WHERE replies.parent_id = comments.id AND replies.deleted_at IS NULL) as replies_count")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) GetByPost(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("comments.post_id = ?", postID).
		First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListTopLevel returns the post's top-level comments in thread order:
// ascending group number, then creation time. Deleted threads leave gaps in
// the group sequence and that is fine; ordering only needs monotonicity.
func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID).
		Order("comments.group_number ASC, comments.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.applyCommentDetails(r.db.WithContext(ctx)).
		Preload("User").
		Where("comments.parent_id = ?", parentID).
		Order("comments.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountTopLevel(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// MaxGroupNumber returns the highest group number ever allocated for the
// post. Unscoped so soft-deleted threads keep their numbers reserved; a
// deleted thread's group must stay a gap, never be handed out again.
func (r *commentRepository) MaxGroupNumber(ctx context.Context, postID uint) (int64, error) {
	var maxGroup int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Select("COALESCE(MAX(group_number), 0)").
		Scan(&maxGroup).Error
	return maxGroup, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteThread removes a comment and its direct replies in one transaction,
// children first so the parent reference never dangles mid-delete.
func (r *commentRepository) DeleteThread(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
}
