package models

import "time"

// FavoriteComment marks a comment as favorited by a user. The unique index on
// (comment_id, user_id) is the authoritative guard against duplicate rows;
// toggling races resolve at the constraint, not in application code. Rows are
// hard-deleted on toggle-off.
type FavoriteComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_favorite_comment_user" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_comment_user" json:"user_id"`
	Comment   Comment   `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
