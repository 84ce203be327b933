package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A comment with a nil ParentID starts
// a new thread; replies point at a top-level comment and inherit its group
// number, so ordering by (group_number, created_at) keeps a thread contiguous.
// Reply depth is bounded to one level.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	PostID   uint   `gorm:"not null;index:idx_comments_post_group,priority:1" json:"post_id"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	// GroupNumber is the thread sort key, shared by a top-level comment and its
	// replies. Allocated once per thread and never renumbered; deleting a thread
	// leaves a gap.
	GroupNumber int64 `gorm:"not null;index:idx_comments_post_group,priority:2" json:"group_number"`
	User        User  `gorm:"foreignKey:UserID" json:"user"`
	Post        Post  `gorm:"foreignKey:PostID" json:"post,omitempty"`
	// FavoritesCount is not persisted; computed at query time
	FavoritesCount int `gorm:"->" json:"favorites_count"`
	// RepliesCount is not persisted; computed at query time
	RepliesCount int            `gorm:"->" json:"replies_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReply reports whether the comment belongs to an existing thread.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
