// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a travel-log entry that comments and favorites attach to.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`
	// ViewCount is a trending signal, bumped on detail reads.
	ViewCount int `gorm:"not null;default:0" json:"view_count"`
	// LastActivityAt tracks the most recent comment or favorite write and
	// feeds recency decay plus the trending tiebreak.
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// FavoritesCount is not persisted; computed at query time
	FavoritesCount int            `gorm:"->" json:"favorites_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
