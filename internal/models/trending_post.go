package models

import "time"

// TrendingPost is a derived projection of a post's trending score. It is a
// rebuildable cache over the favorite/comment/view signals: dropping the table
// loses nothing, the scorer repopulates it on the next recompute.
type TrendingPost struct {
	PostID uint    `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	Post   Post    `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Score  float64 `gorm:"not null;default:0;index" json:"score"`
	// LastActivityAt mirrors the post's activity timestamp at computation time
	// and breaks score ties in the ranking.
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`
	ComputedAt     time.Time `json:"computed_at"`
}

// TableName returns the database table name for TrendingPost.
func (TrendingPost) TableName() string {
	return "trending_posts"
}
