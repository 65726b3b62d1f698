package models

import (
	"time"
)

// Reaction is a like (IsLike=true) or dislike on a post. One per user per post.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_post" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_reaction_user_post" json:"post_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
}

// Kind returns "like" or "dislike".
func (r *Reaction) Kind() string {
	if r.IsLike {
		return "like"
	}
	return "dislike"
}
