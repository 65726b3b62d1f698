package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"` // rich text (HTML)
	Image     string    `json:"image"`                    // optional primary image key
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Images    []PostImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images"`
	Comments  []Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Reactions []Reaction  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// 非数据库字段，用于查询时填充
	LikesCount    int64 `gorm:"-" json:"likes_count"`
	DislikesCount int64 `gorm:"-" json:"dislikes_count"`
	CommentCount  int64 `gorm:"-" json:"comment_count"`
}

// AllImages returns the primary image followed by the additional images in
// display order.
func (p Post) AllImages() []string {
	images := make([]string, 0, len(p.Images)+1)
	if p.Image != "" {
		images = append(images, p.Image)
	}
	for _, img := range p.Images {
		images = append(images, img.Image)
	}
	return images
}

// PrimaryImage is the image shown on cards: the primary image if set,
// otherwise the first additional image.
func (p Post) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	if len(p.Images) > 0 {
		return p.Images[0].Image
	}
	return ""
}

func (p Post) ImageCount() int {
	return len(p.AllImages())
}
