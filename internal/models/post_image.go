package models

import (
	"time"
)

// PostImage is an additional image attached to a post. Order is only used for
// sorting and may repeat.
type PostImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Image      string    `gorm:"not null" json:"image"`
	Caption    string    `gorm:"size:200" json:"caption"`
	Order      uint      `gorm:"column:sort_order;not null;default:0" json:"order"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// ImageOrdering is the ORDER BY clause for additional images.
const ImageOrdering = "sort_order ASC, uploaded_at ASC, id ASC"
