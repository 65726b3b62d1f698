package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`      // bcrypt hash
	GoogleID  string    `gorm:"index" json:"google_id"` // Google OAuth ID
	Email     string    `gorm:"size:254" json:"email"`  // only filled by Google sign-in
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
