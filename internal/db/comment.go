package db

import "gorm.io/gorm"

// Comment belongs to one post and one user.
type Comment struct {
	gorm.Model
	Content string `json:"content" gorm:"not null"`
	PostID  uint   `json:"post_id"`
	UserID  uint   `json:"user_id"`
	User    User   `json:"user"`
}
