package db

import "gorm.io/gorm"

// Post statuses accepted by the store.
const (
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post is a blog article. Image holds the relative blob path inside the
// upload store; ImageURL is derived at read time and never persisted.
type Post struct {
	gorm.Model
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	Image      string    `json:"image"`
	ImageURL   *string   `json:"image_url" gorm:"-"`
	CategoryID uint      `json:"category_id"`
	Category   Category  `json:"category"`
	UserID     uint      `json:"user_id"`
	User       User      `json:"user"`
	Tags       []Tag     `json:"tags" gorm:"many2many:post_tags;"`
	Comments   []Comment `json:"comments,omitempty"`
}
