package db

import "gorm.io/gorm"

// Tag labels posts through the post_tags join table.
type Tag struct {
	gorm.Model
	Name  string `json:"name" gorm:"unique;not null"`
	Posts []Post `json:"-" gorm:"many2many:post_tags;"`
}
