package db

import "gorm.io/gorm"

// Category groups posts. Lifecycle is owned outside this application; rows
// are reference data as far as the post service is concerned.
type Category struct {
	gorm.Model
	Name  string `json:"name" gorm:"not null"`
	Posts []Post `json:"-"`
}
