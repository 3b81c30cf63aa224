package handler

import (
	"github.com/inkpress/internal/service"
	"github.com/inkpress/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	tags       *service.TagService
	categories *service.CategoryService
	comments   *service.CommentService
	store      *storage.DiskStore
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, store *storage.DiskStore) *API {
	return &API{
		db:         gdb,
		posts:      service.NewPostService(gdb, store),
		tags:       service.NewTagService(gdb),
		categories: service.NewCategoryService(gdb),
		comments:   service.NewCommentService(gdb),
		store:      store,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
