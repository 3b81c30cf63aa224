package service

import (
	"errors"
	"log"
	"strings"

	"github.com/inkpress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ImageStore is the slice of the blob store the post service needs: deleting
// superseded blobs and resolving stored paths to public URLs.
type ImageStore interface {
	Delete(path string) error
	URL(path string) string
}

// PostService wraps post related database operations.
type PostService struct {
	db     *gorm.DB
	images ImageStore
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	TagID   *uint
	Page    int
	PerPage int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostInput represents fields accepted when creating a post. Tags is the raw
// comma-separated tag string from the form; ImagePath is the blob path of an
// already stored upload, empty when none was sent.
type PostInput struct {
	Title      string
	Content    string
	Status     string
	CategoryID uint
	UserID     uint
	Tags       string
	ImagePath  string
}

// PostUpdate carries partial updates; nil fields are left untouched.
type PostUpdate struct {
	Title      *string
	Content    *string
	Status     *string
	CategoryID *uint
	Tags       *string
	ImagePath  *string
}

// PostDetail bundles a post with its ordinal neighbours for navigation.
type PostDetail struct {
	Post     *db.Post
	Previous *db.Post
	Next     *db.Post
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, images ImageStore) *PostService {
	return &PostService{db: gdb, images: images}
}

// ListAll returns every post with category and tags attached, unordered.
// Used by the API listing.
func (s *PostService) ListAll() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Category").Preload("Tags").Find(&posts).Error; err != nil {
		return nil, err
	}
	s.decorate(posts)
	return posts, nil
}

// List returns a newest-first page of posts, optionally restricted to one
// tag. A missing tag id fails with ErrTagNotFound.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{Page: filter.Page, PerPage: filter.PerPage}
	if result.Page <= 0 {
		result.Page = 1
	}
	if result.PerPage <= 0 {
		result.PerPage = 10
	}

	if filter.TagID != nil {
		var tag db.Tag
		if err := s.db.First(&tag, *filter.TagID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTagNotFound
			}
			return nil, err
		}
	}

	countQuery := s.applyTagFilter(s.db.Model(&db.Post{}), filter)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage

	var posts []db.Post
	dataQuery := s.db.Model(&db.Post{}).
		Preload("Category").
		Preload("User").
		Preload("Tags")
	dataQuery = s.applyTagFilter(dataQuery, filter)

	if err := dataQuery.
		Order("posts.created_at desc, posts.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	s.decorate(posts)

	if result.Total == 0 {
		result.TotalPages = 1
	} else {
		result.TotalPages = int((result.Total + int64(result.PerPage) - 1) / int64(result.PerPage))
	}

	result.Posts = posts
	return result, nil
}

// Get fetches a post by id with category, tags and the comment thread
// attached, plus its neighbours by ordinal id for prev/next navigation.
func (s *PostService) Get(id uint) (*PostDetail, error) {
	var post db.Post
	if err := s.db.
		Preload("Category").
		Preload("User").
		Preload("Tags").
		Preload("Comments").
		Preload("Comments.User").
		First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	detail := &PostDetail{Post: &post}

	var previous db.Post
	if err := s.db.Where("id < ?", post.ID).Order("id desc").First(&previous).Error; err == nil {
		detail.Previous = &previous
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var next db.Post
	if err := s.db.Where("id > ?", post.ID).Order("id asc").First(&next).Error; err == nil {
		detail.Next = &next
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s.decorateOne(&post)
	return detail, nil
}

// Create persists a post and syncs its tag set inside one transaction. The
// image blob, if any, was already written by the caller; only its path is
// recorded here.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	if err := s.categoryExists(input.CategoryID); err != nil {
		return nil, err
	}

	post := db.Post{
		Title:      input.Title,
		Content:    input.Content,
		Status:     input.Status,
		Image:      input.ImagePath,
		CategoryID: input.CategoryID,
		UserID:     input.UserID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return syncTags(tx, &post, input.Tags)
	}); err != nil {
		return nil, err
	}

	return s.reload(post.ID)
}

// Update applies the present fields to an existing post, re-syncing tags
// when a tag string was sent and swapping the image blob when a new upload
// path was supplied. The superseded blob is removed after the row commit.
func (s *PostService) Update(id uint, input PostUpdate) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.categoryExists(*input.CategoryID); err != nil {
			return nil, err
		}
	}

	previousImage := existing.Image

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.Title != nil {
			existing.Title = *input.Title
		}
		if input.Content != nil {
			existing.Content = *input.Content
		}
		if input.Status != nil {
			existing.Status = *input.Status
		}
		if input.CategoryID != nil {
			existing.CategoryID = *input.CategoryID
		}
		if input.ImagePath != nil {
			existing.Image = *input.ImagePath
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		if input.Tags != nil {
			return syncTags(tx, &existing, *input.Tags)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if input.ImagePath != nil && previousImage != "" && previousImage != *input.ImagePath {
		if err := s.images.Delete(previousImage); err != nil {
			log.Printf("post %d: failed to delete replaced image %s: %v", id, previousImage, err)
		}
	}

	return s.reload(existing.ID)
}

// Delete removes a post, its comments and its tag links, then removes the
// image blob. Blob deletion failing after the commit is logged, not fatal.
func (s *PostService) Delete(id uint) error {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&db.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	}); err != nil {
		return err
	}

	if post.Image != "" {
		if err := s.images.Delete(post.Image); err != nil {
			log.Printf("post %d: failed to delete image %s: %v", id, post.Image, err)
		}
	}

	return nil
}

func (s *PostService) applyTagFilter(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.TagID == nil {
		return query
	}
	return query.
		Joins("JOIN post_tags ON post_tags.post_id = posts.id").
		Where("post_tags.tag_id = ?", *filter.TagID)
}

func (s *PostService) categoryExists(id uint) error {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *PostService) reload(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Category").Preload("Tags").First(&post, id).Error; err != nil {
		return nil, err
	}
	s.decorateOne(&post)
	return &post, nil
}

func (s *PostService) decorate(posts []db.Post) {
	for i := range posts {
		s.decorateOne(&posts[i])
	}
}

func (s *PostService) decorateOne(post *db.Post) {
	if post.Image == "" {
		post.ImageURL = nil
		return
	}
	url := s.images.URL(post.Image)
	post.ImageURL = &url
}

// syncTags replaces the post's tag associations with the set derived from
// the comma-separated string: split, trim, drop empties, get-or-create each
// name. Duplicate names collapse to one association.
func syncTags(tx *gorm.DB, post *db.Post, raw string) error {
	names := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(names))
	tags := make([]db.Tag, 0, len(names))

	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		var tag db.Tag
		if err := tx.Where("name = ?", trimmed).FirstOrCreate(&tag, db.Tag{Name: trimmed}).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	return tx.Model(post).Association("Tags").Replace(tags)
}
