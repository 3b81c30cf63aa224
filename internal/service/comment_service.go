package service

import (
	"errors"
	"strings"

	"github.com/inkpress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrCommentEmpty    = errors.New("comment content is required")
	ErrNotCommentOwner = errors.New("comment belongs to another user")
)

// CommentService wraps comment operations scoped to a post.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create attaches a new comment to an existing post on behalf of userID.
func (s *CommentService) Create(postID, userID uint, content string) (*db.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentEmpty
	}

	var post db.Post
	if err := s.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := db.Comment{Content: content, PostID: post.ID, UserID: userID}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment. Only the owning user may delete; the check runs
// here, not in the view layer.
func (s *CommentService) Delete(id, actingUserID uint) error {
	var comment db.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != actingUserID {
		return ErrNotCommentOwner
	}

	return s.db.Delete(&comment).Error
}
