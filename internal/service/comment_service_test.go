package service

import (
	"errors"
	"testing"

	"github.com/inkpress/internal/db"
)

func TestCommentServiceCreateAndDelete(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-create")
	svc := NewCommentService(gdb)

	category := seedCategory(t, gdb, "General")
	author := seedUser(t, gdb, "author")

	post := db.Post{Title: "Post", Content: "body", Status: db.PostStatusPublished, CategoryID: category.ID, UserID: author.ID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	comment, err := svc.Create(post.ID, author.ID, "first!")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if comment.User.Name != "author" {
		t.Fatalf("comment author should be attached, got %q", comment.User.Name)
	}

	if err := svc.Delete(comment.ID, author.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	if err := svc.Delete(comment.ID, author.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound after delete, got %v", err)
	}
}

func TestCommentServiceCreateRequiresPost(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-requires-post")
	svc := NewCommentService(gdb)

	user := seedUser(t, gdb, "author")

	if _, err := svc.Create(41, user.ID, "hello"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCommentServiceCreateRequiresContent(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-requires-content")
	svc := NewCommentService(gdb)

	category := seedCategory(t, gdb, "General")
	author := seedUser(t, gdb, "author")

	post := db.Post{Title: "Post", Content: "body", Status: db.PostStatusPublished, CategoryID: category.ID, UserID: author.ID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	if _, err := svc.Create(post.ID, author.ID, "   "); !errors.Is(err, ErrCommentEmpty) {
		t.Fatalf("expected ErrCommentEmpty, got %v", err)
	}
}

func TestCommentServiceDeleteEnforcesOwnership(t *testing.T) {
	gdb := setupServiceTestDB(t, "comment-ownership")
	svc := NewCommentService(gdb)

	category := seedCategory(t, gdb, "General")
	owner := seedUser(t, gdb, "owner")
	other := seedUser(t, gdb, "other")

	post := db.Post{Title: "Post", Content: "body", Status: db.PostStatusPublished, CategoryID: category.ID, UserID: owner.ID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	comment, err := svc.Create(post.ID, owner.ID, "mine")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := svc.Delete(comment.ID, other.ID); !errors.Is(err, ErrNotCommentOwner) {
		t.Fatalf("expected ErrNotCommentOwner, got %v", err)
	}

	var count int64
	if err := gdb.Model(&db.Comment{}).Count(&count).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if count != 1 {
		t.Fatalf("comment should survive a foreign delete attempt, got %d", count)
	}
}
