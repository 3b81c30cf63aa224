package main

import (
	"fmt"
	"log"

	"github.com/inkpress/internal/config"
	"github.com/inkpress/internal/db"
	"github.com/inkpress/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// Development seeder: an author account, the category reference data and a
// handful of tagged posts with comments.
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	author := seedAuthor()
	categories := seedCategories()
	seedPosts(author, categories)

	fmt.Println("seed data ready")
	fmt.Println("author: author (password: author123)")
}

func seedAuthor() db.User {
	var existing db.User
	if err := db.DB.Where("name = ?", "author").First(&existing).Error; err == nil {
		fmt.Println("author already exists, skipping")
		return existing
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("author123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	author := db.User{Name: "author", Password: string(hashed)}
	if err := db.DB.Create(&author).Error; err != nil {
		log.Fatalf("failed to create author: %v", err)
	}
	return author
}

func seedCategories() []db.Category {
	names := []string{"General", "Engineering", "Travel"}
	categories := make([]db.Category, 0, len(names))

	for _, name := range names {
		var category db.Category
		if err := db.DB.Where("name = ?", name).FirstOrCreate(&category, db.Category{Name: name}).Error; err != nil {
			log.Fatalf("failed to seed category %s: %v", name, err)
		}
		categories = append(categories, category)
	}
	return categories
}

func seedPosts(author db.User, categories []db.Category) {
	var count int64
	db.DB.Model(&db.Post{}).Count(&count)
	if count > 0 {
		fmt.Println("posts already exist, skipping")
		return
	}

	posts := service.NewPostService(db.DB, noopStore{})
	comments := service.NewCommentService(db.DB)

	samples := []service.PostInput{
		{
			Title:      "Hello, inkpress",
			Content:    "A first look at the blog engine.",
			Status:     db.PostStatusPublished,
			CategoryID: categories[0].ID,
			UserID:     author.ID,
			Tags:       "intro, meta",
		},
		{
			Title:      "Tagging posts",
			Content:    "Comma separated tags are synced as a set.",
			Status:     db.PostStatusPublished,
			CategoryID: categories[1].ID,
			UserID:     author.ID,
			Tags:       "tags, howto",
		},
		{
			Title:      "Archived notes",
			Content:    "Old material kept around for reference.",
			Status:     db.PostStatusArchived,
			CategoryID: categories[2].ID,
			UserID:     author.ID,
		},
	}

	for _, input := range samples {
		post, err := posts.Create(input)
		if err != nil {
			log.Fatalf("failed to seed post %q: %v", input.Title, err)
		}
		if input.Status == db.PostStatusPublished {
			if _, err := comments.Create(post.ID, author.ID, "First!"); err != nil {
				log.Fatalf("failed to seed comment: %v", err)
			}
		}
	}
}

// noopStore satisfies the post service's blob dependency; the seeder never
// attaches images.
type noopStore struct{}

func (noopStore) Delete(string) error { return nil }
func (noopStore) URL(string) string   { return "" }
