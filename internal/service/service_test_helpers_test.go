package service

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkpress/internal/db"
	"github.com/inkpress/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Category{}, &db.Post{}, &db.Tag{}, &db.Comment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func setupTestStore(t *testing.T) (*storage.DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	return storage.NewDiskStore(dir, "/static/uploads", "http://localhost:8080"), dir
}

// seedBlob drops a file into the store directory so delete paths have
// something real to remove.
func seedBlob(t *testing.T, dir, rel string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create blob dir: %v", err)
	}
	if err := os.WriteFile(full, []byte("blob"), 0o644); err != nil {
		t.Fatalf("failed to write blob: %v", err)
	}
}

func seedCategory(t *testing.T, gdb *gorm.DB, name string) db.Category {
	t.Helper()
	category := db.Category{Name: name}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func seedUser(t *testing.T, gdb *gorm.DB, name string) db.User {
	t.Helper()
	user := db.User{Name: name, Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
