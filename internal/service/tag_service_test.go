package service

import (
	"errors"
	"testing"

	"github.com/inkpress/internal/db"
)

func TestTagServiceGetOrCreateIsIdempotent(t *testing.T) {
	gdb := setupServiceTestDB(t, "tag-get-or-create")
	svc := NewTagService(gdb)

	first, err := svc.GetOrCreate("go")
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}

	second, err := svc.GetOrCreate("go")
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("repeated input should return the same row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if err := gdb.Model(&db.Tag{}).Count(&count).Error; err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single tag row, got %d", count)
	}
}

func TestTagServiceGetOrCreateIsCaseSensitive(t *testing.T) {
	gdb := setupServiceTestDB(t, "tag-case-sensitive")
	svc := NewTagService(gdb)

	lower, err := svc.GetOrCreate("go")
	if err != nil {
		t.Fatalf("create lower: %v", err)
	}
	upper, err := svc.GetOrCreate("Go")
	if err != nil {
		t.Fatalf("create upper: %v", err)
	}

	if lower.ID == upper.ID {
		t.Fatal("names differing in case should map to distinct tags")
	}
}

func TestTagServiceGetMissing(t *testing.T) {
	gdb := setupServiceTestDB(t, "tag-get-missing")
	svc := NewTagService(gdb)

	if _, err := svc.Get(123); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestCategoryServiceList(t *testing.T) {
	gdb := setupServiceTestDB(t, "category-list")
	svc := NewCategoryService(gdb)

	seedCategory(t, gdb, "General")
	seedCategory(t, gdb, "Travel")

	categories, err := svc.List()
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
}
