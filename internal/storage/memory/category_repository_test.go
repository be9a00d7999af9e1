package memory_test

import (
	"errors"
	"testing"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

func TestCategoryRepository_CreateAppendsToEnd(t *testing.T) {
	repo := memory.NewCategoryRepository()

	first, err := repo.Create(domain.Category{Name: "Freshwater", IsActive: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.Order != 1 {
		t.Fatalf("expected first category at position 1, got %d", first.Order)
	}

	second, err := repo.Create(domain.Category{Name: "Marine", IsActive: true})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.Order != 2 {
		t.Fatalf("expected second category at position 2, got %d", second.Order)
	}
}

func TestCategoryRepository_Reorder(t *testing.T) {
	repo := memory.NewCategoryRepository()

	a, _ := repo.Create(domain.Category{Name: "A", IsActive: true})
	b, _ := repo.Create(domain.Category{Name: "B", IsActive: true})
	c, _ := repo.Create(domain.Category{Name: "C", IsActive: true})

	if err := repo.Reorder([]string{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	page, _, err := repo.List(domain.CategoryFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := []string{page[0].Name, page[1].Name, page[2].Name}
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order after reorder: got %v want %v", got, want)
		}
	}
	if page[0].Order != 1 || page[1].Order != 2 || page[2].Order != 3 {
		t.Fatalf("positions must be reassigned from 1, got %d %d %d", page[0].Order, page[1].Order, page[2].Order)
	}
}

func TestCategoryRepository_ReorderUnknownID(t *testing.T) {
	repo := memory.NewCategoryRepository()
	if err := repo.Reorder([]string{"missing"}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryRepository_GetByName(t *testing.T) {
	repo := memory.NewCategoryRepository()
	created, _ := repo.Create(domain.Category{Name: "Uncategorized", IsActive: true})

	found, err := repo.GetByName("Uncategorized")
	if err != nil {
		t.Fatalf("get by name failed: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, found.ID)
	}

	if _, err := repo.GetByName("missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestCategoryRepository_UpdatePreservesPosition(t *testing.T) {
	repo := memory.NewCategoryRepository()
	repo.Create(domain.Category{Name: "A", IsActive: true})
	b, _ := repo.Create(domain.Category{Name: "B", IsActive: true})

	b.Name = "Renamed"
	updated, err := repo.Update(b)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Order != 2 {
		t.Fatalf("update must not change position, got %d", updated.Order)
	}
}

func TestCategoryRepository_Delete(t *testing.T) {
	repo := memory.NewCategoryRepository()
	created, _ := repo.Create(domain.Category{Name: "Gone", IsActive: true})

	deleted, err := repo.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.Name != "Gone" {
		t.Fatalf("delete should return the removed category, got %q", deleted.Name)
	}
	if _, err := repo.Get(created.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after delete, got %v", err)
	}
}
