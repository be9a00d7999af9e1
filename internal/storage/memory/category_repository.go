package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

// categoryRepositoryInMemory — простая in-memory реализация CategoryRepository.
type categoryRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Category
}

// NewCategoryRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCategoryRepository() domain.CategoryRepository {
	return &categoryRepositoryInMemory{
		items: make(map[string]domain.Category),
	}
}

// Create сохраняет категорию, ставя её в конец списка (max(order)+1).
func (r *categoryRepositoryInMemory) Create(category domain.Category) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	maxOrder := 0
	for _, c := range r.items {
		if c.Order > maxOrder {
			maxOrder = c.Order
		}
	}
	category.Order = maxOrder + 1

	r.items[category.ID] = category
	return category, nil
}

func (r *categoryRepositoryInMemory) Get(id string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.items[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetByName ищет категорию по точному имени.
func (r *categoryRepositoryInMemory) GetByName(name string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.items {
		if category.Name == name {
			return category, nil
		}
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

// List возвращает страницу категорий (сортировка по order) и общее число совпадений.
func (r *categoryRepositoryInMemory) List(filter domain.CategoryFilter) ([]domain.Category, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Category, 0, len(r.items))
	for _, category := range r.items {
		if filter.Matches(category) {
			matched = append(matched, category)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Order != matched[j].Order {
			return matched[i].Order < matched[j].Order
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	offset := filter.Offset()
	if offset >= len(matched) {
		return []domain.Category{}, total, nil
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *categoryRepositoryInMemory) Update(category domain.Category) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[category.ID]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}

	category.Order = current.Order
	category.CreatedAt = current.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	r.items[category.ID] = category
	return category, nil
}

func (r *categoryRepositoryInMemory) Delete(id string) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category, ok := r.items[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	delete(r.items, id)
	return category, nil
}

// Reorder выставляет перечисленным категориям order = позиция+1 одним батчем.
// Неизвестный ID отклоняет весь батч, не меняя ни одной категории.
func (r *categoryRepositoryInMemory) Reorder(ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.items[id]; !ok {
			return domain.ErrCategoryNotFound
		}
	}

	now := time.Now().UTC()
	for i, id := range ids {
		category := r.items[id]
		category.Order = i + 1
		category.UpdatedAt = now
		r.items[id] = category
	}
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
