package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Create сохраняет учётную запись; дубликат телефона — ErrMobileTaken.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.items {
		if c.Mobile == customer.Mobile {
			return domain.Customer{}, domain.ErrMobileTaken
		}
	}

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now

	r.items[customer.ID] = customer
	return customer, nil
}

func (r *customerRepositoryInMemory) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

func (r *customerRepositoryInMemory) GetByMobile(mobile string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.items {
		if customer.Mobile == mobile {
			return customer, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

// List возвращает страницу покупателей (роль user) и общее число совпадений.
func (r *customerRepositoryInMemory) List(filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		if filter.Matches(customer) {
			matched = append(matched, customer)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	offset := filter.Offset()
	if offset >= len(matched) {
		return []domain.Customer{}, total, nil
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

func (r *customerRepositoryInMemory) Update(customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[customer.ID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	customer.Mobile = current.Mobile
	customer.Role = current.Role
	customer.IsActive = current.IsActive
	customer.CreatedAt = current.CreatedAt
	customer.UpdatedAt = time.Now().UTC()
	r.items[customer.ID] = customer
	return customer, nil
}

// SetActive блокирует или разблокирует учётную запись.
func (r *customerRepositoryInMemory) SetActive(id string, active bool) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	customer.IsActive = active
	customer.UpdatedAt = time.Now().UTC()
	r.items[id] = customer
	return customer, nil
}

func (r *customerRepositoryInMemory) Delete(id string) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	delete(r.items, id)
	return customer, nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
