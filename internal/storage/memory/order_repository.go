package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ. Копируем срезы, чтобы избежать мутаций извне.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[order.ID] = cloneOrder(order)
	return nil
}

// GetByRef возвращает заказ по внутреннему ID либо публичному номеру.
func (r *orderRepositoryInMemory) GetByRef(ref domain.OrderRef) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.findByRef(ref)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// SetStatus выставляет статус и дописывает запись в историю, если записи с
// таким статусом там ещё нет. Первая запись по статусу остаётся неизменной.
func (r *orderRepositoryInMemory) SetStatus(ref domain.OrderRef, entry domain.StatusEntry) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.findByRef(ref)
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	order = cloneOrder(order)
	order.Status = entry.Status
	order.UpdatedAt = time.Now().UTC()
	if !order.HasStatusEntry(entry.Status) {
		order.StatusHistory = append(order.StatusHistory, entry)
	}

	r.items[order.ID] = order
	return cloneOrder(order), nil
}

// List возвращает страницу заказов по фильтру и общее число совпадений.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if filter.Matches(order) {
			matched = append(matched, cloneOrder(order))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	return filter.PaginationWindow(matched), total, nil
}

// Clear удаляет все заказы.
func (r *orderRepositoryInMemory) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]domain.Order)
	return nil
}

// findByRef ищет заказ, ожидая удержанный мьютекс.
func (r *orderRepositoryInMemory) findByRef(ref domain.OrderRef) (domain.Order, bool) {
	if ref.ID != "" {
		order, ok := r.items[ref.ID]
		return order, ok
	}
	for _, order := range r.items {
		if order.OrderID == ref.OrderID {
			return order, true
		}
	}
	return domain.Order{}, false
}

// cloneOrder делает глубокую копию заказа вместе с позициями и историей.
func cloneOrder(order domain.Order) domain.Order {
	cp := order
	if order.StatusHistory != nil {
		cp.StatusHistory = make([]domain.StatusEntry, len(order.StatusHistory))
		copy(cp.StatusHistory, order.StatusHistory)
	}
	if order.Products != nil {
		cp.Products = make([]domain.OrderLine, len(order.Products))
		copy(cp.Products, order.Products)
	}
	return cp
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
