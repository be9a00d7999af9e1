package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

// cartRepositoryInMemory — простая in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Cart // ключ — customerID

	// pullHook подменяет изъятие товара из корзин; нужен тестам, которые
	// проверяют откат деактивации товара при сбое на стороне корзин.
	pullHook func(productID string) error
}

// NewCartRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{
		items: make(map[string]domain.Cart),
	}
}

// Get возвращает корзину покупателя; отсутствие корзины — пустая корзина.
func (r *cartRepositoryInMemory) Get(customerID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.items[customerID]
	if !ok {
		return domain.Cart{CustomerID: customerID, Items: []domain.CartItem{}}, nil
	}
	return cloneCart(cart), nil
}

// Upsert сохраняет корзину целиком.
func (r *cartRepositoryInMemory) Upsert(cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		if current, ok := r.items[cart.CustomerID]; ok {
			cart.ID = current.ID
		} else {
			cart.ID = uuid.NewString()
		}
	}
	cart.UpdatedAt = time.Now().UTC()

	r.items[cart.CustomerID] = cloneCart(cart)
	return nil
}

// CountWithProduct возвращает число корзин, содержащих товар.
func (r *cartRepositoryInMemory) CountWithProduct(productID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, cart := range r.items {
		if cart.HasProduct(productID) {
			count++
		}
	}
	return count, nil
}

// pullProduct изымает товар из всех корзин. Вызывается репозиторием товаров
// при деактивации, чтобы оба изменения применялись вместе.
func (r *cartRepositoryInMemory) pullProduct(productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pullHook != nil {
		return r.pullHook(productID)
	}

	now := time.Now().UTC()
	for customerID, cart := range r.items {
		if !cart.HasProduct(productID) {
			continue
		}
		kept := make([]domain.CartItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		cart.UpdatedAt = now
		r.items[customerID] = cart
	}
	return nil
}

// cloneCart копирует корзину вместе с позициями.
func cloneCart(cart domain.Cart) domain.Cart {
	cp := cart
	if cart.Items != nil {
		cp.Items = make([]domain.CartItem, len(cart.Items))
		copy(cp.Items, cart.Items)
	}
	return cp
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
