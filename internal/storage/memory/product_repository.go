package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fishgalaxy/backend/internal/domain"
)

// productPuller изымает товар из всех корзин; реализуется локальным
// репозиторием корзин.
type productPuller interface {
	pullProduct(productID string) error
}

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
	carts domain.CartRepository
}

// NewProductRepository возвращает in-memory репозиторий для локальной
// разработки и тестов. Репозиторий корзин нужен деактивации товара: она
// изымает товар из корзин и скрывает карточку как одно целое.
func NewProductRepository(carts domain.CartRepository) domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
		carts: carts,
	}
}

func (r *productRepositoryInMemory) Create(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	r.items[product.ID] = cloneProduct(product)
	return cloneProduct(product), nil
}

func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok || !product.IsActive {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// List возвращает страницу товаров по фильтру и общее число совпадений.
func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if filter.Matches(product) {
			matched = append(matched, cloneProduct(product))
		}
	}

	sortProducts(matched, filter.Sort)

	total := len(matched)
	offset := filter.Offset()
	if offset >= len(matched) {
		return []domain.Product{}, total, nil
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

func (r *productRepositoryInMemory) Update(product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok || !current.IsActive {
		return domain.Product{}, domain.ErrProductNotFound
	}

	product.CreatedAt = current.CreatedAt
	product.IsActive = current.IsActive
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = cloneProduct(product)
	return cloneProduct(product), nil
}

// Deactivate скрывает товар и изымает его из корзин. Если изъятие из корзин
// не удалось, карточка остаётся видимой: изменения применяются только парой.
func (r *productRepositoryInMemory) Deactivate(id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok || !product.IsActive {
		return domain.Product{}, domain.ErrProductNotFound
	}

	if puller, ok := r.carts.(productPuller); ok {
		if err := puller.pullProduct(id); err != nil {
			return domain.Product{}, err
		}
	}

	product.IsActive = false
	product.UpdatedAt = time.Now().UTC()
	r.items[id] = product
	return cloneProduct(product), nil
}

// ReassignCategory переводит все товары категории from в категорию to.
func (r *productRepositoryInMemory) ReassignCategory(fromCategoryID, toCategoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for id, product := range r.items {
		if product.CategoryID != fromCategoryID {
			continue
		}
		product.CategoryID = toCategoryID
		product.UpdatedAt = now
		r.items[id] = product
	}
	return nil
}

// sortProducts упорядочивает выборку согласно витринной сортировке.
func sortProducts(products []domain.Product, by domain.ProductSort) {
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch by {
		case domain.ProductSortPriceAsc:
			if a.OfferMinor != b.OfferMinor {
				return a.OfferMinor < b.OfferMinor
			}
		case domain.ProductSortPriceDesc:
			if a.OfferMinor != b.OfferMinor {
				return a.OfferMinor > b.OfferMinor
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// cloneProduct копирует товар вместе со срезом дополнительных изображений.
func cloneProduct(product domain.Product) domain.Product {
	cp := product
	if product.MoreImageURL != nil {
		cp.MoreImageURL = make([]string, len(product.MoreImageURL))
		copy(cp.MoreImageURL, product.MoreImageURL)
	}
	return cp
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
