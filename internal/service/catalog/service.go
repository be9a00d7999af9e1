package catalog

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

// Service реализует операции каталога: категории и товары.
type Service struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	carts      domain.CartRepository
	logger     *log.Entry
}

// NewService конструирует сервис каталога с зависимостями.
func NewService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	carts domain.CartRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog-service")
	}
	return &Service{
		categories: categories,
		products:   products,
		carts:      carts,
		logger:     logger,
	}
}

// CreateCategory сохраняет категорию; позиция назначается хранилищем (конец списка).
func (s *Service) CreateCategory(category domain.Category) (domain.Category, error) {
	if err := category.Validate(); err != nil {
		return domain.Category{}, err
	}
	return s.categories.Create(category)
}

// GetCategory возвращает категорию по ID.
func (s *Service) GetCategory(id string) (domain.Category, error) {
	return s.categories.Get(id)
}

// ListCategories возвращает страницу категорий и общее число совпадений.
func (s *Service) ListCategories(filter domain.CategoryFilter) ([]domain.Category, int, error) {
	return s.categories.List(filter)
}

// UpdateCategory обновляет имя, изображение и активность категории.
func (s *Service) UpdateCategory(category domain.Category) (domain.Category, error) {
	if err := category.Validate(); err != nil {
		return domain.Category{}, err
	}
	return s.categories.Update(category)
}

// DeleteCategory удаляет категорию, предварительно переведя её товары в
// категорию-приёмник Uncategorized. Приёмник создаётся при первом удалении.
func (s *Service) DeleteCategory(id string) (domain.Category, error) {
	category, err := s.categories.Get(id)
	if err != nil {
		return domain.Category{}, err
	}
	if category.Name == domain.UncategorizedName {
		// Приёмник удалять нельзя: товарам будет некуда падать.
		return domain.Category{}, domain.ErrCategoryNameRequired
	}

	fallback, err := s.categories.GetByName(domain.UncategorizedName)
	if domain.IsNotFound(err) {
		fallback, err = s.categories.Create(domain.Category{
			Name:     domain.UncategorizedName,
			IsActive: true,
		})
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("resolve fallback category: %w", err)
	}

	if err := s.products.ReassignCategory(id, fallback.ID); err != nil {
		return domain.Category{}, fmt.Errorf("reassign products: %w", err)
	}

	deleted, err := s.categories.Delete(id)
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.WithFields(log.Fields{
		"category": deleted.Name,
		"fallback": fallback.ID,
	}).Info("category deleted, products moved to fallback")
	return deleted, nil
}

// ReorderCategories выставляет перечисленным категориям позиции 1..N в порядке
// перечисления. Не перечисленные категории сохраняют свои позиции.
func (s *Service) ReorderCategories(ids []string) error {
	return s.categories.Reorder(ids)
}

// CreateProduct сохраняет карточку товара.
func (s *Service) CreateProduct(product domain.Product) (domain.Product, error) {
	if product.Status == "" {
		product.Status = domain.ProductStatusStocked
	}
	product.IsActive = true
	return s.products.Create(product)
}

// GetProduct возвращает товар по ID; мягко удалённые товары не видны.
func (s *Service) GetProduct(id string) (domain.Product, error) {
	return s.products.Get(id)
}

// ListProducts возвращает страницу товаров и общее число совпадений.
func (s *Service) ListProducts(filter domain.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(filter)
}

// UpdateProduct обновляет карточку товара.
func (s *Service) UpdateProduct(product domain.Product) (domain.Product, error) {
	return s.products.Update(product)
}

// DeleteProduct мягко удаляет товар и изымает его из корзин. Оба изменения
// применяются вместе либо не применяются вовсе.
func (s *Service) DeleteProduct(id string) (domain.Product, error) {
	affected, err := s.carts.CountWithProduct(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("count carts with product: %w", err)
	}

	product, err := s.products.Deactivate(id)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product":        product.Name,
		"carts_affected": affected,
	}).Info("product deactivated and pulled from carts")
	return product, nil
}
