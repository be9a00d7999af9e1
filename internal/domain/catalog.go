package domain

import "time"

// Category — товарная категория с ручным порядком отображения.
type Category struct {
	ID   string
	Name string
	// ImgURL — публичная ссылка на изображение категории.
	ImgURL string
	// Order — позиция в витрине; создание ставит категорию в конец (max+1).
	Order     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет обязательные поля категории.
func (c *Category) Validate() error {
	if c.Name == "" {
		return ErrCategoryNameRequired
	}
	return nil
}

// UncategorizedName — имя категории-приёмника товаров при удалении их категории.
const UncategorizedName = "Uncategorized"

// CategoryFilter — спецификация выборки категорий.
type CategoryFilter struct {
	// Status: "" — все, "active" — только активные, иначе — только неактивные.
	Status string
	Search string
	Page   int
	Limit  int
}

// Matches проверяет категорию против фильтра.
func (f CategoryFilter) Matches(c Category) bool {
	switch f.Status {
	case "":
	case "active":
		if !c.IsActive {
			return false
		}
	default:
		if c.IsActive {
			return false
		}
	}
	if f.Search != "" && !containsFold(c.Name, f.Search) {
		return false
	}
	return true
}

// Offset возвращает смещение пагинации.
func (f CategoryFilter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return (page - 1) * limit
}

// ProductStatus описывает складской статус товара.
type ProductStatus string

const (
	ProductStatusStocked    ProductStatus = "stocked"
	ProductStatusOutOfStock ProductStatus = "out of stock"
)

// Product — карточка товара каталога.
type Product struct {
	ID           string
	Name         string
	Description  string
	CategoryID   string
	ImageURL     string
	MoreImageURL []string
	// PriceMinor — базовая цена, OfferMinor — актуальная цена со скидкой.
	PriceMinor      int64
	OfferMinor      int64
	Status          ProductStatus
	IsLatestProduct bool
	IsOfferProduct  bool
	// IsActive=false — мягкое удаление, товар скрыт из всех выборок.
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductSort задаёт порядок витринной выборки товаров.
type ProductSort string

const (
	ProductSortNewest    ProductSort = ""
	ProductSortPriceAsc  ProductSort = "price-asc"
	ProductSortPriceDesc ProductSort = "price-desc"
	ProductSortLatest    ProductSort = "latest"
	ProductSortOffers    ProductSort = "offers"
)

// ProductFilter — спецификация выборки товаров.
type ProductFilter struct {
	Status     ProductStatus
	CategoryID string
	Search     string
	// MinOfferMinor/MaxOfferMinor ограничивают цену со скидкой (витрина).
	MinOfferMinor int64
	MaxOfferMinor int64
	StartingDate  time.Time
	EndingDate    time.Time
	OnlyStocked   bool
	OnlyLatest    bool
	OnlyOffers    bool
	Sort          ProductSort
	Page          int
	Limit         int
}

// Matches проверяет товар против фильтра. Неактивные товары не видны никогда.
func (f ProductFilter) Matches(p Product) bool {
	if !p.IsActive {
		return false
	}
	if f.OnlyStocked && p.Status != ProductStatusStocked {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Search != "" && !containsFold(p.Name, f.Search) {
		return false
	}
	if f.MaxOfferMinor > 0 && (p.OfferMinor < f.MinOfferMinor || p.OfferMinor > f.MaxOfferMinor) {
		return false
	}
	if !f.StartingDate.IsZero() && p.CreatedAt.Before(f.StartingDate) {
		return false
	}
	if !f.EndingDate.IsZero() && p.CreatedAt.After(f.EndingDate) {
		return false
	}
	if f.OnlyLatest && !p.IsLatestProduct {
		return false
	}
	if f.OnlyOffers && !p.IsOfferProduct {
		return false
	}
	return true
}

// Offset возвращает смещение пагинации.
func (f ProductFilter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return (page - 1) * limit
}
