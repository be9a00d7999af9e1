package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fishgalaxy/backend/internal/domain"
)

type categoryRequest struct {
	Name     string `json:"name"`
	ImgURL   string `json:"imgUrl"`
	IsActive *bool  `json:"isActive"`
}

// CreateCategory создаёт категорию; позиция — конец списка.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	created, err := h.catalog.CreateCategory(domain.Category{
		Name:     req.Name,
		ImgURL:   req.ImgURL,
		IsActive: active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryView(created))
}

// ListCategories возвращает страницу категорий в витринном порядке.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.CategoryFilter{
		Status: query.Get("status"),
		Search: query.Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	categories, total, err := h.catalog.ListCategories(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Data:  toCategoryViews(categories),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetCategory возвращает категорию по ID.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	found, err := h.catalog.GetCategory(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryView(found))
}

// UpdateCategory обновляет имя, изображение и активность категории.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	updated, err := h.catalog.UpdateCategory(domain.Category{
		ID:       chi.URLParam(r, "id"),
		Name:     req.Name,
		ImgURL:   req.ImgURL,
		IsActive: active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryView(updated))
}

// DeleteCategory удаляет категорию; её товары переезжают в Uncategorized.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.catalog.DeleteCategory(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryView(deleted))
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

// ReorderCategories выставляет перечисленным категориям позиции 1..N.
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.catalog.ReorderCategories(req.IDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "categories reordered"})
}

type productRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	CategoryID      string   `json:"category"`
	ImageURL        string   `json:"imageUrl"`
	MoreImageURL    []string `json:"moreImageUrl"`
	PriceMinor      int64    `json:"priceMinor"`
	OfferMinor      int64    `json:"offerMinor"`
	Status          string   `json:"status"`
	IsLatestProduct bool     `json:"isLatestProduct"`
	IsOfferProduct  bool     `json:"isOfferProduct"`
}

func (req productRequest) toDomain(id string) domain.Product {
	return domain.Product{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		ImageURL:        req.ImageURL,
		MoreImageURL:    req.MoreImageURL,
		PriceMinor:      req.PriceMinor,
		OfferMinor:      req.OfferMinor,
		Status:          domain.ProductStatus(req.Status),
		IsLatestProduct: req.IsLatestProduct,
		IsOfferProduct:  req.IsOfferProduct,
		IsActive:        true,
	}
}

// CreateProduct создаёт карточку товара.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	created, err := h.catalog.CreateProduct(req.toDomain(""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(created))
}

// ListProducts возвращает витринную страницу товаров: только активные,
// с сортировками price-asc/price-desc/latest/offers.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		CategoryID:    query.Get("category"),
		Search:        query.Get("search"),
		MinOfferMinor: queryInt64(r, "minOfferMinor"),
		MaxOfferMinor: queryInt64(r, "maxOfferMinor"),
		Sort:          domain.ProductSort(query.Get("sort")),
		Page:          queryInt(r, "page"),
		Limit:         queryInt(r, "limit"),
	}
	switch filter.Sort {
	case domain.ProductSortLatest:
		filter.OnlyLatest = true
	case domain.ProductSortOffers:
		filter.OnlyOffers = true
	}

	h.listProducts(w, filter)
}

// ListProductsAdmin возвращает админскую выборку товаров: складской статус
// и диапазон дат создания.
func (h *Handler) ListProductsAdmin(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		Status:     domain.ProductStatus(query.Get("status")),
		CategoryID: query.Get("category"),
		Search:     query.Get("search"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}

	if raw := query.Get("startingDate"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartingDate = d
		}
	}
	if raw := query.Get("endingDate"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			// Включаем весь последний день диапазона.
			filter.EndingDate = d.Add(24*time.Hour - time.Millisecond)
		}
	}

	h.listProducts(w, filter)
}

func (h *Handler) listProducts(w http.ResponseWriter, filter domain.ProductFilter) {
	products, total, err := h.catalog.ListProducts(filter)
	if err != nil {
		writeError(w, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Data:  toProductViews(products),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetProduct возвращает товар по ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	found, err := h.catalog.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(found))
}

// UpdateProduct обновляет карточку товара.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.catalog.UpdateProduct(req.toDomain(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(updated))
}

// DeleteProduct мягко удаляет товар и изымает его из корзин.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.catalog.DeleteProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductView(deleted))
}
