package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fishgalaxy/backend/internal/domain"
)

// GetProfile возвращает профиль аутентифицированного покупателя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	found, err := h.customers.Get(customerIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(found))
}

type profileRequest struct {
	Name          string `json:"name"`
	ShopName      string `json:"shopName"`
	Email         string `json:"email"`
	Pincode       int64  `json:"pincode"`
	Address       string `json:"address"`
	ProfileImgURL string `json:"profileImgUrl"`
}

// UpdateProfile обновляет профиль; телефон и роль не меняются.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.customers.Update(domain.Customer{
		ID:            customerIDFromContext(r.Context()),
		Name:          req.Name,
		ShopName:      req.ShopName,
		Email:         req.Email,
		Pincode:       req.Pincode,
		Address:       req.Address,
		ProfileImgURL: req.ProfileImgURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(updated))
}

// ListCustomers возвращает страницу покупателей для админки.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.CustomerFilter{
		Status: query.Get("status"),
		Search: query.Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	customers, total, err := h.customers.List(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{
		Data:  toCustomerViews(customers),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetCustomer возвращает учётную запись по ID (админка).
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	found, err := h.customers.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(found))
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetCustomerActive блокирует или разблокирует учётную запись (админка).
func (h *Handler) SetCustomerActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.customers.SetActive(chi.URLParam(r, "id"), req.Active)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(updated))
}

// DeleteCustomer удаляет учётную запись (админка).
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.customers.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerView(deleted))
}

// GetCart возвращает корзину аутентифицированного покупателя.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.customers.GetCart(customerIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(cart))
}

type cartRequest struct {
	Items []cartItemPayload `json:"items"`
}

// SaveCart перезаписывает корзину покупателя целиком.
func (h *Handler) SaveCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	items := make([]domain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	saved, err := h.customers.SaveCart(domain.Cart{
		CustomerID: customerIDFromContext(r.Context()),
		Items:      items,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(saved))
}
