package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fishgalaxy/backend/internal/domain"
)

type createOrderRequest struct {
	Products      []orderLineView `json:"products"`
	Address       addressPayload  `json:"address"`
	SubTotalMinor int64           `json:"subTotalMinor"`
	TaxMinor      int64           `json:"taxMinor"`
	ShippingMinor int64           `json:"shippingMinor"`
	TotalMinor    int64           `json:"totalPriceMinor"`
	Notes         string          `json:"notes"`
}

// CreateOrder размещает заказ от имени аутентифицированного покупателя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lines := make([]domain.OrderLine, 0, len(req.Products))
	for _, line := range req.Products {
		lines = append(lines, domain.OrderLine{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			PriceMinor: line.PriceMinor,
			OfferMinor: line.OfferMinor,
			TotalMinor: line.TotalMinor,
		})
	}

	created, err := h.orders.Create(domain.Order{
		CustomerID: customerIDFromContext(r.Context()),
		Products:   lines,
		Address: domain.Address{
			Name:     req.Address.Name,
			ShopName: req.Address.ShopName,
			Address:  req.Address.Address,
			Pincode:  req.Address.Pincode,
			Email:    req.Address.Email,
			Mobile:   req.Address.Mobile,
		},
		SubTotalMinor: req.SubTotalMinor,
		TaxMinor:      req.TaxMinor,
		ShippingMinor: req.ShippingMinor,
		TotalMinor:    req.TotalMinor,
		Notes:         req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderView(created))
}

// ListOrders возвращает страницу заказов по фильтру (админка).
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter, err := domain.NewOrderFilter(
		query.Get("status"),
		query.Get("search"),
		query.Get("startingDate"),
		query.Get("endingDate"),
		queryInt(r, "page"),
		queryInt(r, "limit"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	orders, total, err := h.orders.List(filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Data:  toOrderViews(orders),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// GetOrder возвращает заказ по внутреннему ID или публичному номеру.
// Покупатель видит только свои заказы; администратор — любые.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ref := domain.ParseOrderRef(chi.URLParam(r, "ref"))

	found, err := h.orders.Get(ref)
	if err != nil {
		writeError(w, err)
		return
	}

	if !roleFromContext(r.Context()).IsAdmin() && found.CustomerID != customerIDFromContext(r.Context()) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrOrderNotFound.Error()})
		return
	}

	writeJSON(w, http.StatusOK, toOrderView(found))
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
	Date        string `json:"date"`
}

// eventDate разбирает дату события из тела запроса. Пустая строка — нулевое
// время, дату тогда проставляет сервис.
func (r updateStatusRequest) eventDate() (time.Time, error) {
	if r.Date == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return d, nil
	}
	if d, err := time.Parse("2006-01-02", r.Date); err == nil {
		return d, nil
	}
	return time.Time{}, domain.ErrDateInvalid
}

// UpdateOrderStatus переводит заказ в новый статус. Ответ усечён до первой
// позиции заказа.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	at, err := req.eventDate()
	if err != nil {
		writeError(w, err)
		return
	}

	ref := domain.ParseOrderRef(chi.URLParam(r, "ref"))
	updated, err := h.orders.UpdateStatus(ref, domain.OrderStatus(req.Status), req.Description, req.Reason, at)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderView(updated))
}

// OrderInvoice отдаёт PDF-счёт по заказу.
func (h *Handler) OrderInvoice(w http.ResponseWriter, r *http.Request) {
	ref := domain.ParseOrderRef(chi.URLParam(r, "ref"))

	if !roleFromContext(r.Context()).IsAdmin() {
		found, err := h.orders.Get(ref)
		if err != nil {
			writeError(w, err)
			return
		}
		if found.CustomerID != customerIDFromContext(r.Context()) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrOrderNotFound.Error()})
			return
		}
	}

	pdf, err := h.orders.Invoice(ref)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice.pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// ClearOrders удаляет все заказы. Только для сброса тестовых окружений.
func (h *Handler) ClearOrders(w http.ResponseWriter, _ *http.Request) {
	if err := h.orders.Clear(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "orders cleared"})
}
