package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// OrderSearch — разобранное значение поисковой строки. Источник допускает три
// варианта: внутренний идентификатор, публичный номер и текстовый поиск по
// адресным полям. Явный тип вместо динамической сборки фильтра упрощает тесты.
type OrderSearch struct {
	ID      string
	OrderID int64
	Text    string
}

// IsZero сообщает, задан ли поиск вообще.
func (s OrderSearch) IsZero() bool {
	return s.ID == "" && s.OrderID == 0 && s.Text == ""
}

// ParseOrderSearch классифицирует поисковую строку: UUID — внутренний ID,
// число — публичный номер, остальное — регистронезависимый поиск по
// address.name и address.shopName.
func ParseOrderSearch(raw string) OrderSearch {
	if raw == "" {
		return OrderSearch{}
	}
	if _, err := uuid.Parse(raw); err == nil {
		return OrderSearch{ID: raw}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return OrderSearch{OrderID: n}
	}
	return OrderSearch{Text: raw}
}

// OrderFilter — спецификация выборки заказов.
type OrderFilter struct {
	// Statuses — статусы для выборки; пустой срез означает все статусы.
	Statuses []OrderStatus
	// StartingDate/EndingDate ограничивают createdAt; EndingDate включительно
	// до конца суток.
	StartingDate time.Time
	EndingDate   time.Time
	Search       OrderSearch
	Page         int
	Limit        int
}

// NewOrderFilter собирает фильтр из сырых параметров запроса.
// Неизвестный статус — ошибка валидации, как и в исходном API.
func NewOrderFilter(status, search, startingDate, endingDate string, page, limit int) (OrderFilter, error) {
	f := OrderFilter{
		Search: ParseOrderSearch(search),
		Page:   page,
		Limit:  limit,
	}

	if status != "" {
		s := OrderStatus(status)
		if !ValidOrderStatus(s) {
			return OrderFilter{}, ErrStatusInvalid
		}
		f.Statuses = []OrderStatus{s}
	}

	if startingDate != "" {
		d, err := time.Parse("2006-01-02", startingDate)
		if err != nil {
			return OrderFilter{}, ErrDateInvalid
		}
		f.StartingDate = d
	}
	if endingDate != "" {
		d, err := time.Parse("2006-01-02", endingDate)
		if err != nil {
			return OrderFilter{}, ErrDateInvalid
		}
		// Включаем весь последний день диапазона.
		f.EndingDate = d.Add(24*time.Hour - time.Millisecond)
	}

	f.normalize()
	return f, nil
}

func (f *OrderFilter) normalize() {
	if f.Page <= 0 {
		f.Page = defaultPage
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
}

// Offset возвращает смещение пагинации: skip = (page-1)*limit.
func (f OrderFilter) Offset() int {
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

// Matches проверяет заказ против фильтра. Используется in-memory реализацией;
// PostgreSQL-реализация переводит те же условия в SQL.
func (f OrderFilter) Matches(order Order) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if order.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if !f.StartingDate.IsZero() && order.CreatedAt.Before(f.StartingDate) {
		return false
	}
	if !f.EndingDate.IsZero() && order.CreatedAt.After(f.EndingDate) {
		return false
	}

	switch {
	case f.Search.ID != "":
		return order.ID == f.Search.ID
	case f.Search.OrderID != 0:
		return order.OrderID == f.Search.OrderID
	case f.Search.Text != "":
		return containsFold(order.Address.Name, f.Search.Text) ||
			containsFold(order.Address.ShopName, f.Search.Text)
	}

	return true
}

// PaginationWindow урезает отсортированный срез заказов до страницы фильтра.
func (f OrderFilter) PaginationWindow(orders []Order) []Order {
	offset := f.Offset()
	if offset >= len(orders) {
		return []Order{}
	}
	end := offset + f.Limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end]
}
