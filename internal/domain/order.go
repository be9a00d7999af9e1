package domain

import (
	"strconv"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает обработки.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing — заказ принят в работу.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю (терминальный).
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled — заказ отменён (терминальный).
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusReturnRequest — покупатель запросил возврат.
	OrderStatusReturnRequest OrderStatus = "return request"
	// OrderStatusReturnApproved — возврат согласован.
	OrderStatusReturnApproved OrderStatus = "return approved"
	// OrderStatusReturnRejected — возврат отклонён.
	OrderStatusReturnRejected OrderStatus = "return rejected"
	// OrderStatusPickupCompleted — курьер забрал товар у покупателя.
	OrderStatusPickupCompleted OrderStatus = "pickup completed"
	// OrderStatusReturned — возврат завершён (терминальный).
	OrderStatusReturned OrderStatus = "returned"
)

// AllOrderStatuses перечисляет все значения статуса в порядке жизненного цикла.
// Используется фильтром списка заказов, когда статус не задан.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
	OrderStatusReturnRequest,
	OrderStatusReturnApproved,
	OrderStatusReturnRejected,
	OrderStatusPickupCompleted,
	OrderStatusReturned,
}

// ValidOrderStatus проверяет, что значение входит в известный набор статусов.
func ValidOrderStatus(status OrderStatus) bool {
	for _, s := range AllOrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition решает, допустим ли переход между статусами.
// Граф намеренно разрешающий: администратор может перевести заказ из любого
// статуса в любой известный. Вся логика ограничений собрана здесь, чтобы
// ужесточение графа было правкой в одном месте.
func CanTransition(from, to OrderStatus) bool {
	return ValidOrderStatus(to)
}

// StatusEntry — одна запись в истории статусов заказа.
type StatusEntry struct {
	Status      OrderStatus
	Date        time.Time
	Description string
	Reason      string
}

// OrderLine представляет одну позицию заказа. Позиции неизменяемы после создания.
type OrderLine struct {
	ProductID  string
	Name       string
	Quantity   int32
	PriceMinor int64
	OfferMinor int64
	TotalMinor int64
}

// Address — снапшот адреса доставки на момент оформления. Хранится копией,
// а не ссылкой: данные покупателя могут измениться после размещения заказа.
type Address struct {
	Name     string
	ShopName string
	Address  string
	Pincode  int64
	Email    string
	Mobile   string
}

// Order агрегирует состояние заказа, его позиции и историю статусов.
type Order struct {
	// ID — внутренний идентификатор (UUID).
	ID string
	// OrderID — публичный номер заказа, выдаётся счётчиком ровно один раз.
	OrderID int64
	// CustomerID — ссылка на разместившего заказ покупателя.
	CustomerID string
	Status     OrderStatus
	// StatusHistory — append-only журнал переходов; не более одной записи
	// на каждое различное значение статуса.
	StatusHistory []StatusEntry
	Products      []OrderLine
	SubTotalMinor int64
	TaxMinor      int64
	ShippingMinor int64
	TotalMinor    int64
	TotalQuantity int32
	Address       Address
	Notes         string
	DeliveryDate  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasStatusEntry сообщает, есть ли в истории запись с данным статусом.
func (o *Order) HasStatusEntry(status OrderStatus) bool {
	for _, entry := range o.StatusHistory {
		if entry.Status == status {
			return true
		}
	}
	return false
}

// ValidateForCreate проверяет обязательные поля черновика заказа.
func (o *Order) ValidateForCreate() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Products) == 0 {
		errs = append(errs, ErrProductsRequired)
	}
	if o.TotalMinor <= 0 {
		errs = append(errs, ErrTotalPriceRequired)
	}
	for _, line := range o.Products {
		if line.Quantity <= 0 {
			errs = append(errs, ErrLineQuantityInvalid)
		}
		if line.PriceMinor < 0 || line.OfferMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
	}

	return errs
}

// ProjectFirstProduct возвращает копию заказа, где products усечены до первой
// позиции. Нужна списочным представлениям, чтобы не раздувать ответ.
func (o Order) ProjectFirstProduct() Order {
	if len(o.Products) > 1 {
		o.Products = o.Products[:1]
	}
	return o
}

// OrderRef адресует заказ либо по внутреннему ID, либо по публичному номеру:
// внешние вызовы (поддержка, покупатели) оперируют публичным номером.
type OrderRef struct {
	ID      string
	OrderID int64
}

// ParseOrderRef интерпретирует строку запроса: число считается публичным
// номером, всё остальное — внутренним идентификатором.
func ParseOrderRef(raw string) OrderRef {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return OrderRef{OrderID: n}
	}
	return OrderRef{ID: raw}
}

// DeliveryLeadTime — срок доставки по умолчанию, прибавляется к моменту создания.
const DeliveryLeadTime = 7 * 24 * time.Hour
