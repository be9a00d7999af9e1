package domain

import "time"

// Типы исходящих событий заказа. Ядро только складывает их в outbox;
// доставкой (почта, WhatsApp, внешние потребители) занимается внешний слой.
const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"
)

// AggregateTypeOrder — тип агрегата для конверта outbox-события.
const AggregateTypeOrder = "order"

// OrderCreatedEvent — полезная нагрузка события создания заказа.
type OrderCreatedEvent struct {
	OrderID    int64     `json:"order_id"`
	InternalID string    `json:"internal_id"`
	CustomerID string    `json:"customer_id"`
	TotalMinor int64     `json:"total_minor"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderStatusChangedEvent — полезная нагрузка события смены статуса.
type OrderStatusChangedEvent struct {
	OrderID    int64       `json:"order_id"`
	InternalID string      `json:"internal_id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	ChangedAt  time.Time   `json:"changed_at"`
}
