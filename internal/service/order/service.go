package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/metrics"
)

// Начальная запись истории статусов нового заказа.
const placedDescription = "Order placed"

// Service реализует жизненный цикл заказа поверх доменных репозиториев.
type Service struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	allocator domain.SequenceAllocator
	outbox    domain.OutboxRepository
	invoices  domain.InvoiceRenderer
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
	now       func() time.Time
}

// NewService конструирует сервис заказов с зависимостями.
func NewService(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	allocator domain.SequenceAllocator,
	outbox domain.OutboxRepository,
	invoices domain.InvoiceRenderer,
	orderMetrics *metrics.OrderMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		customers: customers,
		allocator: allocator,
		outbox:    outbox,
		invoices:  invoices,
		metrics:   orderMetrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create размещает заказ: валидирует черновик, выдаёт публичный номер,
// сохраняет заказ со статусом pending и ставит событие в outbox.
// Если выдача номера не удалась, заказ не сохраняется.
func (s *Service) Create(draft domain.Order) (domain.Order, error) {
	started := s.now()

	if errs := draft.ValidateForCreate(); len(errs) > 0 {
		return domain.Order{}, errors.Join(errs...)
	}

	orderID, err := s.allocator.AllocateNext(domain.OrderIDScope)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now()
	draft.ID = uuid.NewString()
	draft.OrderID = orderID
	draft.Status = domain.OrderStatusPending
	draft.StatusHistory = []domain.StatusEntry{{
		Status:      domain.OrderStatusPending,
		Date:        now,
		Description: placedDescription,
	}}
	draft.DeliveryDate = now.Add(domain.DeliveryLeadTime)
	draft.CreatedAt = now
	draft.UpdatedAt = now

	for i, line := range draft.Products {
		if line.TotalMinor == 0 {
			draft.Products[i].TotalMinor = line.OfferMinor * int64(line.Quantity)
		}
	}
	if draft.TotalQuantity == 0 {
		for _, line := range draft.Products {
			draft.TotalQuantity += line.Quantity
		}
	}

	if err := s.orders.Create(draft); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.enqueueEvent(draft.ID, domain.EventTypeOrderCreated, domain.OrderCreatedEvent{
		OrderID:    draft.OrderID,
		InternalID: draft.ID,
		CustomerID: draft.CustomerID,
		TotalMinor: draft.TotalMinor,
		CreatedAt:  draft.CreatedAt,
	})

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.RecordCreateDuration(s.now().Sub(started))
	}
	s.logger.WithFields(log.Fields{
		"order_id":    draft.OrderID,
		"internal_id": draft.ID,
		"customer_id": draft.CustomerID,
	}).Info("order placed")

	return draft, nil
}

// Get возвращает заказ по внутреннему ID либо публичному номеру.
func (s *Service) Get(ref domain.OrderRef) (domain.Order, error) {
	return s.orders.GetByRef(ref)
}

// List возвращает страницу заказов и общее число совпадений по фильтру.
func (s *Service) List(filter domain.OrderFilter) ([]domain.Order, int, error) {
	return s.orders.List(filter)
}

// UpdateStatus переводит заказ в новый статус. Запись в истории появляется не
// более одного раза на статус: повторный перевод не трогает дату и описание
// первой записи. Дата события задаётся вызывающей стороной; нулевое значение
// означает "сейчас". Возвращается заказ, усечённый до первой позиции.
func (s *Service) UpdateStatus(ref domain.OrderRef, status domain.OrderStatus, description, reason string, at time.Time) (domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, domain.ErrStatusInvalid
	}
	if at.IsZero() {
		at = s.now()
	}

	current, err := s.orders.GetByRef(ref)
	if err != nil {
		return domain.Order{}, err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.Order{}, domain.ErrStatusInvalid
	}

	updated, err := s.orders.SetStatus(ref, domain.StatusEntry{
		Status:      status,
		Date:        at,
		Description: description,
		Reason:      reason,
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.enqueueEvent(updated.ID, domain.EventTypeOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:    updated.OrderID,
		InternalID: updated.ID,
		CustomerID: updated.CustomerID,
		Status:     status,
		ChangedAt:  updated.UpdatedAt,
	})

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(status))
	}
	s.logger.WithFields(log.Fields{
		"order_id": updated.OrderID,
		"status":   status,
	}).Info("order status updated")

	return updated.ProjectFirstProduct(), nil
}

// Invoice отрисовывает PDF-счёт по заказу.
func (s *Service) Invoice(ref domain.OrderRef) ([]byte, error) {
	order, err := s.orders.GetByRef(ref)
	if err != nil {
		return nil, err
	}

	// Счёт выписывается и без живой учётной записи: адресные данные
	// продублированы снапшотом в самом заказе.
	customer, err := s.customers.Get(order.CustomerID)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}

	pdf, err := s.invoices.Render(order, customer)
	if err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceIssued()
	}
	return pdf, nil
}

// Clear удаляет все заказы. Только для сброса тестовых окружений.
func (s *Service) Clear() error {
	if err := s.orders.Clear(); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordOrdersCleared()
	}
	s.logger.Warn("order store cleared")
	return nil
}

// enqueueEvent складывает событие в outbox. Сбой постановки не откатывает
// основную операцию: событие теряется, факт фиксируется в логе.
func (s *Service) enqueueEvent(aggregateID, eventType string, payload any) {
	if s.outbox == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Error("failed to marshal outbox payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
	}); err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Error("failed to enqueue outbox event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}
