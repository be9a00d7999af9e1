package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/messaging/kafka"
)

// Dispatcher слушает события заказов и рассылает уведомления: письмо со
// счётом и WhatsApp-сообщение при создании, письмо при смене статуса.
// Доставка fire-and-forget: сбой канала логируется и не блокирует остальные.
type Dispatcher struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	invoices  domain.InvoiceRenderer
	uploader  domain.Uploader
	email     domain.EmailSender
	whatsapp  domain.WhatsAppSender
	logger    *log.Entry
}

// NewDispatcher конструирует диспетчер уведомлений с зависимостями.
func NewDispatcher(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	invoices domain.InvoiceRenderer,
	uploader domain.Uploader,
	email domain.EmailSender,
	whatsapp domain.WhatsAppSender,
	logger *log.Entry,
) *Dispatcher {
	if logger == nil {
		logger = log.WithField("component", "notification-dispatcher")
	}
	return &Dispatcher{
		orders:    orders,
		customers: customers,
		invoices:  invoices,
		uploader:  uploader,
		email:     email,
		whatsapp:  whatsapp,
		logger:    logger,
	}
}

// Handle обрабатывает одно сообщение из topic событий заказов.
// Нечитаемый конверт — ошибка (сообщение уедет в DLQ); сбой доставки
// уведомления ошибкой не считается.
func (d *Dispatcher) Handle(_ context.Context, message *sarama.ConsumerMessage) error {
	envelope, err := kafka.ParseEnvelope(message)
	if err != nil {
		return err
	}

	switch envelope.EventType {
	case domain.EventTypeOrderCreated:
		var event domain.OrderCreatedEvent
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			return fmt.Errorf("unmarshal order created event: %w", err)
		}
		d.notifyOrderCreated(event)
	case domain.EventTypeOrderStatusChanged:
		var event domain.OrderStatusChangedEvent
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			return fmt.Errorf("unmarshal status changed event: %w", err)
		}
		d.notifyStatusChanged(event)
	default:
		d.logger.WithField("event_type", envelope.EventType).Debug("event type ignored")
	}

	return nil
}

func (d *Dispatcher) notifyOrderCreated(event domain.OrderCreatedEvent) {
	logger := d.logger.WithField("order_id", event.OrderID)

	order, err := d.orders.GetByRef(domain.OrderRef{ID: event.InternalID})
	if err != nil {
		logger.WithError(err).Warn("order not found, notification skipped")
		return
	}

	var customer domain.Customer
	if d.customers != nil {
		customer, err = d.customers.Get(order.CustomerID)
		if err != nil && !domain.IsNotFound(err) {
			logger.WithError(err).Warn("failed to load customer")
		}
	}

	invoiceURL := ""
	var pdf []byte
	if d.invoices != nil {
		pdf, err = d.invoices.Render(order, customer)
		if err != nil {
			logger.WithError(err).Warn("failed to render invoice")
		} else if d.uploader != nil {
			invoiceURL, err = d.uploader.Upload(
				fmt.Sprintf("invoices/%d.pdf", order.OrderID), pdf, "application/pdf")
			if err != nil {
				logger.WithError(err).Warn("failed to upload invoice")
				invoiceURL = ""
			}
		}
	}

	if d.email != nil && order.Address.Email != "" {
		email := domain.Email{
			To:      order.Address.Email,
			Subject: fmt.Sprintf("Order #%d confirmed", order.OrderID),
			HTML:    orderCreatedHTML(order),
		}
		if pdf != nil {
			email.Attachment = &domain.EmailAttachment{
				Filename:    fmt.Sprintf("invoice-%d.pdf", order.OrderID),
				Content:     pdf,
				ContentType: "application/pdf",
			}
		}
		if err := d.email.Send(email); err != nil {
			logger.WithError(err).Warn("failed to send order email")
		}
	}

	if d.whatsapp != nil && order.Address.Mobile != "" {
		body := fmt.Sprintf("Your Fish Galaxy order #%d has been placed. Expected delivery: %s.",
			order.OrderID, order.DeliveryDate.Format("02 Jan 2006"))
		if err := d.whatsapp.SendDocument(order.Address.Mobile, body, invoiceURL); err != nil {
			logger.WithError(err).Warn("failed to send whatsapp message")
		}
	}

	logger.Info("order created notifications dispatched")
}

func (d *Dispatcher) notifyStatusChanged(event domain.OrderStatusChangedEvent) {
	logger := d.logger.WithFields(log.Fields{
		"order_id": event.OrderID,
		"status":   event.Status,
	})

	order, err := d.orders.GetByRef(domain.OrderRef{ID: event.InternalID})
	if err != nil {
		logger.WithError(err).Warn("order not found, notification skipped")
		return
	}

	if d.email != nil && order.Address.Email != "" {
		email := domain.Email{
			To:      order.Address.Email,
			Subject: fmt.Sprintf("Order #%d is now %s", order.OrderID, event.Status),
			HTML:    statusChangedHTML(order, event.Status),
		}
		if err := d.email.Send(email); err != nil {
			logger.WithError(err).Warn("failed to send status email")
		}
	}

	logger.Info("status change notification dispatched")
}

func orderCreatedHTML(order domain.Order) string {
	return fmt.Sprintf(
		"<h2>Thank you for your order!</h2>"+
			"<p>Hi %s, your order <b>#%d</b> has been placed successfully.</p>"+
			"<p>Total: %.2f. Expected delivery: %s.</p>"+
			"<p>Your invoice is attached to this email.</p>",
		order.Address.Name, order.OrderID,
		float64(order.TotalMinor)/100,
		order.DeliveryDate.Format("02 Jan 2006"),
	)
}

func statusChangedHTML(order domain.Order, status domain.OrderStatus) string {
	return fmt.Sprintf(
		"<h2>Order update</h2>"+
			"<p>Hi %s, your order <b>#%d</b> is now <b>%s</b>.</p>",
		order.Address.Name, order.OrderID, status,
	)
}
