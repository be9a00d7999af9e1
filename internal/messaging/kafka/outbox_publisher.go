package kafka

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

// topicPublisher оборачивает outbox-сообщения в Envelope и отправляет их
// в один фиксированный topic.
type topicPublisher struct {
	producer *Producer
	topic    string
}

var _ domain.OutboxPublisher = (*topicPublisher)(nil)

// NewOutboxPublisher создаёт паблишер transactional outbox для заданного
// topic. Пустой topic означает основной поток событий заказов.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &topicPublisher{producer: producer, topic: topic}
}

func (p *topicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka outbox publisher is not initialized")
	}

	envelope := Envelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	}

	// Ключ партиционирования — агрегат: события одного заказа сохраняют
	// порядок внутри партиции.
	return p.producer.PublishEvent(p.topic, p.messageKey(event), envelope)
}

func (p *topicPublisher) messageKey(event domain.OutboxMessage) string {
	if event.AggregateID != "" {
		return event.AggregateID
	}
	return event.ID
}
