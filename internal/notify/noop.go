package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

// NoopSender пишет исходящие сообщения в лог вместо внешних провайдеров.
// Используется в локальной разработке и тестовых окружениях без ключей.
type NoopSender struct {
	logger *log.Entry
}

// NewNoopSender конструирует лог-заглушку для всех каналов доставки.
func NewNoopSender() *NoopSender {
	return &NoopSender{logger: log.WithField("component", "noop-sender")}
}

func (s *NoopSender) Send(email domain.Email) error {
	s.logger.WithFields(log.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info("email suppressed (noop sender)")
	return nil
}

// SendSMS реализует domain.SMSSender через адаптер smsFunc ниже.
func (s *NoopSender) SendSMS(to, body string) error {
	s.logger.WithField("to", to).Info("sms suppressed (noop sender)")
	return nil
}

func (s *NoopSender) SendDocument(to, body, mediaURL string) error {
	s.logger.WithFields(log.Fields{
		"to":    to,
		"media": mediaURL,
	}).Info("whatsapp message suppressed (noop sender)")
	return nil
}

// SMS адаптирует NoopSender к domain.SMSSender: сигнатура Send занята письмами.
func (s *NoopSender) SMS() domain.SMSSender {
	return smsFunc(s.SendSMS)
}

type smsFunc func(to, body string) error

func (f smsFunc) Send(to, body string) error {
	return f(to, body)
}

var (
	_ domain.EmailSender    = (*NoopSender)(nil)
	_ domain.WhatsAppSender = (*NoopSender)(nil)
)
