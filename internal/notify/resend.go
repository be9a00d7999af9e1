package notify

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendMailer отправляет транзакционные письма через Resend API.
type ResendMailer struct {
	client *resty.Client
	from   string
	logger *log.Entry
}

// NewResendMailer конструирует почтовый клиент Resend.
func NewResendMailer(apiKey, from string) *ResendMailer {
	client := resty.New()
	client.
		SetAuthToken(apiKey).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &ResendMailer{
		client: client,
		from:   from,
		logger: log.WithField("component", "resend-mailer"),
	}
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// Send отправляет письмо; вложение кодируется base64, как требует API.
func (m *ResendMailer) Send(email domain.Email) error {
	body := resendRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	}
	if email.Attachment != nil {
		body.Attachments = []resendAttachment{{
			Filename: email.Attachment.Filename,
			Content:  base64.StdEncoding.EncodeToString(email.Attachment.Content),
		}}
	}

	response, err := m.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(resendEndpoint)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	if response.StatusCode() != http.StatusOK {
		return fmt.Errorf("send email: unexpected status %s: %s", response.Status(), response.String())
	}

	m.logger.WithFields(log.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Debug("email sent")
	return nil
}

var _ domain.EmailSender = (*ResendMailer)(nil)
