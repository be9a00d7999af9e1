package notify

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

const twilioMessagesURL = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// TwilioClient доставляет SMS и WhatsApp-сообщения через Twilio Messages API.
type TwilioClient struct {
	client       *resty.Client
	endpoint     string
	smsFrom      string
	whatsappFrom string
	logger       *log.Entry
}

// NewTwilioClient конструирует клиент Twilio. smsFrom и whatsappFrom — номера
// отправителя для соответствующих каналов.
func NewTwilioClient(accountSID, authToken, smsFrom, whatsappFrom string) *TwilioClient {
	client := resty.New()
	client.
		SetBasicAuth(accountSID, authToken).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &TwilioClient{
		client:       client,
		endpoint:     fmt.Sprintf(twilioMessagesURL, accountSID),
		smsFrom:      smsFrom,
		whatsappFrom: whatsappFrom,
		logger:       log.WithField("component", "twilio-client"),
	}
}

// Send доставляет SMS.
func (c *TwilioClient) Send(to, body string) error {
	return c.send(map[string]string{
		"To":   to,
		"From": c.smsFrom,
		"Body": body,
	})
}

// SendDocument доставляет WhatsApp-сообщение с медиавложением.
func (c *TwilioClient) SendDocument(to, body, mediaURL string) error {
	form := map[string]string{
		"To":   "whatsapp:" + to,
		"From": "whatsapp:" + c.whatsappFrom,
		"Body": body,
	}
	if mediaURL != "" {
		form["MediaUrl"] = mediaURL
	}
	return c.send(form)
}

func (c *TwilioClient) send(form map[string]string) error {
	response, err := c.client.R().
		SetFormData(form).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if response.StatusCode() != http.StatusCreated && response.StatusCode() != http.StatusOK {
		return fmt.Errorf("send message: unexpected status %s: %s", response.Status(), response.String())
	}

	c.logger.WithField("to", form["To"]).Debug("message sent")
	return nil
}

var (
	_ domain.SMSSender      = (*TwilioClient)(nil)
	_ domain.WhatsAppSender = (*TwilioClient)(nil)
)
