package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/metrics"
)

// Service реализует регистрацию и вход по одноразовому коду.
type Service struct {
	customers domain.CustomerRepository
	codes     domain.OTPRepository
	sms       domain.SMSSender
	tokens    *TokenManager
	metrics   *metrics.AuthMetrics
	logger    *log.Entry

	now          func() time.Time
	generateCode func() (string, error)
}

// NewService конструирует сервис аутентификации с зависимостями.
func NewService(
	customers domain.CustomerRepository,
	codes domain.OTPRepository,
	sms domain.SMSSender,
	tokens *TokenManager,
	authMetrics *metrics.AuthMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "auth-service")
	}
	return &Service{
		customers:    customers,
		codes:        codes,
		sms:          sms,
		tokens:       tokens,
		metrics:      authMetrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		generateCode: generateCode,
	}
}

// Signup регистрирует покупателя и сразу выдаёт ему токен.
// Дубликат номера телефона — ErrMobileTaken.
func (s *Service) Signup(draft domain.Customer) (domain.Customer, string, error) {
	if err := draft.ValidateForSignup(); err != nil {
		return domain.Customer{}, "", err
	}

	draft.Role = domain.RoleUser
	draft.IsActive = true

	customer, err := s.customers.Create(draft)
	if err != nil {
		return domain.Customer{}, "", err
	}

	token, err := s.tokens.Generate(customer)
	if err != nil {
		return domain.Customer{}, "", err
	}

	if s.metrics != nil {
		s.metrics.RecordSignup()
	}
	s.logger.WithField("customer_id", customer.ID).Info("customer signed up")
	return customer, token, nil
}

// SendOTP выдаёт шестизначный код на зарегистрированный номер. Код живёт
// OTPTTL и замещает предыдущий код этого номера.
func (s *Service) SendOTP(mobile string) error {
	if mobile == "" {
		return domain.ErrMobileRequired
	}
	if !domain.ValidMobile(mobile) {
		return domain.ErrMobileInvalid
	}

	customer, err := s.customers.GetByMobile(mobile)
	if err != nil {
		return err
	}
	if !customer.IsActive {
		return domain.ErrCustomerBlocked
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := s.now()
	if err := s.codes.Save(domain.OTPCode{
		Mobile:    mobile,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.OTPTTL),
	}); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	if err := s.sms.Send(mobile, fmt.Sprintf("Your Fish Galaxy verification code is %s", code)); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOTPIssued()
	}
	s.logger.WithField("mobile", mobile).Info("otp sent")
	return nil
}

// ResendOTP повторно выдаёт код; предыдущий код при этом гасится.
func (s *Service) ResendOTP(mobile string) error {
	return s.SendOTP(mobile)
}

// ValidateOTP сверяет код и при успехе выдаёт токен. Истёкший или
// отсутствующий код — ErrOTPExpired, несовпавший — ErrOTPMismatch.
func (s *Service) ValidateOTP(mobile, code string) (domain.Customer, string, error) {
	if mobile == "" {
		return domain.Customer{}, "", domain.ErrMobileRequired
	}

	stored, err := s.codes.Get(mobile)
	if err != nil {
		s.recordValidation("expired")
		return domain.Customer{}, "", err
	}
	if stored.Code != code {
		s.recordValidation("mismatch")
		return domain.Customer{}, "", domain.ErrOTPMismatch
	}

	// Код одноразовый: успешная сверка гасит его.
	if err := s.codes.Delete(mobile); err != nil {
		s.logger.WithError(err).WithField("mobile", mobile).Warn("failed to delete used otp")
	}

	customer, err := s.customers.GetByMobile(mobile)
	if err != nil {
		return domain.Customer{}, "", err
	}
	if !customer.IsActive {
		return domain.Customer{}, "", domain.ErrCustomerBlocked
	}

	token, err := s.tokens.Generate(customer)
	if err != nil {
		return domain.Customer{}, "", err
	}

	s.recordValidation("ok")
	s.logger.WithField("customer_id", customer.ID).Info("otp validated, token issued")
	return customer, token, nil
}

func (s *Service) recordValidation(result string) {
	if s.metrics != nil {
		s.metrics.RecordOTPValidation(result)
	}
}

// generateCode возвращает криптослучайный шестизначный код с ведущими нулями.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
