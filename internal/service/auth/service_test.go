package auth_test

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/service/auth"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

// captureSMS запоминает отправленные сообщения вместо реальной доставки.
type captureSMS struct {
	mu       sync.Mutex
	messages []string
}

func (c *captureSMS) Send(_, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, body)
	return nil
}

// lastCode вытаскивает шестизначный код из последнего сообщения.
func (c *captureSMS) lastCode(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		t.Fatal("no sms captured")
	}
	last := c.messages[len(c.messages)-1]
	fields := strings.Fields(last)
	return fields[len(fields)-1]
}

var _ domain.SMSSender = (*captureSMS)(nil)

type authFixture struct {
	service   *auth.Service
	customers domain.CustomerRepository
	codes     domain.OTPRepository
	sms       *captureSMS
	tokens    *auth.TokenManager
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	customers := memory.NewCustomerRepository()
	codes := memory.NewOTPRepository()
	sms := &captureSMS{}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	service := auth.NewService(customers, codes, sms, tokens, nil, nil)
	return authFixture{service: service, customers: customers, codes: codes, sms: sms, tokens: tokens}
}

func makeSignup() domain.Customer {
	return domain.Customer{
		Name:     "Ravi Kumar",
		ShopName: "Sea Breeze Mart",
		Mobile:   "+919812345678",
		Pincode:  600001,
		Address:  "12 Marina Road, Chennai",
	}
}

func TestService_Signup(t *testing.T) {
	f := newAuthFixture(t)

	customer, token, err := f.service.Signup(makeSignup())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if customer.Role != domain.RoleUser {
		t.Fatalf("signup must assign the user role, got %s", customer.Role)
	}
	if !customer.IsActive {
		t.Fatal("new account must be active")
	}

	userID, role, err := f.tokens.Parse(token)
	if err != nil {
		t.Fatalf("issued token must parse: %v", err)
	}
	if userID != customer.ID || role != domain.RoleUser {
		t.Fatalf("token claims mismatch: %s %s", userID, role)
	}
}

func TestService_SignupDuplicateMobile(t *testing.T) {
	f := newAuthFixture(t)

	if _, _, err := f.service.Signup(makeSignup()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, _, err := f.service.Signup(makeSignup()); !errors.Is(err, domain.ErrMobileTaken) {
		t.Fatalf("expected ErrMobileTaken, got %v", err)
	}
}

func TestService_SignupInvalid(t *testing.T) {
	f := newAuthFixture(t)

	draft := makeSignup()
	draft.ShopName = ""
	if _, _, err := f.service.Signup(draft); !errors.Is(err, domain.ErrCustomerFieldsRequired) {
		t.Fatalf("expected ErrCustomerFieldsRequired, got %v", err)
	}
}

func TestService_OTPFlow(t *testing.T) {
	f := newAuthFixture(t)
	signup := makeSignup()
	if _, _, err := f.service.Signup(signup); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := f.service.SendOTP(signup.Mobile); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	code := f.sms.lastCode(t)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	customer, token, err := f.service.ValidateOTP(signup.Mobile, code)
	if err != nil {
		t.Fatalf("validate otp failed: %v", err)
	}
	if customer.Mobile != signup.Mobile {
		t.Fatalf("expected customer %s, got %s", signup.Mobile, customer.Mobile)
	}
	if token == "" {
		t.Fatal("expected a token on successful validation")
	}

	// Код одноразовый: повторная сверка должна провалиться.
	if _, _, err := f.service.ValidateOTP(signup.Mobile, code); !errors.Is(err, domain.ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired for spent code, got %v", err)
	}
}

func TestService_ValidateOTPMismatch(t *testing.T) {
	f := newAuthFixture(t)
	signup := makeSignup()
	if _, _, err := f.service.Signup(signup); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := f.service.SendOTP(signup.Mobile); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	if _, _, err := f.service.ValidateOTP(signup.Mobile, "000000x"); !errors.Is(err, domain.ErrOTPMismatch) {
		t.Fatalf("expected ErrOTPMismatch, got %v", err)
	}
}

func TestService_ResendReplacesCode(t *testing.T) {
	f := newAuthFixture(t)
	signup := makeSignup()
	if _, _, err := f.service.Signup(signup); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := f.service.SendOTP(signup.Mobile); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	first := f.sms.lastCode(t)

	if err := f.service.ResendOTP(signup.Mobile); err != nil {
		t.Fatalf("resend otp failed: %v", err)
	}
	second := f.sms.lastCode(t)

	if first != second {
		// Старый код погашен: сверка по нему должна провалиться.
		if _, _, err := f.service.ValidateOTP(signup.Mobile, first); !errors.Is(err, domain.ErrOTPMismatch) {
			t.Fatalf("expected ErrOTPMismatch for replaced code, got %v", err)
		}
	}

	if _, _, err := f.service.ValidateOTP(signup.Mobile, second); err != nil {
		t.Fatalf("latest code must validate: %v", err)
	}
}

func TestService_SendOTPUnknownMobile(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.service.SendOTP("+919999999999"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if err := f.service.SendOTP(""); !errors.Is(err, domain.ErrMobileRequired) {
		t.Fatalf("expected ErrMobileRequired, got %v", err)
	}
	if err := f.service.SendOTP("abc"); !errors.Is(err, domain.ErrMobileInvalid) {
		t.Fatalf("expected ErrMobileInvalid, got %v", err)
	}
}

func TestService_BlockedCustomer(t *testing.T) {
	f := newAuthFixture(t)
	signup := makeSignup()
	customer, _, err := f.service.Signup(signup)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if err := f.service.SendOTP(signup.Mobile); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	code := f.sms.lastCode(t)

	if _, err := f.customers.SetActive(customer.ID, false); err != nil {
		t.Fatalf("block failed: %v", err)
	}

	if err := f.service.SendOTP(signup.Mobile); !errors.Is(err, domain.ErrCustomerBlocked) {
		t.Fatalf("expected ErrCustomerBlocked on send, got %v", err)
	}
	if _, _, err := f.service.ValidateOTP(signup.Mobile, code); !errors.Is(err, domain.ErrCustomerBlocked) {
		t.Fatalf("expected ErrCustomerBlocked on validate, got %v", err)
	}
}
