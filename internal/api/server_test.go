package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fishgalaxy/backend/internal/api"
	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/service/auth"
	"github.com/fishgalaxy/backend/internal/service/catalog"
	"github.com/fishgalaxy/backend/internal/service/customer"
	"github.com/fishgalaxy/backend/internal/service/order"
	"github.com/fishgalaxy/backend/internal/storage/memory"
)

type captureSMS struct {
	mu       sync.Mutex
	messages []string
}

var _ domain.SMSSender = (*captureSMS)(nil)

func (c *captureSMS) Send(to, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, body)
	return nil
}

func (c *captureSMS) lastCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	fields := strings.Fields(c.messages[len(c.messages)-1])
	return fields[len(fields)-1]
}

type stubRenderer struct{}

func (stubRenderer) Render(domain.Order, domain.Customer) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

type apiFixture struct {
	mux       http.Handler
	tokens    *auth.TokenManager
	customers domain.CustomerRepository
	sms       *captureSMS
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	carts := memory.NewCartRepository()
	products := memory.NewProductRepository(carts)
	categories := memory.NewCategoryRepository()
	customers := memory.NewCustomerRepository()
	codes := memory.NewOTPRepository()
	orders := memory.NewOrderRepository()
	outboxRepo := memory.NewOutboxRepository()
	allocator := memory.NewSequenceAllocator()

	sms := &captureSMS{}
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	orderSvc := order.NewService(orders, customers, allocator, outboxRepo, stubRenderer{}, nil, nil)
	catalogSvc := catalog.NewService(categories, products, carts, nil)
	customerSvc := customer.NewService(customers, carts, nil)
	authSvc := auth.NewService(customers, codes, sms, tokens, nil, nil)

	server := api.NewServer(":0", api.NewHandler(orderSvc, catalogSvc, customerSvc, authSvc, nil), tokens)

	return &apiFixture{
		mux:       server.Mux(),
		tokens:    tokens,
		customers: customers,
		sms:       sms,
	}
}

// do выполняет запрос через роутер; токен передаётся cookie, как фронтенд.
func (fx *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: api.TokenCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	fx.mux.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (fx *apiFixture) signup(t *testing.T, mobile string) (string, string) {
	t.Helper()

	rec := fx.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Arun",
		"shopName": "Sea Breeze",
		"email":    "arun@example.com",
		"mobile":   mobile,
		"pincode":  600001,
		"address":  "12 Marina Road",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
		Token string `json:"token"`
	}
	decodeInto(t, rec, &resp)
	return resp.Customer.ID, resp.Token
}

func (fx *apiFixture) adminToken(t *testing.T) string {
	t.Helper()

	admin, err := fx.customers.Create(domain.Customer{
		Name:     "Admin",
		ShopName: "Fish Galaxy",
		Mobile:   "+919899999999",
		Pincode:  600001,
		Address:  "HQ",
		Role:     domain.RoleAdmin,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	token, err := fx.tokens.Generate(admin)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	return token
}

func orderPayload() map[string]any {
	return map[string]any{
		"products": []map[string]any{
			{"productId": "prod-1", "name": "Seer Fish", "quantity": 2, "priceMinor": 25000},
		},
		"address": map[string]any{
			"name":     "Arun",
			"shopName": "Sea Breeze",
			"address":  "12 Marina Road",
			"pincode":  600001,
			"mobile":   "+919812345678",
		},
		"subTotalMinor":   50000,
		"taxMinor":        2500,
		"shippingMinor":   0,
		"totalPriceMinor": 52500,
	}
}

func TestSignupSetsTokenCookie(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Arun",
		"shopName": "Sea Breeze",
		"mobile":   "+919812345678",
		"pincode":  600001,
		"address":  "12 Marina Road",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == api.TokenCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("cookie %q not set", api.TokenCookieName)
	}
	if !cookie.HttpOnly {
		t.Errorf("token cookie must be HttpOnly")
	}

	var resp struct {
		Customer struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"customer"`
		Token string `json:"token"`
	}
	decodeInto(t, rec, &resp)
	if resp.Customer.Role != "user" {
		t.Errorf("role = %q, want user", resp.Customer.Role)
	}

	id, role, err := fx.tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if id != resp.Customer.ID || role != domain.RoleUser {
		t.Errorf("token claims = (%q, %q), want (%q, user)", id, role, resp.Customer.ID)
	}
}

func TestSignupDuplicateMobile(t *testing.T) {
	fx := newAPIFixture(t)
	fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Second",
		"shopName": "Another Shop",
		"mobile":   "+919812345678",
		"pincode":  600002,
		"address":  "34 Beach Road",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestOTPLoginFlow(t *testing.T) {
	fx := newAPIFixture(t)
	customerID, _ := fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodPost, "/api/auth/otp/send", "", map[string]any{"mobile": "+919812345678"})
	if rec.Code != http.StatusOK {
		t.Fatalf("send otp status = %d, body %s", rec.Code, rec.Body.String())
	}

	code := fx.sms.lastCode()
	if len(code) != 6 {
		t.Fatalf("captured code = %q, want 6 digits", code)
	}

	rec = fx.do(t, http.MethodPost, "/api/auth/otp/validate", "", map[string]any{
		"mobile": "+919812345678",
		"code":   code,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("validate status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
		Token string `json:"token"`
	}
	decodeInto(t, rec, &resp)
	if resp.Customer.ID != customerID {
		t.Errorf("customer id = %q, want %q", resp.Customer.ID, customerID)
	}
	if resp.Token == "" {
		t.Errorf("expected token in response")
	}

	// код одноразовый
	rec = fx.do(t, http.MethodPost, "/api/auth/otp/validate", "", map[string]any{
		"mobile": "+919812345678",
		"code":   code,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("spent code status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestOTPSendUnknownMobile(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodPost, "/api/auth/otp/send", "", map[string]any{"mobile": "+919800000000"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAuthRequired(t *testing.T) {
	fx := newAPIFixture(t)

	rec := fx.do(t, http.MethodGet, "/api/cart", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = fx.do(t, http.MethodGet, "/api/cart", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdminRoutesForbiddenForUser(t *testing.T) {
	fx := newAPIFixture(t)
	_, token := fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodGet, "/api/admin/orders", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestOrderLifecycle(t *testing.T) {
	fx := newAPIFixture(t)
	ownerID, ownerToken := fx.signup(t, "+919812345678")
	_, strangerToken := fx.signup(t, "+919811111111")
	adminToken := fx.adminToken(t)

	rec := fx.do(t, http.MethodPost, "/api/orders", ownerToken, orderPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	var created struct {
		OrderID       int64  `json:"orderId"`
		CustomerID    string `json:"customer"`
		Status        string `json:"status"`
		StatusHistory []struct {
			Status string `json:"status"`
		} `json:"statusHistory"`
		TotalQuantity int32 `json:"totalQuantity"`
	}
	decodeInto(t, rec, &created)
	if created.OrderID != 1000 {
		t.Errorf("orderId = %d, want 1000", created.OrderID)
	}
	if created.Status != string(domain.OrderStatusPending) {
		t.Errorf("status = %q, want %q", created.Status, domain.OrderStatusPending)
	}
	if len(created.StatusHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(created.StatusHistory))
	}
	if created.CustomerID != ownerID {
		t.Errorf("customer = %q, want %q", created.CustomerID, ownerID)
	}
	if created.TotalQuantity != 2 {
		t.Errorf("totalQuantity = %d, want 2", created.TotalQuantity)
	}

	// владелец видит свой заказ по публичному номеру
	rec = fx.do(t, http.MethodGet, "/api/orders/1000", ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("owner get status = %d", rec.Code)
	}

	// чужой заказ неотличим от несуществующего
	rec = fx.do(t, http.MethodGet, "/api/orders/1000", strangerToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("stranger get status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = fx.do(t, http.MethodGet, "/api/admin/orders/1000", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin get status = %d", rec.Code)
	}

	rec = fx.do(t, http.MethodPatch, "/api/admin/orders/1000/status", adminToken, map[string]any{
		"status":      "shipped",
		"description": "Handed to courier",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated struct {
		Status        string `json:"status"`
		StatusHistory []struct {
			Status      string `json:"status"`
			Description string `json:"description"`
		} `json:"statusHistory"`
		Products []struct {
			ProductID string `json:"productId"`
		} `json:"products"`
	}
	decodeInto(t, rec, &updated)
	if updated.Status != "shipped" {
		t.Errorf("status = %q, want shipped", updated.Status)
	}
	if len(updated.StatusHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(updated.StatusHistory))
	}
	if len(updated.Products) != 1 {
		t.Errorf("status response products = %d, want 1", len(updated.Products))
	}

	rec = fx.do(t, http.MethodGet, "/api/orders/1000/invoice", ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoice status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("invoice content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("invoice body does not look like a PDF")
	}
}

func TestUpdateOrderStatusDate(t *testing.T) {
	fx := newAPIFixture(t)
	_, ownerToken := fx.signup(t, "+919812345678")
	adminToken := fx.adminToken(t)

	rec := fx.do(t, http.MethodPost, "/api/orders", ownerToken, orderPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	shippedAt := "2026-08-14T10:30:00Z"
	rec = fx.do(t, http.MethodPatch, "/api/admin/orders/1000/status", adminToken, map[string]any{
		"status":      "shipped",
		"description": "Handed to courier",
		"date":        shippedAt,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated struct {
		StatusHistory []struct {
			Status string    `json:"status"`
			Date   time.Time `json:"date"`
		} `json:"statusHistory"`
	}
	decodeInto(t, rec, &updated)

	want, err := time.Parse(time.RFC3339, shippedAt)
	if err != nil {
		t.Fatalf("parse reference date: %v", err)
	}
	found := false
	for _, entry := range updated.StatusHistory {
		if entry.Status == "shipped" {
			found = true
			if !entry.Date.Equal(want) {
				t.Errorf("shipped entry date = %v, want %v", entry.Date, want)
			}
		}
	}
	if !found {
		t.Fatal("shipped entry missing from history")
	}

	rec = fx.do(t, http.MethodPatch, "/api/admin/orders/1000/status", adminToken, map[string]any{
		"status": "delivered",
		"date":   "next tuesday",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("malformed date status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	fx := newAPIFixture(t)
	_, token := fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodPost, "/api/orders", token, map[string]any{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestAdminListOrders(t *testing.T) {
	fx := newAPIFixture(t)
	_, token := fx.signup(t, "+919812345678")
	adminToken := fx.adminToken(t)

	for i := 0; i < 3; i++ {
		rec := fx.do(t, http.MethodPost, "/api/orders", token, orderPayload())
		if rec.Code != http.StatusCreated {
			t.Fatalf("create #%d status = %d", i, rec.Code)
		}
	}

	rec := fx.do(t, http.MethodGet, "/api/admin/orders", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var page struct {
		Data []struct {
			OrderID int64 `json:"orderId"`
		} `json:"data"`
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	decodeInto(t, rec, &page)
	if page.Total != 3 || len(page.Data) != 3 {
		t.Errorf("total = %d, data = %d, want 3/3", page.Total, len(page.Data))
	}
	if page.Page != 1 || page.Limit != 10 {
		t.Errorf("pagination defaults = %d/%d, want 1/10", page.Page, page.Limit)
	}
	if page.Data[0].OrderID != 1002 {
		t.Errorf("first orderId = %d, want newest 1002", page.Data[0].OrderID)
	}

	rec = fx.do(t, http.MethodGet, "/api/admin/orders?status=delivered", adminToken, nil)
	decodeInto(t, rec, &page)
	if page.Total != 0 {
		t.Errorf("delivered total = %d, want 0", page.Total)
	}

	rec = fx.do(t, http.MethodGet, "/api/admin/orders?status=bogus", adminToken, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown status filter = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCategoryAdminAndPublicListing(t *testing.T) {
	fx := newAPIFixture(t)
	adminToken := fx.adminToken(t)

	ids := make([]string, 0, 2)
	for _, name := range []string{"Freshwater", "Shellfish"} {
		rec := fx.do(t, http.MethodPost, "/api/admin/categories", adminToken, map[string]any{"name": name})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create category status = %d, body %s", rec.Code, rec.Body.String())
		}
		var view struct {
			ID string `json:"id"`
		}
		decodeInto(t, rec, &view)
		ids = append(ids, view.ID)
	}

	rec := fx.do(t, http.MethodPut, "/api/admin/categories/reorder", adminToken, map[string]any{
		"ids": []string{ids[1], ids[0]},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder status = %d", rec.Code)
	}

	// публичный список без токена, в новом порядке
	rec = fx.do(t, http.MethodGet, "/api/categories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public list status = %d", rec.Code)
	}
	var page struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	decodeInto(t, rec, &page)
	if len(page.Data) != 2 {
		t.Fatalf("categories = %d, want 2", len(page.Data))
	}
	if page.Data[0].Name != "Shellfish" || page.Data[1].Name != "Freshwater" {
		t.Errorf("order after reorder = %q, %q", page.Data[0].Name, page.Data[1].Name)
	}
}

func TestCartRoundTrip(t *testing.T) {
	fx := newAPIFixture(t)
	_, token := fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodPut, "/api/cart", token, map[string]any{
		"items": []map[string]any{
			{"productId": "prod-1", "quantity": 2},
			{"productId": "prod-2", "quantity": 0},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save cart status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodGet, "/api/cart", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get cart status = %d", rec.Code)
	}

	var cart struct {
		Items []struct {
			ProductID string `json:"productId"`
			Quantity  int32  `json:"quantity"`
		} `json:"items"`
	}
	decodeInto(t, rec, &cart)
	if len(cart.Items) != 1 {
		t.Fatalf("items = %d, want 1 (zero quantities dropped)", len(cart.Items))
	}
	if cart.Items[0].ProductID != "prod-1" || cart.Items[0].Quantity != 2 {
		t.Errorf("item = %+v", cart.Items[0])
	}
}

func TestProfile(t *testing.T) {
	fx := newAPIFixture(t)
	_, token := fx.signup(t, "+919812345678")

	rec := fx.do(t, http.MethodPut, "/api/profile", token, map[string]any{
		"name":     "Arun K",
		"shopName": "Sea Breeze Exports",
		"pincode":  600004,
		"address":  "12 Marina Road",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodGet, "/api/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile status = %d", rec.Code)
	}

	var view struct {
		Name     string `json:"name"`
		ShopName string `json:"shopName"`
		Mobile   string `json:"mobile"`
	}
	decodeInto(t, rec, &view)
	if view.Name != "Arun K" || view.ShopName != "Sea Breeze Exports" {
		t.Errorf("profile = %q / %q", view.Name, view.ShopName)
	}
	if view.Mobile != "+919812345678" {
		t.Errorf("mobile changed on profile update: %q", view.Mobile)
	}
}

func TestBlockedCustomerCannotLogin(t *testing.T) {
	fx := newAPIFixture(t)
	customerID, _ := fx.signup(t, "+919812345678")
	adminToken := fx.adminToken(t)

	rec := fx.do(t, http.MethodPatch, fmt.Sprintf("/api/admin/customers/%s/active", customerID), adminToken, map[string]any{
		"active": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("block status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodPost, "/api/auth/otp/send", "", map[string]any{"mobile": "+919812345678"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("blocked otp send status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}
