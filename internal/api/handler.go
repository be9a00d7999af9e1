package api

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/service/auth"
	"github.com/fishgalaxy/backend/internal/service/catalog"
	"github.com/fishgalaxy/backend/internal/service/customer"
	"github.com/fishgalaxy/backend/internal/service/order"
)

// Handler объединяет HTTP-обработчики поверх сервисного слоя.
type Handler struct {
	orders    *order.Service
	catalog   *catalog.Service
	customers *customer.Service
	auth      *auth.Service
	logger    *log.Entry
}

// NewHandler конструирует обработчики с зависимостями.
func NewHandler(
	orders *order.Service,
	catalogSvc *catalog.Service,
	customers *customer.Service,
	authSvc *auth.Service,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.WithField("component", "api")
	}
	return &Handler{
		orders:    orders,
		catalog:   catalogSvc,
		customers: customers,
		auth:      authSvc,
		logger:    logger,
	}
}

// queryInt читает целочисленный query-параметр; отсутствие или мусор — 0.
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
