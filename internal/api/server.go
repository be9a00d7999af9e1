package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/service/auth"
)

// Server — HTTP-сервер публичного и админского API.
type Server struct {
	mux    chi.Router
	server *http.Server
	logger *log.Entry
}

// NewServer конструирует сервер и собирает маршруты.
func NewServer(addr string, handler *Handler, tokens *auth.TokenManager) *Server {
	mux := chi.NewMux()

	s := &Server{
		mux:    mux,
		logger: log.WithField("component", "api-server"),
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
	s.setupRoutes(handler, tokens)
	return s
}

// ServeStatic раздаёт файлы каталога загрузок (PDF-счета) под /static/.
func (s *Server) ServeStatic(dir string) {
	s.mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
}

func (s *Server) setupRoutes(handler *Handler, tokens *auth.TokenManager) {
	s.mux.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5, "application/json"),
	)

	s.mux.Route("/api", func(r chi.Router) {
		// Открытые маршруты: регистрация, вход по OTP, витрина.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", handler.Signup)
			r.Post("/otp/send", handler.SendOTP)
			r.Post("/otp/resend", handler.ResendOTP)
			r.Post("/otp/validate", handler.ValidateOTP)
		})

		r.Get("/categories", handler.ListCategories)
		r.Get("/products", handler.ListProducts)
		r.Get("/products/{id}", handler.GetProduct)

		// Маршруты аутентифицированного покупателя.
		r.Group(func(r chi.Router) {
			r.Use(Auth(tokens))

			r.Get("/profile", handler.GetProfile)
			r.Put("/profile", handler.UpdateProfile)
			r.Get("/cart", handler.GetCart)
			r.Put("/cart", handler.SaveCart)

			r.Post("/orders", handler.CreateOrder)
			r.Get("/orders/{ref}", handler.GetOrder)
			r.Get("/orders/{ref}/invoice", handler.OrderInvoice)
		})

		// Админские маршруты.
		r.Route("/admin", func(r chi.Router) {
			r.Use(Auth(tokens), AdminOnly)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", handler.ListOrders)
				r.Delete("/", handler.ClearOrders)
				r.Get("/{ref}", handler.GetOrder)
				r.Patch("/{ref}/status", handler.UpdateOrderStatus)
				r.Get("/{ref}/invoice", handler.OrderInvoice)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", handler.CreateCategory)
				r.Get("/", handler.ListCategories)
				r.Put("/reorder", handler.ReorderCategories)
				r.Get("/{id}", handler.GetCategory)
				r.Put("/{id}", handler.UpdateCategory)
				r.Delete("/{id}", handler.DeleteCategory)
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", handler.CreateProduct)
				r.Get("/", handler.ListProductsAdmin)
				r.Get("/{id}", handler.GetProduct)
				r.Put("/{id}", handler.UpdateProduct)
				r.Delete("/{id}", handler.DeleteProduct)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", handler.ListCustomers)
				r.Get("/{id}", handler.GetCustomer)
				r.Patch("/{id}/active", handler.SetCustomerActive)
				r.Delete("/{id}", handler.DeleteCustomer)
			})
		})
	})
}

// Start запускает сервер; блокируется до остановки.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("starting api server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Stop останавливает сервер, дожидаясь активных запросов.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping api server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown api server: %w", err)
	}
	return nil
}

// Mux отдаёт маршрутизатор; нужен httptest-тестам.
func (s *Server) Mux() chi.Router {
	return s.mux
}
