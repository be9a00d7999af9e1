package customer

import (
	log "github.com/sirupsen/logrus"

	"github.com/fishgalaxy/backend/internal/domain"
)

// Service реализует операции над учётными записями и корзинами покупателей.
type Service struct {
	customers domain.CustomerRepository
	carts     domain.CartRepository
	logger    *log.Entry
}

// NewService конструирует сервис покупателей с зависимостями.
func NewService(customers domain.CustomerRepository, carts domain.CartRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "customer-service")
	}
	return &Service{
		customers: customers,
		carts:     carts,
		logger:    logger,
	}
}

// Get возвращает учётную запись по ID.
func (s *Service) Get(id string) (domain.Customer, error) {
	return s.customers.Get(id)
}

// List возвращает страницу покупателей (роль user) и общее число совпадений.
func (s *Service) List(filter domain.CustomerFilter) ([]domain.Customer, int, error) {
	return s.customers.List(filter)
}

// Update обновляет профиль; телефон, роль и активность через Update не меняются.
func (s *Service) Update(customer domain.Customer) (domain.Customer, error) {
	return s.customers.Update(customer)
}

// SetActive блокирует или разблокирует учётную запись.
func (s *Service) SetActive(id string, active bool) (domain.Customer, error) {
	customer, err := s.customers.SetActive(id, active)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithFields(log.Fields{
		"customer_id": id,
		"active":      active,
	}).Info("customer activity changed")
	return customer, nil
}

// Delete удаляет учётную запись.
func (s *Service) Delete(id string) (domain.Customer, error) {
	return s.customers.Delete(id)
}

// GetCart возвращает корзину покупателя; отсутствие корзины — пустая корзина.
func (s *Service) GetCart(customerID string) (domain.Cart, error) {
	return s.carts.Get(customerID)
}

// SaveCart перезаписывает корзину покупателя целиком. Позиции с нулевым
// количеством выбрасываются.
func (s *Service) SaveCart(cart domain.Cart) (domain.Cart, error) {
	kept := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	if err := s.carts.Upsert(cart); err != nil {
		return domain.Cart{}, err
	}
	return s.carts.Get(cart.CustomerID)
}
