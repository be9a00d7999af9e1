package domain

import "time"

// CartItem — позиция корзины: ссылка на товар и количество.
type CartItem struct {
	ProductID string
	Quantity  int32
}

// Cart — корзина покупателя; одна на учётную запись.
type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	UpdatedAt  time.Time
}

// HasProduct сообщает, есть ли товар в корзине.
func (c *Cart) HasProduct(productID string) bool {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}
