package api

import (
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

type addressPayload struct {
	Name     string `json:"name"`
	ShopName string `json:"shopName"`
	Address  string `json:"address"`
	Pincode  int64  `json:"pincode"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
}

type statusEntryView struct {
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type orderLineView struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	Quantity   int32  `json:"quantity"`
	PriceMinor int64  `json:"priceMinor"`
	OfferMinor int64  `json:"offerMinor"`
	TotalMinor int64  `json:"totalMinor"`
}

type orderView struct {
	ID            string            `json:"id"`
	OrderID       int64             `json:"orderId"`
	CustomerID    string            `json:"customer"`
	Status        string            `json:"status"`
	StatusHistory []statusEntryView `json:"statusHistory"`
	Products      []orderLineView   `json:"products"`
	SubTotalMinor int64             `json:"subTotalMinor"`
	TaxMinor      int64             `json:"taxMinor"`
	ShippingMinor int64             `json:"shippingMinor"`
	TotalMinor    int64             `json:"totalMinor"`
	TotalQuantity int32             `json:"totalQuantity"`
	Address       addressPayload    `json:"address"`
	Notes         string            `json:"notes,omitempty"`
	DeliveryDate  time.Time         `json:"deliveryDate"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func toOrderView(order domain.Order) orderView {
	history := make([]statusEntryView, 0, len(order.StatusHistory))
	for _, entry := range order.StatusHistory {
		history = append(history, statusEntryView{
			Status:      string(entry.Status),
			Date:        entry.Date,
			Description: entry.Description,
			Reason:      entry.Reason,
		})
	}

	lines := make([]orderLineView, 0, len(order.Products))
	for _, line := range order.Products {
		lines = append(lines, orderLineView{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			PriceMinor: line.PriceMinor,
			OfferMinor: line.OfferMinor,
			TotalMinor: line.TotalMinor,
		})
	}

	return orderView{
		ID:            order.ID,
		OrderID:       order.OrderID,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		StatusHistory: history,
		Products:      lines,
		SubTotalMinor: order.SubTotalMinor,
		TaxMinor:      order.TaxMinor,
		ShippingMinor: order.ShippingMinor,
		TotalMinor:    order.TotalMinor,
		TotalQuantity: order.TotalQuantity,
		Address: addressPayload{
			Name:     order.Address.Name,
			ShopName: order.Address.ShopName,
			Address:  order.Address.Address,
			Pincode:  order.Address.Pincode,
			Email:    order.Address.Email,
			Mobile:   order.Address.Mobile,
		},
		Notes:        order.Notes,
		DeliveryDate: order.DeliveryDate,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}

func toOrderViews(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toOrderView(order))
	}
	return views
}

type categoryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImgURL    string    `json:"imgUrl,omitempty"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toCategoryView(c domain.Category) categoryView {
	return categoryView{
		ID:        c.ID,
		Name:      c.Name,
		ImgURL:    c.ImgURL,
		Order:     c.Order,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCategoryViews(categories []domain.Category) []categoryView {
	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, toCategoryView(c))
	}
	return views
}

type productView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CategoryID      string    `json:"category"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	MoreImageURL    []string  `json:"moreImageUrl,omitempty"`
	PriceMinor      int64     `json:"priceMinor"`
	OfferMinor      int64     `json:"offerMinor"`
	Status          string    `json:"status"`
	IsLatestProduct bool      `json:"isLatestProduct"`
	IsOfferProduct  bool      `json:"isOfferProduct"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		ImageURL:        p.ImageURL,
		MoreImageURL:    p.MoreImageURL,
		PriceMinor:      p.PriceMinor,
		OfferMinor:      p.OfferMinor,
		Status:          string(p.Status),
		IsLatestProduct: p.IsLatestProduct,
		IsOfferProduct:  p.IsOfferProduct,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

type customerView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ShopName      string    `json:"shopName"`
	Email         string    `json:"email,omitempty"`
	Mobile        string    `json:"mobile"`
	Pincode       int64     `json:"pincode"`
	Address       string    `json:"address"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"isActive"`
	ProfileImgURL string    `json:"profileImgUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toCustomerView(c domain.Customer) customerView {
	return customerView{
		ID:            c.ID,
		Name:          c.Name,
		ShopName:      c.ShopName,
		Email:         c.Email,
		Mobile:        c.Mobile,
		Pincode:       c.Pincode,
		Address:       c.Address,
		Role:          string(c.Role),
		IsActive:      c.IsActive,
		ProfileImgURL: c.ProfileImgURL,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toCustomerViews(customers []domain.Customer) []customerView {
	views := make([]customerView, 0, len(customers))
	for _, c := range customers {
		views = append(views, toCustomerView(c))
	}
	return views
}

type cartItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type cartView struct {
	ID        string            `json:"id,omitempty"`
	Items     []cartItemPayload `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toCartView(cart domain.Cart) cartView {
	items := make([]cartItemPayload, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemPayload{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return cartView{ID: cart.ID, Items: items, UpdatedAt: cart.UpdatedAt}
}
