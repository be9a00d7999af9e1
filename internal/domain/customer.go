package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Role разграничивает доступ к админским операциям.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superAdmin"
)

// IsAdmin сообщает, даёт ли роль доступ к администрированию.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Customer — учётная запись покупателя или администратора.
type Customer struct {
	ID       string
	Name     string
	ShopName string
	Email    string
	// Mobile в формате E.164; уникален среди всех учётных записей.
	Mobile  string
	Pincode int64
	Address string
	Role    Role
	// IsActive=false — учётная запись заблокирована.
	IsActive      bool
	ProfileImgURL string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// mobilePattern — E.164 с необязательным плюсом, как в исходной проверке.
var mobilePattern = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

// ValidMobile проверяет формат номера телефона.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// ValidateForSignup проверяет обязательные поля при регистрации.
func (c *Customer) ValidateForSignup() error {
	for _, field := range []string{c.Name, c.ShopName, c.Mobile, c.Address} {
		if strings.TrimSpace(field) == "" {
			return ErrCustomerFieldsRequired
		}
	}
	if c.Pincode == 0 {
		return ErrCustomerFieldsRequired
	}
	if !ValidMobile(c.Mobile) {
		return ErrMobileInvalid
	}
	return nil
}

// CustomerFilter — спецификация выборки покупателей для админки.
type CustomerFilter struct {
	// Status: "" — все, "active" — только активные, иначе — заблокированные.
	Status string
	Search string
	Page   int
	Limit  int
}

// Matches проверяет покупателя против фильтра: текст ищется по имени, магазину
// и email; числовой поиск дополнительно сравнивается с телефоном и индексом.
func (f CustomerFilter) Matches(c Customer) bool {
	if c.Role != RoleUser {
		return false
	}
	switch f.Status {
	case "":
	case "active":
		if !c.IsActive {
			return false
		}
	default:
		if c.IsActive {
			return false
		}
	}
	if f.Search == "" {
		return true
	}
	if containsFold(c.Name, f.Search) || containsFold(c.ShopName, f.Search) || containsFold(c.Email, f.Search) {
		return true
	}
	if n, err := strconv.ParseInt(f.Search, 10, 64); err == nil {
		if c.Pincode == n || strings.Contains(c.Mobile, f.Search) {
			return true
		}
	}
	return false
}

// Offset возвращает смещение пагинации.
func (f CustomerFilter) Offset() int {
	page := f.Page
	if page <= 0 {
		page = defaultPage
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return (page - 1) * limit
}
