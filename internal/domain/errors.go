package domain

import "errors"

var (
	// Ошибка отсутствующего покупателя в черновике заказа.
	ErrCustomerRequired = errors.New("customer reference is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrProductsRequired = errors.New("order must contain at least one product")
	// Ошибка отсутствующей итоговой суммы заказа.
	ErrTotalPriceRequired = errors.New("order total price is required")
	// Ошибка при некорректном количестве в позиции (<= 0).
	ErrLineQuantityInvalid = errors.New("line quantity must be greater than zero")
	// Ошибка при отрицательной цене позиции.
	ErrLinePriceInvalid = errors.New("line price must be non-negative")
	// ErrStatusInvalid возвращается при неизвестном значении статуса.
	ErrStatusInvalid = errors.New("not a valid status")
	// ErrDateInvalid возвращается при нераспознанном значении даты.
	ErrDateInvalid = errors.New("not a valid date")
	// Ошибка отсутствующего названия категории.
	ErrCategoryNameRequired = errors.New("category name is required")
	// Ошибка отсутствующих обязательных полей покупателя.
	ErrCustomerFieldsRequired = errors.New("all customer fields are required")
	// Ошибка при некорректном формате номера телефона.
	ErrMobileInvalid = errors.New("invalid mobile number")
	// Ошибка отсутствующего номера телефона.
	ErrMobileRequired = errors.New("provide a mobile number")

	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("no such order")
	// ErrCategoryNotFound возвращается, если категория не найдена.
	ErrCategoryNotFound = errors.New("no such category")
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = errors.New("no such product")
	// ErrCustomerNotFound возвращается, если покупатель не найден.
	ErrCustomerNotFound = errors.New("no such customer")

	// ErrMobileTaken — номер телефона уже зарегистрирован.
	ErrMobileTaken = errors.New("mobile number already in use")

	// ErrCustomerBlocked — учётная запись заблокирована администратором.
	ErrCustomerBlocked = errors.New("account is blocked")

	// ErrAllocationFailed — запись счётчика последовательности не удалась.
	// Создание заказа обязано прерваться: заказ без выданного номера не сохраняется.
	ErrAllocationFailed = errors.New("sequence allocation failed")

	// ErrOTPExpired — код не найден или его срок жизни истёк.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPMismatch — присланный код не совпал с выданным.
	ErrOTPMismatch = errors.New("otp is not matched")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// validationErrs перечисляет ошибки, которые классифицируются как некорректный ввод.
var validationErrs = []error{
	ErrCustomerRequired,
	ErrProductsRequired,
	ErrTotalPriceRequired,
	ErrLineQuantityInvalid,
	ErrLinePriceInvalid,
	ErrStatusInvalid,
	ErrDateInvalid,
	ErrCategoryNameRequired,
	ErrCustomerFieldsRequired,
	ErrMobileInvalid,
	ErrMobileRequired,
	ErrOTPExpired,
	ErrOTPMismatch,
	ErrCustomerBlocked,
}

// notFoundErrs перечисляет ошибки отсутствующих сущностей.
var notFoundErrs = []error{
	ErrOrderNotFound,
	ErrCategoryNotFound,
	ErrProductNotFound,
	ErrCustomerNotFound,
}

// IsValidation проверяет, относится ли ошибка к некорректному вводу.
func IsValidation(err error) bool {
	for _, e := range validationErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	for _, e := range notFoundErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// IsConflict проверяет, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrMobileTaken)
}
