package memory

import (
	"sync"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
)

// otpRepositoryInMemory — простая in-memory реализация OTPRepository.
type otpRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.OTPCode
}

// NewOTPRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOTPRepository() domain.OTPRepository {
	return &otpRepositoryInMemory{
		items: make(map[string]domain.OTPCode),
	}
}

// Save сохраняет код, замещая предыдущий для того же номера.
func (r *otpRepositoryInMemory) Save(code domain.OTPCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[code.Mobile] = code
	return nil
}

// Get возвращает живой код или ErrOTPExpired, если кода нет либо он истёк.
func (r *otpRepositoryInMemory) Get(mobile string) (domain.OTPCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.items[mobile]
	if !ok || code.Expired(time.Now().UTC()) {
		return domain.OTPCode{}, domain.ErrOTPExpired
	}
	return code, nil
}

func (r *otpRepositoryInMemory) Delete(mobile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, mobile)
	return nil
}

// DeleteExpired удаляет не более limit истёкших кодов; возвращает число удалённых.
func (r *otpRepositoryInMemory) DeleteExpired(before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for mobile, code := range r.items {
		if limit > 0 && deleted >= limit {
			break
		}
		if code.ExpiresAt.Before(before) {
			delete(r.items, mobile)
			deleted++
		}
	}
	return deleted, nil
}

var _ domain.OTPRepository = (*otpRepositoryInMemory)(nil)
