package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fishgalaxy/backend/internal/domain"
)

// TokenTTL — срок жизни выдаваемого access-токена.
const TokenTTL = 24 * time.Hour

type claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// TokenManager выпускает и проверяет JWT с идентификатором и ролью учётной записи.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager конструирует менеджер токенов. Пустой secret недопустим на
// уровне конфигурации; здесь он не перепроверяется.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Generate выпускает подписанный токен для учётной записи.
func (m *TokenManager) Generate(customer domain.Customer) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: customer.ID,
		Role:   customer.Role,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок жизни токена и возвращает ID и роль владельца.
func (m *TokenManager) Parse(accessToken string) (string, domain.Role, error) {
	parsed := &claims{}

	token, err := jwt.ParseWithClaims(
		accessToken,
		parsed,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
	)
	if err != nil {
		return "", "", err
	}

	if !token.Valid || parsed.UserID == "" {
		return "", "", fmt.Errorf("token is not valid")
	}

	return parsed.UserID, parsed.Role, nil
}
