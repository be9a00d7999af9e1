package api

import (
	"context"
	"net/http"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/service/auth"
)

type customerIDKey struct{}
type roleKey struct{}

// TokenCookieName — cookie с access-токеном покупателя.
const TokenCookieName = "user_token"

// Auth проверяет токен из cookie либо заголовка Authorization и кладёт
// идентификатор и роль владельца в контекст запроса.
func Auth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			customerID, role, err := tokens.Parse(raw)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), customerIDKey{}, customerID)
			ctx = context.WithValue(ctx, roleKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly пропускает только запросы с админской ролью. Вешается после Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !roleFromContext(r.Context()).IsAdmin() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	const bearerPrefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && header[:len(bearerPrefix)] == bearerPrefix {
		return header[len(bearerPrefix):]
	}
	return ""
}

func customerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(customerIDKey{}).(string)
	return id
}

func roleFromContext(ctx context.Context) domain.Role {
	role, _ := ctx.Value(roleKey{}).(domain.Role)
	return role
}
