package auth_test

import (
	"testing"
	"time"

	"github.com/fishgalaxy/backend/internal/domain"
	"github.com/fishgalaxy/backend/internal/service/auth"
)

func TestTokenManager_GenerateParse(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)

	token, err := manager.Generate(domain.Customer{ID: "customer-1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	userID, role, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if userID != "customer-1" {
		t.Fatalf("expected customer-1, got %s", userID)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", role)
	}
}

func TestTokenManager_ParseWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", time.Hour)
	verifier := auth.NewTokenManager("secret-b", time.Hour)

	token, err := issuer.Generate(domain.Customer{ID: "customer-1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, _, err := verifier.Parse(token); err == nil {
		t.Fatal("expected parse to fail with a different secret")
	}
}

func TestTokenManager_ParseExpired(t *testing.T) {
	short := auth.NewTokenManager("test-secret", time.Nanosecond)

	token, err := short.Generate(domain.Customer{ID: "customer-1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, _, err := short.Parse(token); err == nil {
		t.Fatal("expected parse to fail for expired token")
	}
}

func TestTokenManager_ParseGarbage(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)
	if _, _, err := manager.Parse("not-a-token"); err == nil {
		t.Fatal("expected parse to fail for malformed token")
	}
}
