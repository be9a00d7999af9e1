package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fishgalaxy/backend/internal/domain"
)

func TestIsValidation(t *testing.T) {
	for _, err := range []error{
		domain.ErrCustomerRequired,
		domain.ErrStatusInvalid,
		domain.ErrDateInvalid,
		domain.ErrOTPMismatch,
		domain.ErrCustomerBlocked,
	} {
		if !domain.IsValidation(err) {
			t.Fatalf("expected %v to classify as validation", err)
		}
	}

	if domain.IsValidation(domain.ErrOrderNotFound) {
		t.Fatal("not found must not classify as validation")
	}
}

func TestIsValidation_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("create order: %w", domain.ErrTotalPriceRequired)
	if !domain.IsValidation(wrapped) {
		t.Fatal("wrapped validation error must still classify")
	}

	joined := errors.Join(domain.ErrCustomerRequired, domain.ErrProductsRequired)
	if !domain.IsValidation(joined) {
		t.Fatal("joined validation errors must still classify")
	}
}

func TestIsNotFound(t *testing.T) {
	for _, err := range []error{
		domain.ErrOrderNotFound,
		domain.ErrCategoryNotFound,
		domain.ErrProductNotFound,
		domain.ErrCustomerNotFound,
	} {
		if !domain.IsNotFound(err) {
			t.Fatalf("expected %v to classify as not found", err)
		}
	}

	if domain.IsNotFound(domain.ErrMobileTaken) {
		t.Fatal("conflict must not classify as not found")
	}
}

func TestIsConflict(t *testing.T) {
	if !domain.IsConflict(fmt.Errorf("signup: %w", domain.ErrMobileTaken)) {
		t.Fatal("wrapped mobile conflict must classify as conflict")
	}
	if domain.IsConflict(domain.ErrOrderNotFound) {
		t.Fatal("not found must not classify as conflict")
	}
}
