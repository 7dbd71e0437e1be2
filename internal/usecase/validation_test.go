package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
)

func TestValidateShippingAddress(t *testing.T) {
	addr := model.ShippingAddress{
		FullName: "A. Customer", Phone: "123", Address: "1 Main St",
		City: "Springfield", PostalCode: "12345", Country: "US",
	}
	if err := ValidateShippingAddress(addr); err != nil {
		t.Fatalf("complete address rejected: %v", err)
	}

	missing := addr
	missing.PostalCode = " "
	err := ValidateShippingAddress(missing)
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateOrderItems(t *testing.T) {
	if err := ValidateOrderItems(nil); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for empty list, got %v", err)
	}
	if err := ValidateOrderItems([]OrderItemInput{{ProductID: 0, Quantity: 1}}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for missing product, got %v", err)
	}
	if err := ValidateOrderItems([]OrderItemInput{{ProductID: 1, Quantity: 0}}); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if err := ValidateOrderItems([]OrderItemInput{{ProductID: 1, Quantity: 1}}); err != nil {
		t.Fatalf("valid items rejected: %v", err)
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	method, err := ValidatePaymentMethod("")
	if err != nil || method != model.PaymentMethodCashOnDelivery {
		t.Fatalf("expected cash on delivery default, got %q %v", method, err)
	}

	method, err = ValidatePaymentMethod(model.PaymentMethodOnline)
	if err != nil || method != model.PaymentMethodOnline {
		t.Fatalf("expected online accepted, got %q %v", method, err)
	}

	if _, err := ValidatePaymentMethod("Barter"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
