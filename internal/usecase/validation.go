package usecase

import (
	"strings"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// ValidateShippingAddress checks that every address field is present.
func ValidateShippingAddress(addr model.ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"fullName", addr.FullName},
		{"phone", addr.Phone},
		{"address", addr.Address},
		{"city", addr.City},
		{"postalCode", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return domainErrors.ValidationError("shipping address field %q is required", f.name)
		}
	}
	return nil
}

// ValidateOrderItems checks the raw item list before products are resolved.
func ValidateOrderItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return domainErrors.ValidationError("no order items provided")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return domainErrors.ValidationError("item %d: product reference is required", i)
		}
		if item.Quantity < 1 {
			return domainErrors.ValidationError("item %d: quantity must be at least 1", i)
		}
	}
	return nil
}

// ValidatePaymentMethod normalizes the requested method, defaulting to cash
// on delivery.
func ValidatePaymentMethod(method model.PaymentMethod) (model.PaymentMethod, error) {
	switch method {
	case "":
		return model.PaymentMethodCashOnDelivery, nil
	case model.PaymentMethodCashOnDelivery, model.PaymentMethodOnline:
		return method, nil
	}
	return "", domainErrors.ValidationError("unknown payment method %q", method)
}
