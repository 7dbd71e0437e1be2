package dto

import (
	"time"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// CustomDesignPayload carries an optional print placement for one item.
type CustomDesignPayload struct {
	ImageURL  string  `json:"imageUrl"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
}

// OrderItemRequest references a catalog product with purchase options.
type OrderItemRequest struct {
	ProductID    int64                `json:"productId"`
	Quantity     int                  `json:"quantity"`
	Size         string               `json:"size"`
	Color        string               `json:"color"`
	Material     string               `json:"material"`
	CustomDesign *CustomDesignPayload `json:"customDesign,omitempty"`
}

// ShippingAddressPayload is the destination block of an order payload.
type ShippingAddressPayload struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CreateOrderRequest describes checkout payload for both user and guest paths.
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items"`
	ShippingAddress ShippingAddressPayload `json:"shippingAddress"`
	DeliveryCharge  *float64               `json:"deliveryCharge,omitempty"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// UpdateOrderStatusRequest carries optional target statuses.
type UpdateOrderStatusRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}

// OrderItemResponse is the immutable item snapshot as stored.
type OrderItemResponse struct {
	ProductID    int64                `json:"productId"`
	Name         string               `json:"name"`
	Quantity     int                  `json:"quantity"`
	UnitPrice    float64              `json:"unitPrice"`
	Size         string               `json:"size,omitempty"`
	Color        string               `json:"color,omitempty"`
	Material     string               `json:"material,omitempty"`
	CustomDesign *CustomDesignPayload `json:"customDesign,omitempty"`
}

// OrderResponse describes one order in API responses.
type OrderResponse struct {
	ID              int64                  `json:"id"`
	UserID          *int64                 `json:"userId,omitempty"`
	Items           []OrderItemResponse    `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	DeliveryCharge  float64                `json:"deliveryCharge"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingAddress ShippingAddressPayload `json:"shippingAddress"`
	Status          string                 `json:"status"`
	PaymentStatus   string                 `json:"paymentStatus"`
	IsStockDeducted bool                   `json:"isStockDeducted"`
	FraudScore      float64                `json:"fraudScore"`
	FraudReason     string                 `json:"fraudReason"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// OrdersSummaryResponse is the admin view of all orders plus revenue.
type OrdersSummaryResponse struct {
	Orders       []OrderResponse `json:"orders"`
	TotalRevenue float64         `json:"totalRevenue"`
}

// ToOrderResponse maps a domain order onto its API shape.
func ToOrderResponse(order model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp := OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Size:      item.Size,
			Color:     item.Color,
			Material:  item.Material,
		}
		if item.CustomDesign != nil {
			resp.CustomDesign = &CustomDesignPayload{
				ImageURL:  item.CustomDesign.ImageURL,
				PositionX: item.CustomDesign.PositionX,
				PositionY: item.CustomDesign.PositionY,
			}
		}
		items = append(items, resp)
	}

	return OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		DeliveryCharge: order.DeliveryCharge,
		PaymentMethod:  string(order.PaymentMethod),
		ShippingAddress: ShippingAddressPayload{
			FullName:   order.ShippingAddress.FullName,
			Phone:      order.ShippingAddress.Phone,
			Address:    order.ShippingAddress.Address,
			City:       order.ShippingAddress.City,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		IsStockDeducted: order.IsStockDeducted,
		FraudScore:      order.FraudScore,
		FraudReason:     order.FraudReason,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
