package model

import "time"

// OrderStatus describes fulfilment lifecycle. Transitions are forward-only;
// cancelled is a terminal escape reachable from any non-terminal state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus is an axis independent of fulfilment status.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentMethod enumerates supported checkout methods.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentMethodOnline         PaymentMethod = "Online Payment"
)

// DefaultDeliveryCharge applies when the caller does not specify one.
const DefaultDeliveryCharge = 60.0

var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one fulfilment status
// to another. Same-status updates are allowed so operators can adjust payment
// status without touching fulfilment.
func CanTransition(from, to OrderStatus) bool {
	if from == OrderStatusCancelled {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	return okFrom && okTo && toRank >= fromRank
}

// RequiresStockDeduction reports whether entering status confirms the order
// and therefore requires inventory to be deducted.
func (s OrderStatus) RequiresStockDeduction() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// CustomDesign holds an optional print placement attached to an order item.
type CustomDesign struct {
	ImageURL  string
	PositionX float64
	PositionY float64
}

// OrderItem is an immutable snapshot of a purchased product. Name and price
// are copied at creation time and never follow later catalog edits.
type OrderItem struct {
	ProductID    int64
	Name         string
	Quantity     int
	UnitPrice    float64
	Size         string
	Color        string
	Material     string
	CustomDesign *CustomDesign
}

// ShippingAddress is the destination captured with the order. All fields are
// required.
type ShippingAddress struct {
	FullName   string
	Phone      string
	Address    string
	City       string
	PostalCode string
	Country    string
}

// Order is the durable record of a purchase. Orders are never deleted.
type Order struct {
	ID              int64
	UserID          *int64 // nil for guest orders
	Items           []OrderItem
	TotalAmount     float64
	DeliveryCharge  float64
	PaymentMethod   PaymentMethod
	ShippingAddress ShippingAddress
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	IsStockDeducted bool
	FraudScore      float64
	FraudReason     string
	IPAddress       string
	UserAgent       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StatusUpdate carries the optional target values of a status transition.
type StatusUpdate struct {
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
}
