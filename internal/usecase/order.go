package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/domain/repository"
	"github.com/stitchfab/stitchfab/internal/metrics"
	"github.com/stitchfab/stitchfab/internal/risk"
)

// OrderItemInput is one requested cart line before product resolution.
type OrderItemInput struct {
	ProductID    int64
	Quantity     int
	Size         string
	Color        string
	Material     string
	CustomDesign *model.CustomDesign
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress model.ShippingAddress
	DeliveryCharge  *float64
	PaymentMethod   model.PaymentMethod
	IPAddress       string
	UserAgent       string
}

// OrderUseCase owns the order lifecycle: creation with risk scoring and the
// operator-driven status machine with deferred stock deduction.
type OrderUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	users    repository.UserRepository

	amountCap          float64
	originHistoryLimit int
	logger             *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	users repository.UserRepository,
	amountCap float64,
	originHistoryLimit int,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:             orders,
		products:           products,
		carts:              carts,
		users:              users,
		amountCap:          amountCap,
		originHistoryLimit: originHistoryLimit,
		logger:             logger,
	}
}

// Create places an order for an authenticated user and clears their cart.
func (u *OrderUseCase) Create(ctx context.Context, userID int64, in CreateOrderInput) (*model.Order, error) {
	order, err := u.create(ctx, &userID, in)
	if err != nil {
		return nil, err
	}

	// Cart cleanup is best effort: the order already exists.
	if err := u.carts.Clear(ctx, userID); err != nil {
		u.logger.Warn("cart clear failed after order creation",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}

	metrics.OrdersCreated.WithLabelValues("user").Inc()
	return order, nil
}

// CreateGuest places an order with no account attached.
func (u *OrderUseCase) CreateGuest(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	order, err := u.create(ctx, nil, in)
	if err != nil {
		return nil, err
	}
	metrics.OrdersCreated.WithLabelValues("guest").Inc()
	return order, nil
}

func (u *OrderUseCase) create(ctx context.Context, userID *int64, in CreateOrderInput) (*model.Order, error) {
	if err := ValidateOrderItems(in.Items); err != nil {
		return nil, err
	}
	if err := ValidateShippingAddress(in.ShippingAddress); err != nil {
		return nil, err
	}
	method, err := ValidatePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	deliveryCharge := model.DefaultDeliveryCharge
	if in.DeliveryCharge != nil {
		if *in.DeliveryCharge < 0 {
			return nil, domainErrors.ValidationError("delivery charge must not be negative")
		}
		deliveryCharge = *in.DeliveryCharge
	}

	// Point-in-time availability check and snapshotting. This does not
	// reserve inventory; the enforcement point is the status transition.
	items := make([]model.OrderItem, 0, len(in.Items))
	var itemsTotal float64
	for _, reqItem := range in.Items {
		product, err := u.products.GetByID(ctx, reqItem.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < reqItem.Quantity {
			return nil, &domainErrors.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Required:    reqItem.Quantity,
			}
		}

		items = append(items, model.OrderItem{
			ProductID:    product.ID,
			Name:         product.Name,
			Quantity:     reqItem.Quantity,
			UnitPrice:    product.BasePrice,
			Size:         reqItem.Size,
			Color:        reqItem.Color,
			Material:     reqItem.Material,
			CustomDesign: reqItem.CustomDesign,
		})
		itemsTotal += float64(reqItem.Quantity) * product.BasePrice
	}

	totalAmount := itemsTotal + deliveryCharge
	assessment := u.assessRisk(ctx, userID, totalAmount, in.IPAddress)

	order := &model.Order{
		UserID:          userID,
		Items:           items,
		TotalAmount:     totalAmount,
		DeliveryCharge:  deliveryCharge,
		PaymentMethod:   method,
		ShippingAddress: in.ShippingAddress,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		FraudScore:      assessment.Score,
		FraudReason:     assessment.Reason,
		IPAddress:       in.IPAddress,
		UserAgent:       in.UserAgent,
	}

	stored, err := u.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	metrics.RiskScores.Observe(assessment.Score)
	return stored, nil
}

// assessRisk gathers account history and scores the transaction. Scoring
// never blocks order creation: signal-collection failures degrade to a zero
// score.
func (u *OrderUseCase) assessRisk(ctx context.Context, userID *int64, totalAmount float64, ipAddress string) risk.Assessment {
	input := risk.SignalInput{
		TotalAmount: totalAmount,
		OriginHash:  hashOrigin(ipAddress),
		AmountCap:   u.amountCap,
	}

	if userID != nil {
		origins, err := u.users.LoginOrigins(ctx, *userID, u.originHistoryLimit)
		if err != nil {
			u.logger.Warn("risk signals unavailable, using safe default",
				slog.Int64("user_id", *userID), slog.String("error", err.Error()))
			return risk.Assessment{Score: 0, Reason: risk.ReasonLow}
		}
		count, err := u.orders.CountByUser(ctx, *userID)
		if err != nil {
			u.logger.Warn("risk signals unavailable, using safe default",
				slog.Int64("user_id", *userID), slog.String("error", err.Error()))
			return risk.Assessment{Score: 0, Reason: risk.ReasonLow}
		}
		input.KnownOrigins = origins
		input.PreviousOrders = count
		input.HasHistory = true
	}

	return risk.Assess(input)
}

// ListByUser returns the user's orders, newest first.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Get fetches one order, enforcing that non-operators only read their own.
func (u *OrderUseCase) Get(ctx context.Context, orderID, actingUserID int64, isAdmin bool) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && (order.UserID == nil || *order.UserID != actingUserID) {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// ListAll returns every order plus the revenue total, operator-facing.
func (u *OrderUseCase) ListAll(ctx context.Context) ([]model.Order, float64, error) {
	orders, err := u.orders.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	var revenue float64
	for _, o := range orders {
		revenue += o.TotalAmount
	}
	return orders, revenue, nil
}

// UpdateStatus applies an operator transition. The storage layer runs the
// whole check-then-deduct sequence atomically; here we only validate the
// requested values.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status *model.OrderStatus, paymentStatus *model.PaymentStatus) (*model.Order, error) {
	if status == nil && paymentStatus == nil {
		return nil, domainErrors.ValidationError("status or paymentStatus is required")
	}
	if status != nil && !model.ValidStatus(*status) {
		return nil, domainErrors.ValidationError("unknown order status %q", *status)
	}
	if paymentStatus != nil && !model.ValidPaymentStatus(*paymentStatus) {
		return nil, domainErrors.ValidationError("unknown payment status %q", *paymentStatus)
	}

	order, err := u.orders.ApplyStatusUpdate(ctx, orderID, model.StatusUpdate{
		Status:        status,
		PaymentStatus: paymentStatus,
	})
	if err != nil {
		if _, ok := domainErrors.IsInsufficientStock(err); ok {
			metrics.StockDeductionFailures.Inc()
		}
		return nil, err
	}

	if status != nil {
		metrics.StatusTransitions.WithLabelValues(string(*status)).Inc()
	}
	return order, nil
}

// SelectPendingOnlinePayments exposes the payment poller's batch query.
func (u *OrderUseCase) SelectPendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectPendingOnlinePayments(ctx, limit)
}
