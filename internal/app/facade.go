package app

import (
	"context"

	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

// PaymentProvider abstracts the external payment-status collaborator.
type PaymentProvider interface {
	Fetch(ctx context.Context, orderID int64) (*payment.Status, error)
}

// CommerceFacade aggregates use cases behind a single application surface
// consumed by HTTP handlers and the background poller.
type CommerceFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	analytics *usecase.AnalyticsUseCase
	payments  PaymentProvider
}

func NewCommerceFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, analytics *usecase.AnalyticsUseCase, payments PaymentProvider) *CommerceFacade {
	return &CommerceFacade{auth: auth, orders: orders, analytics: analytics, payments: payments}
}

func (f *CommerceFacade) Register(ctx context.Context, login, password, ipAddress string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, ipAddress)
	return token, err
}

func (f *CommerceFacade) Authenticate(ctx context.Context, login, password, ipAddress string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password, ipAddress)
	return token, err
}

func (f *CommerceFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *CommerceFacade) User(ctx context.Context, id int64) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *CommerceFacade) CreateOrder(ctx context.Context, userID int64, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.Create(ctx, userID, in)
}

func (f *CommerceFacade) CreateGuestOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error) {
	return f.orders.CreateGuest(ctx, in)
}

func (f *CommerceFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListByUser(ctx, userID)
}

func (f *CommerceFacade) Order(ctx context.Context, orderID, actingUserID int64, isAdmin bool) (*model.Order, error) {
	return f.orders.Get(ctx, orderID, actingUserID, isAdmin)
}

func (f *CommerceFacade) AllOrders(ctx context.Context) ([]model.Order, float64, error) {
	return f.orders.ListAll(ctx)
}

func (f *CommerceFacade) UpdateOrderStatus(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, orderID, update.Status, update.PaymentStatus)
}

func (f *CommerceFacade) PendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.SelectPendingOnlinePayments(ctx, limit)
}

func (f *CommerceFacade) CheckPayment(ctx context.Context, orderID int64) (*payment.Status, error) {
	if f.payments == nil {
		return nil, payment.ErrNotRegistered
	}
	return f.payments.Fetch(ctx, orderID)
}

func (f *CommerceFacade) TrackPublicEvent(ctx context.Context, in usecase.TrackInput, pageURL string) error {
	return f.analytics.TrackPublicEvent(ctx, in, pageURL)
}

func (f *CommerceFacade) TrackLandingEvent(ctx context.Context, in usecase.TrackInput, landingPageID, campaign, source string) error {
	return f.analytics.TrackLandingEvent(ctx, in, landingPageID, campaign, source)
}

func (f *CommerceFacade) Dashboard(ctx context.Context, rng model.DateRange) (*model.DashboardStats, error) {
	return f.analytics.Dashboard(ctx, rng)
}

func (f *CommerceFacade) LandingDashboard(ctx context.Context, landingPageID string, rng model.DateRange) (*model.LandingStats, error) {
	return f.analytics.LandingDashboard(ctx, landingPageID, rng)
}

func (f *CommerceFacade) TrafficFlags(ctx context.Context, limit int) ([]model.TrafficFlag, error) {
	return f.analytics.TrafficFlags(ctx, limit)
}
