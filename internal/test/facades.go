package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string, string) (string, error)
	ParseFn        func(string) (int64, error)
	UserFn         func(context.Context, int64) (*model.User, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password, ipAddress string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, ipAddress)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password, ipAddress string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password, ipAddress)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// User resolves accounts for role checks.
func (s AuthFacadeStub) User(ctx context.Context, id int64) (*model.User, error) {
	if s.UserFn != nil {
		return s.UserFn(ctx, id)
	}
	return &model.User{ID: id, Login: "user", Role: model.RoleCustomer}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn       func(context.Context, int64, usecase.CreateOrderInput) (*model.Order, error)
	CreateGuestFn  func(context.Context, usecase.CreateOrderInput) (*model.Order, error)
	OrdersFn       func(context.Context, int64) ([]model.Order, error)
	OrderFn        func(context.Context, int64, int64, bool) (*model.Order, error)
	AllOrdersFn    func(context.Context) ([]model.Order, float64, error)
	UpdateStatusFn func(context.Context, int64, model.StatusUpdate) (*model.Order, error)
}

// CreateOrder delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, in usecase.CreateOrderInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, in)
	}
	return &model.Order{ID: 1, UserID: &userID, Status: model.OrderStatusPending}, nil
}

// CreateGuestOrder delegates to provided function or returns a default order.
func (s OrderFacadeStub) CreateGuestOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error) {
	if s.CreateGuestFn != nil {
		return s.CreateGuestFn(ctx, in)
	}
	return &model.Order{ID: 1, Status: model.OrderStatusPending}, nil
}

// Orders returns predefined orders for given user.
func (s OrderFacadeStub) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID)
	}
	return []model.Order{{ID: 1, UserID: &userID}}, nil
}

// Order returns one order with the ownership check delegated to the stub.
func (s OrderFacadeStub) Order(ctx context.Context, orderID, actingUserID int64, isAdmin bool) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, actingUserID, isAdmin)
	}
	return &model.Order{ID: orderID, UserID: &actingUserID}, nil
}

// AllOrders returns every order plus revenue.
func (s OrderFacadeStub) AllOrders(ctx context.Context) ([]model.Order, float64, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx)
	}
	return []model.Order{{ID: 1}}, 0, nil
}

// UpdateOrderStatus delegates to provided function.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, update)
	}
	order := &model.Order{ID: orderID, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}
	if update.Status != nil {
		order.Status = *update.Status
	}
	if update.PaymentStatus != nil {
		order.PaymentStatus = *update.PaymentStatus
	}
	return order, nil
}

// AnalyticsFacadeStub simulates tracking and reporting operations.
type AnalyticsFacadeStub struct {
	TrackFn        func(context.Context, usecase.TrackInput, string) error
	TrackLandingFn func(context.Context, usecase.TrackInput, string, string, string) error
	DashboardFn    func(context.Context, model.DateRange) (*model.DashboardStats, error)
	LandingFn      func(context.Context, string, model.DateRange) (*model.LandingStats, error)
	FlagsFn        func(context.Context, int) ([]model.TrafficFlag, error)
}

// TrackPublicEvent delegates or succeeds silently.
func (s AnalyticsFacadeStub) TrackPublicEvent(ctx context.Context, in usecase.TrackInput, pageURL string) error {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, in, pageURL)
	}
	return nil
}

// TrackLandingEvent delegates or succeeds silently.
func (s AnalyticsFacadeStub) TrackLandingEvent(ctx context.Context, in usecase.TrackInput, landingPageID, campaign, source string) error {
	if s.TrackLandingFn != nil {
		return s.TrackLandingFn(ctx, in, landingPageID, campaign, source)
	}
	return nil
}

// Dashboard returns configured or empty stats.
func (s AnalyticsFacadeStub) Dashboard(ctx context.Context, rng model.DateRange) (*model.DashboardStats, error) {
	if s.DashboardFn != nil {
		return s.DashboardFn(ctx, rng)
	}
	return &model.DashboardStats{}, nil
}

// LandingDashboard returns configured or empty stats.
func (s AnalyticsFacadeStub) LandingDashboard(ctx context.Context, landingPageID string, rng model.DateRange) (*model.LandingStats, error) {
	if s.LandingFn != nil {
		return s.LandingFn(ctx, landingPageID, rng)
	}
	return &model.LandingStats{Sources: map[string]int64{}}, nil
}

// TrafficFlags returns configured or no flags.
func (s AnalyticsFacadeStub) TrafficFlags(ctx context.Context, limit int) ([]model.TrafficFlag, error) {
	if s.FlagsFn != nil {
		return s.FlagsFn(ctx, limit)
	}
	return nil, nil
}

// CommerceFacadeStub aggregates facade dependencies for HTTP layer tests.
type CommerceFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	AnalyticsFacadeStub
}

// PaymentUpdateCall captures one recorded status update.
type PaymentUpdateCall struct {
	OrderID int64
	Update  model.StatusUpdate
}

// WorkerFacadeStub mimics poller interactions with the commerce facade.
type WorkerFacadeStub struct {
	Orders          [][]model.Order
	OrdersFn        func(context.Context, int) ([]model.Order, error)
	CheckFn         func(context.Context, int64) (*payment.Status, error)
	UpdateFn        func(context.Context, int64, model.StatusUpdate) (*model.Order, error)
	Updates         []PaymentUpdateCall
	mu              sync.Mutex
	ordersCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingOnlinePayments returns batches from configured queue.
func (s *WorkerFacadeStub) PendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.ordersCallCount, 1)
	if int(call) <= len(s.Orders) {
		return s.Orders[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// CheckPayment returns configured payment status.
func (s *WorkerFacadeStub) CheckPayment(ctx context.Context, orderID int64) (*payment.Status, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, orderID)
	}
	return &payment.Status{OrderID: orderID, Status: model.PaymentStatusPaid}, nil
}

// UpdateOrderStatus records update requests.
func (s *WorkerFacadeStub) UpdateOrderStatus(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, update)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, PaymentUpdateCall{OrderID: orderID, Update: update})
	return &model.Order{ID: orderID}, nil
}

// PaymentProviderStub fetches payment information for tests.
type PaymentProviderStub struct {
	FetchFn func(context.Context, int64) (*payment.Status, error)
	Status  *payment.Status
	Err     error
}

// Fetch returns configured response or a default paid status.
func (s PaymentProviderStub) Fetch(ctx context.Context, orderID int64) (*payment.Status, error) {
	if s.FetchFn != nil {
		return s.FetchFn(ctx, orderID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Status != nil {
		return s.Status, nil
	}
	return &payment.Status{OrderID: orderID, Status: model.PaymentStatusPaid}, nil
}
