package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	testhelpers "github.com/stitchfab/stitchfab/internal/test"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFacade() (*CommerceFacade, *testhelpers.UserRepositoryStub, *testhelpers.OrderRepositoryStub, *testhelpers.ProductRepositoryStub, *testhelpers.PaymentProviderStub) {
	logger := discardLogger()

	userRepo := testhelpers.NewUserRepositoryStub()
	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return 99, nil }}
	authUC := usecase.NewAuthUseCase(userRepo, testhelpers.HasherStub{}, strategy, logger)

	productRepo := testhelpers.NewProductRepositoryStub(
		&model.Product{ID: 1, Name: "Classic Tee", BasePrice: 100, Stock: 10},
	)
	orderRepo := testhelpers.NewOrderRepositoryStub(productRepo)
	orderUC := usecase.NewOrderUseCase(orderRepo, productRepo, &testhelpers.CartRepositoryStub{}, userRepo, 20000, 20, logger)

	sessions := testhelpers.NewSessionRepositoryStub()
	events := &testhelpers.EventRepositoryStub{Sessions: sessions}
	analyticsUC := usecase.NewAnalyticsUseCase(sessions, events, &testhelpers.LandingEventRepositoryStub{}, &testhelpers.TrafficFlagRepositoryStub{}, time.Hour, 20, logger)

	provider := &testhelpers.PaymentProviderStub{}

	facade := NewCommerceFacade(authUC, orderUC, analyticsUC, provider)
	return facade, userRepo, orderRepo, productRepo, provider
}

func validInput() usecase.CreateOrderInput {
	return usecase.CreateOrderInput{
		Items: []usecase.OrderItemInput{{ProductID: 1, Quantity: 2}},
		ShippingAddress: model.ShippingAddress{
			FullName: "A. Customer", Phone: "123", Address: "1 Main St",
			City: "Springfield", PostalCode: "12345", Country: "US",
		},
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	}
}

func TestCommerceFacadeAuth(t *testing.T) {
	facade, users, _, _, _ := newFacade()
	token, err := facade.Register(context.Background(), "user", "pass", "203.0.113.7")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	stored, err := users.GetByLogin(context.Background(), "user")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Login != "user" {
		t.Fatalf("unexpected stored login %q", stored.Login)
	}

	token, err = facade.Authenticate(context.Background(), "user", "pass", "203.0.113.7")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	id, err := facade.ParseToken("anything")
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if id != 99 {
		t.Fatalf("expected id 99, got %d", id)
	}
}

func TestCommerceFacadeOrders(t *testing.T) {
	facade, _, _, _, _ := newFacade()

	order, err := facade.CreateOrder(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create order returned error: %v", err)
	}
	if order.TotalAmount != 260 {
		t.Fatalf("expected total 260, got %v", order.TotalAmount)
	}

	orders, err := facade.Orders(context.Background(), 1)
	if err != nil {
		t.Fatalf("orders returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}

	fetched, err := facade.Order(context.Background(), order.ID, 1, false)
	if err != nil {
		t.Fatalf("order fetch returned error: %v", err)
	}
	if fetched.ID != order.ID {
		t.Fatalf("expected order %d, got %d", order.ID, fetched.ID)
	}

	all, revenue, err := facade.AllOrders(context.Background())
	if err != nil {
		t.Fatalf("all orders returned error: %v", err)
	}
	if len(all) != 1 || revenue != 260 {
		t.Fatalf("expected 1 order with revenue 260, got %d / %v", len(all), revenue)
	}
}

func TestCommerceFacadeStatusUpdate(t *testing.T) {
	facade, _, _, products, _ := newFacade()

	order, err := facade.CreateOrder(context.Background(), 1, validInput())
	if err != nil {
		t.Fatalf("create order returned error: %v", err)
	}

	processing := model.OrderStatusProcessing
	updated, err := facade.UpdateOrderStatus(context.Background(), order.ID, model.StatusUpdate{Status: &processing})
	if err != nil {
		t.Fatalf("status update returned error: %v", err)
	}
	if !updated.IsStockDeducted {
		t.Fatal("expected stock deduction on confirmation")
	}
	if got := products.Stock(1); got != 8 {
		t.Fatalf("expected stock 8, got %d", got)
	}
}

func TestCommerceFacadePayments(t *testing.T) {
	facade, _, _, _, provider := newFacade()

	provider.Status = &payment.Status{OrderID: 5, Status: model.PaymentStatusFailed}
	status, err := facade.CheckPayment(context.Background(), 5)
	if err != nil {
		t.Fatalf("check payment returned error: %v", err)
	}
	if status.Status != model.PaymentStatusFailed {
		t.Fatalf("expected failed status, got %s", status.Status)
	}
}

func TestCommerceFacadePaymentsDisabled(t *testing.T) {
	facade, _, _, _, _ := newFacade()
	facade.payments = nil

	if _, err := facade.CheckPayment(context.Background(), 1); err == nil {
		t.Fatal("expected error when no provider configured")
	}
}
