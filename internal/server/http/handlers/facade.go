package handlers

import (
	"context"

	"github.com/stitchfab/stitchfab/internal/domain/model"
	"github.com/stitchfab/stitchfab/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password, ipAddress string) (string, error)
	Authenticate(ctx context.Context, login, password, ipAddress string) (string, error)
	ParseToken(token string) (int64, error)
	User(ctx context.Context, id int64) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, in usecase.CreateOrderInput) (*model.Order, error)
	CreateGuestOrder(ctx context.Context, in usecase.CreateOrderInput) (*model.Order, error)
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, orderID, actingUserID int64, isAdmin bool) (*model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, float64, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error)
}

// AnalyticsFacade provides traffic tracking and reporting operations.
type AnalyticsFacade interface {
	TrackPublicEvent(ctx context.Context, in usecase.TrackInput, pageURL string) error
	TrackLandingEvent(ctx context.Context, in usecase.TrackInput, landingPageID, campaign, source string) error
	Dashboard(ctx context.Context, rng model.DateRange) (*model.DashboardStats, error)
	LandingDashboard(ctx context.Context, landingPageID string, rng model.DateRange) (*model.LandingStats, error)
	TrafficFlags(ctx context.Context, limit int) ([]model.TrafficFlag, error)
}

// CommerceFacade aggregates the full set of operations used across handlers.
type CommerceFacade interface {
	AuthFacade
	OrderFacade
	AnalyticsFacade
}
