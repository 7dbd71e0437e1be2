package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/stitchfab/stitchfab/internal/config"
	"github.com/stitchfab/stitchfab/internal/domain/repository"
	pkgAuth "github.com/stitchfab/stitchfab/internal/pkg/auth"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newAuthUseCase,
	newOrderUseCase,
	newAnalyticsUseCase,
)

type authParams struct {
	fx.In

	Users    repository.UserRepository
	Hasher   pkgAuth.PasswordHasher
	Strategy pkgAuth.Strategy
	Logger   *slog.Logger
}

func newAuthUseCase(p authParams) *AuthUseCase {
	return NewAuthUseCase(p.Users, p.Hasher, p.Strategy, p.Logger)
}

type orderParams struct {
	fx.In

	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Users    repository.UserRepository
	Config   *config.Config
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Products, p.Carts, p.Users,
		p.Config.RiskAmountCap, p.Config.OriginHistoryLimit, p.Logger)
}

type analyticsParams struct {
	fx.In

	Sessions      repository.SessionRepository
	Events        repository.EventRepository
	LandingEvents repository.LandingEventRepository
	Flags         repository.TrafficFlagRepository
	Config        *config.Config
	Logger        *slog.Logger
}

func newAnalyticsUseCase(p analyticsParams) *AnalyticsUseCase {
	return NewAnalyticsUseCase(p.Sessions, p.Events, p.LandingEvents, p.Flags,
		p.Config.BurstWindow, p.Config.BurstThreshold, p.Logger)
}
