package di

import (
	"github.com/stitchfab/stitchfab/internal/adapter/payment"
	"github.com/stitchfab/stitchfab/internal/app"
	"github.com/stitchfab/stitchfab/internal/config"
	"github.com/stitchfab/stitchfab/internal/logger"
	"github.com/stitchfab/stitchfab/internal/pkg/auth"
	"github.com/stitchfab/stitchfab/internal/server/http/handlers"
	"github.com/stitchfab/stitchfab/internal/server/http/router"
	"github.com/stitchfab/stitchfab/internal/storage/postgres"
	"github.com/stitchfab/stitchfab/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(func(client payment.Client) app.PaymentProvider { return client }),
		fx.Provide(func(facade *app.CommerceFacade) handlers.CommerceFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
