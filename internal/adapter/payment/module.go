package payment

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/stitchfab/stitchfab/internal/config"
)

// Module provides the payment-status client to the fx container. When no
// provider address is configured the client is nil and polling stays off.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	if p.Config.PaymentProviderAddress == "" {
		p.Logger.Info("payment provider address empty, status polling disabled")
		return nil, nil
	}
	return NewHTTPClient(p.Config.PaymentProviderAddress, p.Logger)
}
