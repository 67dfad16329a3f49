package billing

import (
	"github.com/shopkpi/shopkpi/internal/billing/domain"
	"github.com/shopkpi/shopkpi/internal/billing/service"
	"github.com/shopkpi/shopkpi/internal/billing/stripe"
	"github.com/shopkpi/shopkpi/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(newGateway),
	fx.Provide(service.New),
)

func newGateway(cfg config.Config) domain.Gateway {
	return stripe.NewClient(cfg.Stripe.SecretKey)
}
