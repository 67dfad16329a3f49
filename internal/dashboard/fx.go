package dashboard

import (
	"github.com/shopkpi/shopkpi/internal/cache"
	"github.com/shopkpi/shopkpi/internal/dashboard/domain"
	"github.com/shopkpi/shopkpi/internal/dashboard/repository"
	"github.com/shopkpi/shopkpi/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard",
	fx.Provide(repository.New),
	fx.Provide(newCache),
	fx.Provide(service.New),
)

func newCache() cache.Cache[string, domain.Data] {
	return cache.NewTTLCache[string, domain.Data]()
}
