package auth

import (
	"github.com/shopkpi/shopkpi/internal/auth/repository"
	"github.com/shopkpi/shopkpi/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
