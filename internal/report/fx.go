package report

import (
	"github.com/shopkpi/shopkpi/internal/report/repository"
	"github.com/shopkpi/shopkpi/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
