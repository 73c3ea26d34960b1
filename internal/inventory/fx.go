package inventory

import (
	"github.com/mercatohq/mercato/internal/inventory/repository"
	"github.com/mercatohq/mercato/internal/inventory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
