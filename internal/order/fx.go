package order

import (
	"github.com/mercatohq/mercato/internal/order/repository"
	"github.com/mercatohq/mercato/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
