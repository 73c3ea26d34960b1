package payment

import (
	"github.com/mercatohq/mercato/internal/payment/repository"
	"github.com/mercatohq/mercato/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
