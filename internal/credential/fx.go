package credential

import (
	"github.com/mercatohq/mercato/internal/credential/repository"
	"github.com/mercatohq/mercato/internal/credential/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credential.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
