package catalog

import (
	"github.com/mercatohq/mercato/internal/catalog/repository"
	"github.com/mercatohq/mercato/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
