package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/catalog"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/config"
	"github.com/mercatohq/mercato/internal/migration"
	"github.com/mercatohq/mercato/internal/observability"
	"github.com/mercatohq/mercato/internal/server"
	"github.com/mercatohq/mercato/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		catalog.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		panic(err)
	}
	return node
}
