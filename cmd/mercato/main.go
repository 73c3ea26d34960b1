package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mercatohq/mercato/internal/catalog"
	"github.com/mercatohq/mercato/internal/clock"
	"github.com/mercatohq/mercato/internal/config"
	"github.com/mercatohq/mercato/internal/credential"
	"github.com/mercatohq/mercato/internal/inventory"
	"github.com/mercatohq/mercato/internal/migration"
	"github.com/mercatohq/mercato/internal/observability"
	"github.com/mercatohq/mercato/internal/order"
	"github.com/mercatohq/mercato/internal/order/collab"
	"github.com/mercatohq/mercato/internal/payment"
	"github.com/mercatohq/mercato/internal/ratelimit"
	"github.com/mercatohq/mercato/internal/server"
	"github.com/mercatohq/mercato/pkg/db"
	"go.uber.org/fx"
)

// The all-in-one binary hosts every service in a single process with
// the order flow bound to its collaborators in process.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		catalog.Module,
		inventory.Module,
		payment.Module,
		credential.Module,
		ratelimit.Module,
		collab.LocalModule,
		order.Module,

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
