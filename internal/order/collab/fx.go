package collab

import (
	"github.com/mercatohq/mercato/internal/order/domain/port"
	"go.uber.org/fx"
)

// HTTPModule binds the ports to remote collaborators for the split
// deployment.
var HTTPModule = fx.Module("order.collab.http",
	fx.Provide(
		fx.Annotate(NewHTTPInventoryClient, fx.As(new(port.InventoryClient))),
		fx.Annotate(NewHTTPPaymentClient, fx.As(new(port.PaymentClient))),
		fx.Annotate(NewHTTPProductClient, fx.As(new(port.ProductClient))),
		fx.Annotate(NewHTTPCredentialClient, fx.As(new(port.CredentialClient))),
	),
)

// LocalModule binds the ports in process for the all-in-one binary.
var LocalModule = fx.Module("order.collab.local",
	fx.Provide(
		fx.Annotate(NewLocalInventoryClient, fx.As(new(port.InventoryClient))),
		fx.Annotate(NewLocalPaymentClient, fx.As(new(port.PaymentClient))),
		fx.Annotate(NewLocalProductClient, fx.As(new(port.ProductClient))),
		fx.Annotate(NewLocalCredentialClient, fx.As(new(port.CredentialClient))),
	),
)
