package checkout

import "go.uber.org/fx"

var Module = fx.Module("checkout.module",
	fx.Provide(NewCustomerClient, NewService, NewWebhookHandler),
	fx.Invoke(RegisterRoutes),
)
