package billing

import "go.uber.org/fx"

// Module exposes the billing store service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
