package authevents

import "go.uber.org/fx"

// Module exposes the auth lifecycle service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
