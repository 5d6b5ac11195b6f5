package premium

import "go.uber.org/fx"

// Module exposes the premium service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
