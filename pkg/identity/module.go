package identity

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(ProvideTokenIssuer),
	fx.Provide(NewHandlers),
)
