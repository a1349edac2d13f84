package bus

import "go.uber.org/fx"

// Module provides the in-process transport.
func Module() fx.Option {
	return fx.Module("bus",
		fx.Provide(NewInProcess),
	)
}
