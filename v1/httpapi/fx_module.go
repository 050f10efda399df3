package httpapi

import (
	"context"
	"net"

	"go.uber.org/fx"
)

// FXModule provides the HTTP Server and runs it for the application's
// lifetime.
//
// Dependencies required by this module:
// - an httpapi.Config
// - a *sourcing.Service and a *buylist.Service
var FXModule = fx.Module("httpapi",
	fx.Provide(NewServer),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle binds the listener on start, so a taken port fails
// startup, and serves in the background until stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			l, err := net.Listen("tcp", s.cfg.Address)
			if err != nil {
				return err
			}
			go func() {
				if err := s.Serve(l); err != nil {
					s.log.Error("http server stopped", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown(ctx)
		},
	})
}
