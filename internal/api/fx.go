package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(
		NewServer,
	),
	fx.Invoke(func(lc fx.Lifecycle, s *Server) {
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						slog.Error("api server stopped", "error", err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return s.Shutdown(ctx)
			},
		})
	}),
)
