package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/dawnhq/stickyboard/internal/boot"
	"github.com/dawnhq/stickyboard/internal/handlers"
	"github.com/dawnhq/stickyboard/internal/presence"
	"github.com/dawnhq/stickyboard/internal/server"
	"github.com/dawnhq/stickyboard/internal/version"
)

var ServerModule = fx.Module(
	"server",
	fx.Provide(
		provideServerHandler(handlers.NewPingHandler),
		provideServerHandler(handlers.NewUsersHandler),
		provideServerHandler(handlers.NewPresenceHandler),
		provideServerHandler(handlers.NewBoardsHandler),
		provideServerHandler(handlers.NewNotesHandler),
		provideServerHandler(handlers.NewSupportHandler),
		provideServerHandler(handlers.NewI18nHandler),
		provideServer,
	),
	fx.Invoke(
		startReaper,
		startServer,
	),
)

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.ServerHandlers...)
}

func startReaper(lc fx.Lifecycle, reaper *presence.Reaper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return reaper.Start()
		},
		OnStop: func(ctx context.Context) error {
			reaper.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Stickyboard %s\n", version.Info())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
