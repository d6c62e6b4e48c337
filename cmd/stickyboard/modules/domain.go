package modules

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/dawnhq/stickyboard/internal/auth"
	"github.com/dawnhq/stickyboard/internal/boards"
	"github.com/dawnhq/stickyboard/internal/boot"
	"github.com/dawnhq/stickyboard/internal/config"
	"github.com/dawnhq/stickyboard/internal/i18n"
	"github.com/dawnhq/stickyboard/internal/notes"
	"github.com/dawnhq/stickyboard/internal/presence"
	"github.com/dawnhq/stickyboard/internal/support"
	"github.com/dawnhq/stickyboard/internal/users"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		provideVerifier,
		provideUsersService,
		provideBoardsService,
		provideNotesService,
		providePresenceService,
		providePresenceReaper,
		provideSupportService,
		provideI18nCatalog,
	),
)

func provideVerifier(rc *boot.RuntimeConfig) *auth.Verifier {
	return auth.NewVerifier(rc.JWTSecret, rc.TokenIssuer, rc.TokenAudience)
}

func provideUsersService(log *slog.Logger, verifier *auth.Verifier, conn *pgxpool.Pool) *users.Service {
	return users.NewService(log, verifier, users.NewPGStore(conn))
}

func provideBoardsService(log *slog.Logger, usersService *users.Service, conn *pgxpool.Pool) *boards.Service {
	return boards.NewService(log, usersService, boards.NewPGStore(conn))
}

func provideNotesService(log *slog.Logger, usersService *users.Service, boardsService *boards.Service, conn *pgxpool.Pool) *notes.Service {
	return notes.NewService(log, usersService, boardsService, notes.NewPGStore(conn))
}

func providePresenceService(log *slog.Logger, usersService *users.Service, conn *pgxpool.Pool, rc *boot.RuntimeConfig) *presence.Service {
	store := presence.NewPGStore(conn)
	return presence.NewService(log, usersService, store, users.NewPGStore(conn), rc.PresenceWindow)
}

func providePresenceReaper(log *slog.Logger, conn *pgxpool.Pool, rc *boot.RuntimeConfig) *presence.Reaper {
	return presence.NewReaper(log, presence.NewPGStore(conn), rc.PresenceWindow, rc.ReapEvery)
}

func provideSupportService(log *slog.Logger, usersService *users.Service, conn *pgxpool.Pool) *support.Service {
	return support.NewService(log, usersService, support.NewPGStore(conn))
}

func provideI18nCatalog(cfg config.Config) (*i18n.Catalog, error) {
	return i18n.Load(cfg.I18n.FallbackLanguage)
}
