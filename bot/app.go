package bot

import (
	"context"

	"github.com/jmoiron/sqlx"

	corebootstrap "github.com/flizix/flizixbot/core/bootstrap"
	tg "github.com/flizix/flizixbot/core/telegram"
	"github.com/flizix/flizixbot/core/telegram/dispatch"
	"github.com/flizix/flizixbot/core/telegram/session"
	"github.com/flizix/flizixbot/store"
)

// App bundles the wired services behind the Telegram runtime.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	registry *tg.Registry
	sessions session.Manager
}

// Bootstrap initializes the logger, storage and migrations, then wires the
// command tree and session manager.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := corebootstrap.Run(corebootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	handlers := NewHandlers(store.NewPostgres(res.DB), nil)
	registry, err := BuildRegistry(handlers)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	sessions := session.NewMemoryManager(registry.Defaults())
	handlers.AttachNavigation(registry, sessions)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		registry: registry,
		sessions: sessions,
	}, nil
}

// TelegramRunOptions builds the runtime wiring for the core runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes: dispatch.Routes(dispatch.Options{
			Registry: a.registry,
			Sessions: a.sessions,
		}),
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
