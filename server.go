package accounts

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App wires config, persistence, tokens and HTTP routes together.
type App struct {
	cfg    Config
	db     *bun.DB
	repo   RepositoryManager
	tokens TokenIssuer
	codec  PasswordCodec
	router *fiber.App
	logger Logger

	sweeperCancel context.CancelFunc
}

// AppOption mutates the app during construction.
type AppOption func(*App)

// WithAppLogger sets the logger used across the app's components.
func WithAppLogger(logger Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDB injects an existing database handle, used by tests.
func WithDB(db *bun.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// NewApp assembles the service. The database schema is applied before
// any route is registered.
func NewApp(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}

	if app.db == nil {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
		if err != nil {
			return nil, err
		}
		app.db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if err := RunMigrations(ctx, app.db); err != nil {
		return nil, err
	}

	codec, err := NewPasswordCodec(cfg.GetPasswordScheme())
	if err != nil {
		return nil, err
	}
	app.codec = codec

	app.repo = NewRepositoryManager(app.db)
	app.repo.MustValidate()

	app.tokens = NewTokenService(
		[]byte(cfg.GetAccessSigningKey()),
		[]byte(cfg.GetRefreshSigningKey()),
		cfg.GetAccessTokenExpiration(),
		cfg.GetRefreshTokenExpiration(),
		cfg.GetIssuer(),
		app.repo.Sessions(),
		app.logger,
	)

	app.router = fiber.New(fiber.Config{
		AppName: "go-accounts",
	})

	app.router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetAllowedOrigins(),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.registerRoutes()

	return app, nil
}

func (a *App) registerRoutes() {
	a.router.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Account service is running")
	})

	a.router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authController := NewAuthController(a.repo, a.tokens, a.codec).WithLogger(a.logger)
	authController.ContextKey = a.cfg.GetContextKey()
	authController.PhoneRegion = a.cfg.GetPhoneRegion()
	authController.UseHashid = a.cfg.GetDeterministicIDs()
	RegisterAuthRoutes(a.router, authController)

	usersController := NewUsersController(a.repo, a.tokens, a.codec).WithLogger(a.logger)
	RegisterUserRoutes(a.router, usersController)
}

// Router exposes the fiber app, used by tests and the entry point.
func (a *App) Router() *fiber.App {
	return a.router
}

// Repo exposes the repository manager.
func (a *App) Repo() RepositoryManager {
	return a.repo
}

// Tokens exposes the token issuer.
func (a *App) Tokens() TokenIssuer {
	return a.tokens
}

// DB exposes the database handle.
func (a *App) DB() *bun.DB {
	return a.db
}

// StartSessionSweeper evicts expired session rows on the given interval
// until Shutdown is called.
func (a *App) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, cancel := context.WithCancel(ctx)
	a.sweeperCancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted, err := a.repo.Sessions().DeleteExpired(ctx)
				if err != nil {
					a.logger.Error("session sweeper failed", "error", err)
					continue
				}
				if evicted > 0 {
					a.logger.Info("session sweeper evicted rows", "count", evicted)
				}
			}
		}
	}()
}

// Listen serves HTTP on the configured address, blocking until the
// server stops.
func (a *App) Listen() error {
	return a.router.Listen(a.cfg.GetListenAddr())
}

// Shutdown stops the sweeper and drains the HTTP server.
func (a *App) Shutdown() error {
	if a.sweeperCancel != nil {
		a.sweeperCancel()
	}

	if err := a.router.Shutdown(); err != nil {
		return err
	}

	return a.db.Close()
}
