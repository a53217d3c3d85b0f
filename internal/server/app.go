// Package server wires the identity service together: it opens the database,
// applies migrations, seeds the admin account and serves the gRPC health and
// metrics endpoints until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophidentity/internal/logging"
	"github.com/dmitrijs2005/gophidentity/internal/server/bootstrap"
	"github.com/dmitrijs2005/gophidentity/internal/server/config"
	"github.com/dmitrijs2005/gophidentity/internal/server/hasher"
	"github.com/dmitrijs2005/gophidentity/internal/server/metrics"
	"github.com/dmitrijs2005/gophidentity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophidentity/internal/server/services"

	gs "github.com/dmitrijs2005/gophidentity/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	users       *services.UserManager
	roles       *services.RoleManager
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager()), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	m := metrics.New()
	h := hasher.New(hasher.Config{Iterations: c.PasswordHashIterations})

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		metrics:     m,
		users:       services.NewUserManager(db, rm, h, c, logger, m),
		roles:       services.NewRoleManager(db, rm, logger),
	}
}

// prepare brings the schema up to date and seeds the admin account.
func (app *App) prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}
	if err := app.repomanager.Roles(app.db).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure permissions schema: %w", err)
	}
	seeder := bootstrap.NewSeeder(app.users, app.roles, app.config, app.logger)
	if err := seeder.SeedAdmin(ctx); err != nil {
		return err
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := app.metrics.Serve(ctx, app.config.MetricsAddr); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	if err := app.prepare(ctx); err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		return err
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.logger.Info(ctx, "App stopped")
	return nil
}
