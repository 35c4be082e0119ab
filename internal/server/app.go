// Package server initializes and runs the fintrack API server.
// It opens the database, applies migrations, wires repositories, services and
// the recommendation engine client, and serves the REST API until a stop
// signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fintrack/internal/cryptox"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/recommender"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/rest"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	server  *rest.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	metrics := rest.NewMetrics()
	engine := recommender.New(c.RecommenderURL, c.RecommenderTimeout, logger, metrics)

	accounts := services.NewAccountService(db, manager, cryptox.NewBcryptHasher(c.BcryptCost), logger)
	items := services.NewItemService(db, manager, logger)
	recommendations := services.NewRecommendationService(items, engine, logger)

	srv := rest.NewServer(rest.Options{
		Address:         c.HTTPAddr,
		Accounts:        accounts,
		Items:           items,
		Recommendations: recommendations,
		Metrics:         metrics,
		Logger:          logger,
		CORSOrigins:     c.CORSOrigins,
		AuthRatePerMin:  c.AuthRatePerMin,
		AuthRateBurst:   c.AuthRateBurst,
		ShutdownTimeout: c.ShutdownTimeout,
		HealthChecks: []rest.HealthCheck{
			{Name: "database", Critical: true, Check: db.PingContext},
			{Name: "recommender", Check: engine.Ping},
		},
	})

	return &App{config: c, logger: logger, db: db, manager: manager, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run applies migrations and serves until ctx is cancelled or a stop signal
// is received. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
