// Package server initializes and runs the gallery server: it opens the
// database and object store, builds the services and runs the public HTTP
// API, the metrics endpoint and the gRPC health endpoint until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/guestgallery/internal/logging"
	"github.com/dmitrijs2005/guestgallery/internal/server/config"
	"github.com/dmitrijs2005/guestgallery/internal/server/metrics"
	"github.com/dmitrijs2005/guestgallery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/guestgallery/internal/server/services"
	"github.com/dmitrijs2005/guestgallery/internal/server/storage"
	"github.com/dmitrijs2005/guestgallery/internal/server/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/guestgallery/internal/server/grpc"
	hs "github.com/dmitrijs2005/guestgallery/internal/server/http"
)

const metricsNamespace = "guestgallery"

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	registry        *prometheus.Registry
	photoService    *services.PhotoService
	gateService     *services.GateService
	reactionService *services.ReactionService
	observer        metrics.Observer
	shutdownTracing tracing.ShutdownFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogFormat, os.Stdout)

	shutdownTracing, err := tracing.Setup(ctx, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	registry := metrics.NewRegistry()
	observer, err := metrics.NewPrometheusObserver(metricsNamespace, registry)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	guests := services.NewGuestService(db, rm, c)
	photos := services.NewPhotoService(db, rm, guests, store, c, logger, observer)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		registry:        registry,
		photoService:    photos,
		gateService:     services.NewGateService(c, observer),
		reactionService: services.NewReactionService(db, rm, guests, photos),
		observer:        observer,
		shutdownTracing: shutdownTracing,
	}, nil
}

func (app *App) startHTTPServer(ctx context.Context) error {
	router := hs.NewRouter(app.config, hs.Deps{
		Photos:    app.photoService,
		Gate:      app.gateService,
		Reactions: app.reactionService,
		DB:        app.db,
		Observer:  app.observer,
		Logger:    app.logger,
	})
	return hs.NewServer("http_server", app.config.HTTPAddr, router, app.logger).Run(ctx)
}

func (app *App) startMetricsServer(ctx context.Context) error {
	return hs.NewServer("metrics_server", app.config.MetricsAddr, metrics.Handler(app.registry), app.logger).Run(ctx)
}

func (app *App) startGRPCServer(ctx context.Context) error {
	return gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.db, app.config.DatabaseTimeout).Run(ctx)
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, or until one of the servers
// fails, which stops the others.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.startHTTPServer(ctx) })
	if app.config.MetricsAddr != "" {
		g.Go(func() error { return app.startMetricsServer(ctx) })
	}
	if app.config.GRPCAddr != "" {
		g.Go(func() error { return app.startGRPCServer(ctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server error", "error", err)
	}

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")

	return err
}

func (app *App) close(ctx context.Context) {
	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Error(ctx, "tracing shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
