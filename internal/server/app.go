// Package server wires the stargram server together: configuration,
// storage, services and the HTTP transport, and runs it until a shutdown
// signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/stargram/internal/logging"
	"github.com/dmitrijs2005/stargram/internal/server/blobstore"
	"github.com/dmitrijs2005/stargram/internal/server/config"
	"github.com/dmitrijs2005/stargram/internal/server/httpapi"
	"github.com/dmitrijs2005/stargram/internal/server/metrics"
	"github.com/dmitrijs2005/stargram/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stargram/internal/server/services"
)

var (
	openDB               = repomanager.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newS3Store           = func(ctx context.Context, c *config.Config) (blobstore.Store, error) {
		return blobstore.NewS3Store(ctx, c)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp opens the database, applies migrations and builds the HTTP server.
// The database is closed again if any later step fails.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN, repomanager.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var blobs blobstore.Store
	if c.BlobBackend == config.BlobBackendS3 {
		s, err := newS3Store(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		blobs = s
	}

	sessions := services.NewSessionService(db, rm, c, logger)
	svc := httpapi.Services{
		Sessions: sessions,
		Users:    services.NewUserService(db, rm, sessions, logger),
		Feeds:    services.NewFeedService(db, rm, blobs, c, logger),
		Comments: services.NewCommentService(db, rm, logger),
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c, logger, metrics.New(), svc),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "blob_backend", app.config.BlobBackend)

	app.initSignalHandler(ctx, cancelFunc)

	err := app.server.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "HTTP server error", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
