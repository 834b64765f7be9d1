// Package server wires configuration, storage and transports into a running
// GophMarket process and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/logging"
	"github.com/dmitrijs2005/gophmarket/internal/server/auth"
	"github.com/dmitrijs2005/gophmarket/internal/server/config"
	"github.com/dmitrijs2005/gophmarket/internal/server/gate"
	"github.com/dmitrijs2005/gophmarket/internal/server/httpapi"
	"github.com/dmitrijs2005/gophmarket/internal/server/mailer"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/blacklist"
	"github.com/dmitrijs2005/gophmarket/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophmarket/internal/server/services"
	"github.com/dmitrijs2005/gophmarket/internal/server/storage"
	"github.com/dmitrijs2005/gophmarket/internal/server/sweeper"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/gophmarket/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	sweeper *sweeper.Sweeper
	http    *http.Server
	grpc    *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	repos, err := app.initStorage(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.AccessTokenTTL)
	if err != nil {
		app.close()
		return nil, err
	}

	var presigner storage.Presigner
	p, err := storage.NewS3Presigner(ctx, storage.Config{
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
	})
	if err != nil {
		logger.Warn(ctx, "listing images disabled", "error", err)
	} else {
		presigner = p
	}

	mail := mailer.NewLogMailer(logger, c.PublicBaseURL)
	users := services.NewUserService(repos, codec, auth.NewHasher(c.BcryptCost), mail, c, logger)
	listings := services.NewListingService(repos, presigner, logger)
	favorites := services.NewFavoriteService(repos, listings, logger)
	g := gate.New(codec, repos.Blacklist(repos.Conn()))

	app.http = &http.Server{
		Addr:              c.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(users, listings, favorites, g, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, g)
	app.sweeper = sweeper.New(repos, c.SweepInterval, logger)

	return app, nil
}

// initStorage opens the database and the optional Redis registry, then runs
// migrations.
func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	var opts []repomanager.Option

	if app.config.Storage == string(repomanager.StoragePostgres) {
		db, err := sql.Open("pgx", app.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("db ping error: %w", err)
		}
	}

	if app.config.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		opts = append(opts, repomanager.WithBlacklist(blacklist.NewRedisRepository(app.redis)))
	}

	repos, err := repomanager.New(repomanager.StorageKind(app.config.Storage), app.db, opts...)
	if err != nil {
		return nil, err
	}
	if err := repos.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app.logger.Info(ctx, "storage ready", "storage", app.config.Storage, "redis", app.redis != nil)
	return repos, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "Starting HTTP server", "address", app.http.Addr)
	if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until a signal arrives, parent is cancelled or a server fails.
func (app *App) Run(parent context.Context) error {
	ctx, cancelFunc := context.WithCancel(parent)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.sweeper.Start(); err != nil {
		app.close()
		return err
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	app.logger.Info(context.Background(), "Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.http.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}
	app.sweeper.Stop()

	wg.Wait()
	app.close()
	return nil
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}
