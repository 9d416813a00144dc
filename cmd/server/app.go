package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tanoush/storefront/internal/db"
	"github.com/tanoush/storefront/internal/handlers"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/metrics"
	"github.com/tanoush/storefront/internal/repository"
	"github.com/tanoush/storefront/internal/repository/objectstore"
	"github.com/tanoush/storefront/internal/repository/postgres"
	"github.com/tanoush/storefront/internal/repository/redis"
	"github.com/tanoush/storefront/internal/service/auth"
	"github.com/tanoush/storefront/internal/service/auth/password"
	"github.com/tanoush/storefront/internal/service/auth/tokenmanager"
	"github.com/tanoush/storefront/internal/service/catalog"
	"github.com/tanoush/storefront/internal/service/upload"
	"github.com/tanoush/storefront/internal/service/user"
	"github.com/tanoush/storefront/internal/service/wishlist"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	// Release connections in reverse order
	closers []func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	app := &ServerApp{ListenAddr: c.ListenAddr, Logger: logger}
	ready := false
	defer func() {
		if !ready {
			app.Close()
		}
	}()

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.closers = append(app.closers, pool.Close)

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	var cache repository.FilterCache
	if c.RedisAddr != "" {
		client, err := redis.Connect(ctx, c.RedisAddr)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		cache = redis.NewFilterCache(client)
		logger.Info("catalog filter cache enabled", "redis", c.RedisAddr)
	}

	var images upload.ObjectStore
	if c.S3.Bucket != "" {
		store, err := objectstore.NewImageStore(ctx, c.S3)
		if err != nil {
			return nil, err
		}
		images = store
		logger.Info("image uploads go to s3", "bucket", c.S3.Bucket)
	}

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
		AccessTTL:     c.AccessTTL,
		RefreshTTL:    c.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	hasher := password.BcryptHasher{Cost: c.BcryptCost}
	authCfg := auth.Config{
		Hasher:               hasher,
		CookieSecure:         c.CookieSecure,
		LogoutRevokesRefresh: c.LogoutRevokesRefresh,
	}

	services := handlers.Services{}
	if c.Metrics {
		m := metrics.New()
		authCfg.Events = m
		services.Metrics = m
	}

	authService, err := auth.NewService(authCfg, tokenManager, storage.User(), logger.WithGroup("auth"))
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	services.Auth = authService
	services.Gate = authService.Gate()
	services.Users = user.NewService(hasher, storage, authService)
	services.Catalog = catalog.NewService(storage.Product(), cache, catalog.DefaultFilterCacheTTL, logger.WithGroup("catalog"))
	services.Wishlist = wishlist.NewService(storage.Wishlist(), storage.Product())
	services.Upload = upload.NewService(images, logger.WithGroup("upload"))

	app.Handler = handlers.NewRouter(services, logger)
	ready = true
	return app, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

func (s *ServerApp) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
