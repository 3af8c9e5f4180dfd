// Package app wires configuration into the import pipeline and its HTTP
// surface. The server binary and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"assetimport/internal/config"
	"assetimport/internal/handler"
	"assetimport/internal/inventoryapi"
	"assetimport/internal/port"
	"assetimport/internal/router"
	"assetimport/internal/service"
	s3storage "assetimport/internal/storage/s3"
	"assetimport/internal/store/memory"
	redisstore "assetimport/internal/store/redis"
)

// Store providers accepted in StoreConfig.Provider.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const shutdownTimeout = 15 * time.Second

// App holds the wired components.
type App struct {
	Config  *config.Config
	Log     *logrus.Entry
	Store   port.ResultStore
	Imports service.ImportService

	closers []func() error
}

// New builds the inventory client, result store, optional archive storage,
// and the import service.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	log := logrus.NewEntry(logger)
	a := &App{Config: cfg, Log: log}

	store, err := a.newStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	a.Store = store

	var storage port.ObjectStorage
	if cfg.S3.Enabled() {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s3Client
		log.WithField("bucket", cfg.S3.Bucket).Info("result archiving enabled")
	}

	client := inventoryapi.NewClient(&cfg.API, log)
	a.Imports = service.NewImportService(client, client, store, storage, &cfg.Import, &cfg.S3, log)
	return a, nil
}

func (a *App) newStore(cfg config.StoreConfig) (port.ResultStore, error) {
	switch cfg.Provider {
	case "", StoreMemory:
		return memory.NewMemoryStore(cfg.TTL), nil
	case StoreRedis:
		client, err := redisstore.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return redisstore.NewRedisStore(client, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown store provider %q", cfg.Provider)
	}
}

// Handler returns the configured Gin engine.
func (a *App) Handler() *gin.Engine {
	if a.Config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	importH := handler.NewImportHandler(a.Imports)
	healthH := handler.NewHealthHandler(a.Store)
	return router.Setup(a.Log, a.Config.CORS.AllowedOrigins, importH, healthH)
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Config.Server.Port,
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.WithField("addr", srv.Addr).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Close releases connections opened by New.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
