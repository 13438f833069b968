package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"societyhub.org/internal/blob"
	"societyhub.org/internal/bus"
	"societyhub.org/internal/config"
	"societyhub.org/internal/httpapi"
	"societyhub.org/internal/identity"
	"societyhub.org/internal/obs"
	"societyhub.org/internal/society"
	"societyhub.org/internal/store/pg"
)

var version = "0.3.0"

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		obs.InitLogger("info")
		obs.Logger().Fatal("configuration", zap.Error(err))
	}

	obs.InitLogger(cfg.LogLevel)
	obs.Init()
	obs.InitBuildInfo(version)
	logger := obs.Logger()

	// Postgres when a DSN is set, in-memory otherwise. The in-memory store is
	// for local development only; nothing survives a restart.
	var (
		store society.Store
		db    *sql.DB
	)
	if cfg.PostgresDSN != "" {
		pgStore, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		store = pgStore
		db = pgStore.DB()
	} else {
		logger.Warn("SOCIETY_PG_DSN is not set, using the in-memory store")
		store = society.NewInMemory()
	}

	hub := bus.NewHub()
	svc := society.NewService(store, hub)

	tokens, err := identity.NewTokenSigner(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		logger.Fatal("token signer", zap.Error(err))
	}
	resolver, err := identity.NewResolver(tokens, svc)
	if err != nil {
		logger.Fatal("resolver", zap.Error(err))
	}

	blobs, err := blob.NewStore(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		logger.Fatal("upload store", zap.Error(err))
	}

	api := httpapi.New(httpapi.Options{
		Service:    svc,
		Hub:        hub,
		Resolver:   resolver,
		Tokens:     tokens,
		Blobs:      blobs,
		Ready:      httpapi.ReadyProbe{DB: db},
		Version:    version,
		RateBurst:  cfg.RateBurst,
		RatePerSec: cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // SSE and websocket streams stay open
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting society-api", zap.String("version", version), zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	logger.Info("stopped")
}
