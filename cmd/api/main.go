package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nextera/workforce-api/internal/auth"
	"github.com/nextera/workforce-api/internal/config"
	"github.com/nextera/workforce-api/internal/db"
	httpx "github.com/nextera/workforce-api/internal/http"
	"github.com/nextera/workforce-api/internal/observability"
	"github.com/nextera/workforce-api/internal/repo/mongodb"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	_ = godotenv.Load() // load .env if present (ok if missing in prod)

	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenExpires)

	if err != nil {
		log.Error("invalid token configuration", "err", err)
		os.Exit(1)
	}

	// tracing is opt-in via OTEL_EXPORTER_ENDPOINT
	if cfg.OTELEndpoint != "" {
		shutdownTracer, tracerErr := observability.InitTracer(context.Background(), "workforce-api", cfg.OTELEndpoint)

		if tracerErr != nil {
			log.Error("tracer init failed", "err", tracerErr)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(3 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// single Mongo client for the life of the process
	client, err := db.Connect(cfg.MongoURL)

	if err != nil {
		log.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}

	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()

		_ = client.Disconnect(ctx)
	}()

	database := client.Database(cfg.MongoDB)

	prom := observability.NewProm()

	usersRepo := mongodb.NewUsersRepo(database, prom)

	idxCtx, idxCancel := config.WithTimeout(5 * time.Second)

	err = usersRepo.EnsureIndexes(idxCtx)

	idxCancel()

	if err != nil {
		log.Error("could not create user indexes", "err", err)
		os.Exit(1)
	}

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return client.Ping(ctx, readpref.Primary())
	}

	router := httpx.NewRouter(log, usersRepo, jwtManager, ping, prom, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
