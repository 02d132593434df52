package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/kingdice/presence-service/internal/config"
	"github.com/kingdice/presence-service/internal/handler"
	"github.com/kingdice/presence-service/internal/hub"
	"github.com/kingdice/presence-service/internal/presence"
	"github.com/kingdice/presence-service/internal/rooms"
	"github.com/kingdice/presence-service/internal/service"
	"github.com/kingdice/presence-service/internal/store"
	"github.com/kingdice/presence-service/pkg/database"
	"github.com/kingdice/presence-service/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	logger := log.L()
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting presence service")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.Database.Driver == "sqlite" {
		// Local development runs against a throwaway sqlite file; the
		// postgres schema is owned by the main site's migrations.
		if err := database.AutoMigrate(db, &store.User{}, &store.Chat{}, &store.MessageRecord{}); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}
	msgStore := store.NewGormStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsHub := hub.NewHub()
	go wsHub.Run(ctx)

	svc := service.NewHubService(
		wsHub,
		presence.NewRegistry(),
		rooms.NewTracker(),
		msgStore,
		service.Config{PersistTimeout: cfg.Hub.PersistTimeout},
	)

	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(logger))
	handler.NewWSHandler(wsHub, svc, cfg.WebSocket).RegisterRoutes(router)
	handler.NewHTTPHandler(svc).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down presence service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("presence service stopped")
}
