package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"gambleio-server/internal/config"
	"gambleio-server/internal/database"
	"gambleio-server/internal/handlers"
	"gambleio-server/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("backend", cfg.StoreBackend).Fatal("Failed to open store")
	}
	defer store.Close()

	game := cfg.Game
	tokens := services.NewTokenService(cfg.JWTSecret, store)
	hub := handlers.NewWebSocketHub()
	roulette := services.NewRouletteEngine(store, game.Roulette, services.WithBroadcaster(hub))
	chat := services.NewChatService(store, game.Chat, hub)

	router := handlers.NewRouter(handlers.Services{
		Store:       store,
		Tokens:      tokens,
		Auth:        services.NewAuthService(store, tokens, game.StartingBalance, cfg.OwnerUsername),
		Ledger:      services.NewLedgerService(store, game.RiskUnlockCosts),
		Roulette:    roulette,
		Chat:        chat,
		Leaderboard: services.NewLeaderboardService(store),
		Admin:       services.NewAdminService(store, roulette, chat, cfg.AdminResetKey),
		Plinko:      services.NewPlinkoService(store),
		Hub:         hub,
	})

	go hub.Run(ctx)
	go roulette.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":    cfg.Port,
			"env":     cfg.Env,
			"backend": cfg.StoreBackend,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func openStore(ctx context.Context, cfg *config.Config) (services.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return services.NewRedisStore(ctx, cfg)
	case config.BackendPostgres:
		if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return services.NewPostgresStore(db), nil
	default:
		return services.NewMemoryStore(), nil
	}
}
