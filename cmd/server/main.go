package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cosync/internal/api"
	"cosync/internal/auth"
	"cosync/internal/config"
	"cosync/internal/room"
	"cosync/internal/runner"
	"cosync/internal/store"
	"cosync/internal/ws"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	users, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open user store")
	}
	defer users.Close()

	registry := room.NewRegistry()
	hub := ws.NewHub(registry, ws.NewJoinLimiter(cfg.JoinLimit, cfg.JoinWindow))
	go hub.Run(ctx)

	socket := ws.NewServer(hub, ws.Options{
		ReadLimit:  cfg.ReadLimit,
		SendQueue:  cfg.SendQueue,
		PingPeriod: cfg.PingPeriod,
	})

	r := api.SetupRouter(api.Deps{
		Mode:   cfg.Mode,
		Tokens: auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Users:  users,
		Runner: runner.NewClient(cfg.PistonURL),
		Hub:    hub,
		Socket: socket,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("cosync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
