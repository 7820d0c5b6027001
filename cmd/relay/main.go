package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"post-wizard-bot/internal/adapters/relay"
	"post-wizard-bot/internal/infra/config"
	httpinfra "post-wizard-bot/internal/infra/http"
	"post-wizard-bot/internal/infra/log"
	"post-wizard-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	if cfg.Relay.RemoteURL == "" {
		logger.Fatal().Msg("relay: RELAY_REMOTE_URL не задан")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := relay.NewHandler(relay.Config{
		RemoteURL: cfg.Relay.RemoteURL,
		CORS:      cfg.Relay.CORS,
		Timeout:   cfg.Relay.Timeout,
		MaxBody:   cfg.Relay.MaxBody,
	}, log.Component(logger, "relay"))

	srv := httpinfra.NewServer(logger)
	srv.Router.Handle(cfg.Relay.Path, handler)

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("relay: HTTP сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("relay: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
