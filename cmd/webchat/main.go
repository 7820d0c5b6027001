package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"post-wizard-bot/internal/adapters/webchat"
	"post-wizard-bot/internal/app"
	"post-wizard-bot/internal/infra/config"
	httpinfra "post-wizard-bot/internal/infra/http"
	"post-wizard-bot/internal/infra/log"
	"post-wizard-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := app.Wizard(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("webchat: не удалось собрать мастер")
	}
	defer cleanup()

	srv := httpinfra.NewServer(logger)
	webchat.NewHandler(svc, log.Component(logger, "webchat"), cfg.Web.AllowedOrigins, cfg.Web.HistoryLimit).Routes(srv.Router)

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("webchat: HTTP сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("webchat: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
