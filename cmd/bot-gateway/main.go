package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"post-wizard-bot/internal/adapters/bot"
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
		logger.Fatal().Err(err).Msg("не удалось собрать мастер")
	}
	defer cleanup()

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	h := bot.NewHandler(botAPI, log.Component(logger, "bot"), svc)

	if cfg.Telegram.WebhookURL == "" {
		// без вебхука входящий HTTP не нужен, наружу отдаём только метрики
		metrics.StartServer(ctx, log.Component(logger, "metrics"), cfg.MetricsAddr)
		go h.Poll(ctx, botAPI)
		<-ctx.Done()
		logger.Info().Msg("остановка бота")
		return
	}

	if err := bot.RegisterWebhook(botAPI, cfg.Telegram.WebhookURL); err != nil {
		logger.Fatal().Err(err).Msg("не удалось зарегистрировать вебхук")
	}
	srv := httpinfra.NewServer(logger)
	srv.Router.Post("/bot/webhook", h.WebhookHandler())

	go func() {
		logger.Info().Msg("бот-гейтвей запущен")
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка бота")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
