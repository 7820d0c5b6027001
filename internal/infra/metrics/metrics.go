package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	WizardStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wizard_started_total",
		Help: "Сколько раз запускали мастер создания поста",
	})

	WizardStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_steps_total",
		Help: "Ответы на шаги мастера",
	}, []string{"step", "result"})

	WizardSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_submissions_total",
		Help: "Отправки во внешний вебхук",
	}, []string{"kind", "status"})

	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_commands_total",
		Help: "Обработанные команды чата",
	}, []string{"command"})

	RelayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_requests_total",
		Help: "Запросы к релею по методу и коду ответа",
	}, []string{"method", "code"})

	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
		WizardStartedTotal,
		WizardStepsTotal,
		WizardSubmissionsTotal,
		CommandsTotal,
		RelayRequestsTotal,
		BotSendErrors,
	)
}

// Handler отдаёт /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncWizardStarted считает запуск мастера.
func IncWizardStarted() {
	WizardStartedTotal.Inc()
}

// ObserveWizardStep считает принятый или отклонённый ответ на шаге.
func ObserveWizardStep(step int, accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	WizardStepsTotal.WithLabelValues(strconv.Itoa(step), result).Inc()
}

// ObserveSubmission считает отправку во внешний вебхук.
func ObserveSubmission(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	WizardSubmissionsTotal.WithLabelValues(kind, status).Inc()
}

// IncCommand считает команду чата.
func IncCommand(command string) {
	CommandsTotal.WithLabelValues(command).Inc()
}

// ObserveRelay считает ответ релея.
func ObserveRelay(method string, code int) {
	RelayRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}
