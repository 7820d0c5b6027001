package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"post-wizard-bot/internal/adapters/memory"
	"post-wizard-bot/internal/adapters/repo"
	"post-wizard-bot/internal/adapters/webhook"
	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/cache"
	"post-wizard-bot/internal/infra/config"
	"post-wizard-bot/internal/infra/db"
	"post-wizard-bot/internal/infra/log"
	"post-wizard-bot/internal/infra/queue"
	"post-wizard-bot/internal/usecase/wizard"
)

// Драйверы публикации событий.
const (
	EventsNone     = "none"
	EventsRedis    = "redis"
	EventsRabbitMQ = "rabbitmq"
)

const amqpDialAttempts = 5

// Wizard собирает сервис мастера с хранилищами из конфига.
// Возвращаемая функция освобождает подключения.
func Wizard(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*wizard.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*wizard.Service, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	policy, err := Policy(cfg)
	if err != nil {
		return fail(err)
	}
	submitter, err := webhook.NewClient(cfg.Webhook.URL, webhook.WithTimeout(cfg.Webhook.Timeout))
	if err != nil {
		return fail(fmt.Errorf("webhook: %w", err))
	}

	var states domain.StateStore = memory.NewStateStore()
	var events domain.EventPublisher = queue.Noop{}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return fail(fmt.Errorf("redis: %w", err))
		}
		closers = append(closers, func() { _ = client.Close() })
		states = cache.NewRedisStateStore(client, cfg.StateTTL)
		if cfg.Events.Driver == EventsRedis {
			events = queue.NewRedisPostQueue(client, cfg.Events.RedisKey)
		}
	}

	switch cfg.Events.Driver {
	case "", EventsNone:
	case EventsRedis:
		if cfg.RedisAddr == "" {
			return fail(errors.New("events driver redis requires REDIS_ADDR"))
		}
	case EventsRabbitMQ:
		pub, err := queue.NewRabbitPublisher(ctx, cfg.Events.AMQPURL, cfg.Events.Exchange, amqpDialAttempts, log.Component(logger, "events"))
		if err != nil {
			return fail(fmt.Errorf("rabbitmq: %w", err))
		}
		closers = append(closers, func() { _ = pub.Close() })
		events = pub
	default:
		return fail(fmt.Errorf("unknown events driver %q", cfg.Events.Driver))
	}

	var transcript domain.TranscriptRepo = memory.NewTranscript()
	opts := []wizard.Option{wizard.WithPublisher(events)}
	if cfg.PGDSN != "" {
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return fail(fmt.Errorf("postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		pg := repo.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			return fail(err)
		}
		transcript = pg
		opts = append(opts, wizard.WithPostRepo(pg))
	}

	svc := wizard.NewService(submitter, states, transcript, log.Component(logger, "wizard"), policy, opts...)
	return svc, cleanup, nil
}

// Policy строит политику мастера из конфига.
func Policy(cfg config.AppConfig) (wizard.Policy, error) {
	restart, err := wizard.ParseRestartPolicy(cfg.Wizard.RestartPolicy)
	if err != nil {
		return wizard.Policy{}, err
	}
	return wizard.Policy{
		Restart:                    restart,
		AdvanceOnEnrichmentFailure: cfg.Wizard.AdvanceOnEnrichmentFailure,
	}, nil
}
