package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
)

// RoutingKeyPostSubmitted — ключ маршрутизации событий об отправленных постах.
const RoutingKeyPostSubmitted = "post.submitted"

const maxDialDelay = 30 * time.Second

// RabbitPublisher публикует события в topic exchange RabbitMQ.
type RabbitPublisher struct {
	conn     *amqp.Connection
	exchange string
	log      zerolog.Logger
}

// NewRabbitPublisher подключается к брокеру и объявляет exchange.
func NewRabbitPublisher(ctx context.Context, amqpURL, exchange string, attempts int, log zerolog.Logger) (*RabbitPublisher, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if exchange == "" {
		return nil, errors.New("exchange name is empty")
	}
	conn, err := dialWithRetry(ctx, amqpURL, attempts, time.Second, log)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitPublisher{conn: conn, exchange: exchange, log: log}, nil
}

// PublishPostSubmitted публикует событие как persistent JSON сообщение.
func (p *RabbitPublisher) PublishPostSubmitted(ctx context.Context, event domain.PostSubmittedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	msgID := event.ID
	if msgID == "" {
		msgID = uuid.NewString()
	}
	start := time.Now()
	err = ch.PublishWithContext(ctx, p.exchange, RoutingKeyPostSubmitted, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msgID,
		CorrelationId: event.SessionID,
		Timestamp:     event.SubmittedAt,
		Body:          body,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", p.exchange, start, err)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug().Str("exchange", p.exchange).Str("message_id", msgID).Msg("rabbitmq: событие опубликовано")
	return nil
}

// Close закрывает соединение.
func (p *RabbitPublisher) Close() error {
	return p.conn.Close()
}

func dialWithRetry(ctx context.Context, amqpURL string, attempts int, delay time.Duration, log zerolog.Logger) (*amqp.Connection, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(amqpURL)
		if err == nil {
			if i > 1 {
				log.Info().Int("attempt", i).Msg("rabbitmq: подключились")
			}
			return conn, nil
		}
		lastErr = err
		if i == attempts {
			break
		}
		sleep := backoff(delay, i)
		log.Warn().Err(err).Int("attempt", i).Dur("sleep", sleep).Msg("rabbitmq: не удалось подключиться")
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("rabbitmq: dial after %d attempts: %w", attempts, lastErr)
}

func backoff(base time.Duration, attempt int) time.Duration {
	sleep := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if sleep > maxDialDelay || sleep <= 0 {
		return maxDialDelay
	}
	return sleep
}
