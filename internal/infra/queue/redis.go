package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
)

// RedisPostQueue публикует события об отправленных постах в Redis list.
type RedisPostQueue struct {
	client *redis.Client
	key    string
}

// NewRedisPostQueue создаёт очередь по указанному ключу.
func NewRedisPostQueue(client *redis.Client, key string) *RedisPostQueue {
	return &RedisPostQueue{client: client, key: key}
}

// PublishPostSubmitted кладёт событие в очередь.
func (q *RedisPostQueue) PublishPostSubmitted(ctx context.Context, event domain.PostSubmittedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}
