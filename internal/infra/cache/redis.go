package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"post-wizard-bot/internal/domain"
)

const statePrefix = "wizard:state:"

// RedisStateStore реализует domain.StateStore через Redis.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore создаёт хранилище. ttl <= 0 — без истечения.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

// Connect создаёт клиента и проверяет соединение.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Get возвращает состояние мастера.
func (s *RedisStateStore) Get(ctx context.Context, sessionID string) (domain.WizardState, error) {
	data, err := s.client.Get(ctx, stateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.WizardState{}, domain.ErrStateNotFound
	}
	if err != nil {
		return domain.WizardState{}, fmt.Errorf("redis get: %w", err)
	}
	return decodeState(data)
}

// Put сохраняет состояние и продлевает TTL.
func (s *RedisStateStore) Put(ctx context.Context, sessionID string, state domain.WizardState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete сбрасывает мастер.
func (s *RedisStateStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func stateKey(sessionID string) string {
	return statePrefix + sessionID
}

func decodeState(data []byte) (domain.WizardState, error) {
	var state domain.WizardState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.WizardState{}, fmt.Errorf("decode state: %w", err)
	}
	if state.Step < domain.StepPostType || state.Step > domain.StepTone {
		return domain.WizardState{}, fmt.Errorf("decode state: step %d out of range", state.Step)
	}
	return state, nil
}
