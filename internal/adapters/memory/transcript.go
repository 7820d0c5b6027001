package memory

import (
	"context"
	"sync"

	"post-wizard-bot/internal/domain"
)

// Transcript — журнал переписки в памяти.
type Transcript struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Message
}

// NewTranscript создаёт журнал.
func NewTranscript() *Transcript {
	return &Transcript{sessions: make(map[string][]domain.Message)}
}

// Append дописывает сообщения в конец.
func (t *Transcript) Append(_ context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	t.mu.Lock()
	t.sessions[sessionID] = append(t.sessions[sessionID], msgs...)
	t.mu.Unlock()
	return nil
}

// List возвращает последние limit сообщений по порядку. limit <= 0 — все.
func (t *Transcript) List(_ context.Context, sessionID string, limit int) ([]domain.Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := t.sessions[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]domain.Message(nil), msgs...), nil
}

// Count возвращает число сообщений.
func (t *Transcript) Count(_ context.Context, sessionID string) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions[sessionID]), nil
}
