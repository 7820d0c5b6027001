package memory

import (
	"context"
	"sync"

	"post-wizard-bot/internal/domain"
)

// StateStore хранит состояние мастера в памяти процесса.
type StateStore struct {
	mu     sync.RWMutex
	states map[string]domain.WizardState
}

// NewStateStore создаёт хранилище.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]domain.WizardState)}
}

// Get возвращает копию состояния.
func (s *StateStore) Get(_ context.Context, sessionID string) (domain.WizardState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return domain.WizardState{}, domain.ErrStateNotFound
	}
	return cloneState(state), nil
}

// Put сохраняет состояние.
func (s *StateStore) Put(_ context.Context, sessionID string, state domain.WizardState) error {
	s.mu.Lock()
	s.states[sessionID] = cloneState(state)
	s.mu.Unlock()
	return nil
}

// Delete сбрасывает мастер.
func (s *StateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.states, sessionID)
	s.mu.Unlock()
	return nil
}

func cloneState(state domain.WizardState) domain.WizardState {
	if state.TargetPlatforms != nil {
		state.TargetPlatforms = append([]domain.Platform(nil), state.TargetPlatforms...)
	}
	return state
}
