package domain

import (
	"context"
	"errors"
)

// ErrStateNotFound возвращается хранилищем, если у сессии нет активного мастера.
var ErrStateNotFound = errors.New("wizard state not found")

// Submitter — граница транспорта: одна попытка POST с JSON и разбор JSON-ответа.
type Submitter interface {
	Submit(ctx context.Context, payload any) (SubmitResult, error)
}

// StateStore хранит состояние мастера по сессиям.
type StateStore interface {
	// Get возвращает ErrStateNotFound, если мастер не запущен.
	Get(ctx context.Context, sessionID string) (WizardState, error)
	Put(ctx context.Context, sessionID string, state WizardState) error
	Delete(ctx context.Context, sessionID string) error
}

// TranscriptRepo — журнал сообщений, только дописывание.
type TranscriptRepo interface {
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	List(ctx context.Context, sessionID string, limit int) ([]Message, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

// PostRepo сохраняет успешно отправленные посты.
type PostRepo interface {
	SaveSubmitted(ctx context.Context, event PostSubmittedEvent) error
}

// EventPublisher рассылает события об отправленных постах.
type EventPublisher interface {
	PublishPostSubmitted(ctx context.Context, event PostSubmittedEvent) error
}
