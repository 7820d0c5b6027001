package queue

import (
	"context"

	"post-wizard-bot/internal/domain"
)

// Noop отбрасывает события. Используется, когда EVENTS_DRIVER=none.
type Noop struct{}

// PublishPostSubmitted ничего не делает.
func (Noop) PublishPostSubmitted(context.Context, domain.PostSubmittedEvent) error { return nil }
