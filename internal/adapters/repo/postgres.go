package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.TranscriptRepo = (*Postgres)(nil)
	_ domain.PostRepo       = (*Postgres)(nil)
)

// Schema создаёт таблицы, если их нет.
const Schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID        NOT NULL UNIQUE,
	session_id TEXT        NOT NULL,
	origin     TEXT        NOT NULL,
	content    TEXT        NOT NULL,
	command    TEXT        NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_session_seq ON chat_messages (session_id, seq);
CREATE TABLE IF NOT EXISTS submitted_posts (
	id           UUID PRIMARY KEY,
	session_id   TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate применяет Schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (p *Postgres) connCtxWithParent(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Append дописывает сообщения одним батчем.
func (p *Postgres) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	err := p.pool.SendBatch(ctx, insertMessagesBatch(sessionID, msgs)).Close()
	metrics.ObserveNetworkRequest("postgres", "chat_messages_insert", "chat_messages", start, err)
	if err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

// List возвращает последние limit сообщений по возрастанию. limit <= 0 — все.
func (p *Postgres) List(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id::text, origin, content, command, created_at FROM (
	SELECT seq, id, origin, content, command, created_at
	FROM chat_messages
	WHERE session_id = $1
	ORDER BY seq DESC
	LIMIT $2
) recent
ORDER BY seq ASC
`, sessionID, limitArg(limit))
	metrics.ObserveNetworkRequest("postgres", "chat_messages_select", "chat_messages", start, err)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var (
			m       domain.Message
			origin  string
			command string
		)
		if err := rows.Scan(&m.ID, &origin, &m.Content, &command, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Origin = domain.Origin(origin)
		m.Command = domain.Command(command)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count возвращает число сообщений сессии.
func (p *Postgres) Count(ctx context.Context, sessionID string) (int, error) {
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM chat_messages WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// SaveSubmitted сохраняет отправленный пост.
func (p *Postgres) SaveSubmitted(ctx context.Context, event domain.PostSubmittedEvent) error {
	payload, err := json.Marshal(event.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	ctx, cancel := p.connCtxWithParent(ctx)
	defer cancel()
	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO submitted_posts (id, session_id, payload, submitted_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING
`, event.ID, event.SessionID, payload, event.SubmittedAt)
	metrics.ObserveNetworkRequest("postgres", "submitted_posts_insert", "submitted_posts", start, err)
	if err != nil {
		return fmt.Errorf("insert submitted post: %w", err)
	}
	return nil
}

func insertMessagesBatch(sessionID string, msgs []domain.Message) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(`
INSERT INTO chat_messages (id, session_id, origin, content, command, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, m.ID, sessionID, string(m.Origin), m.Content, string(m.Command), m.Timestamp.UTC())
	}
	return batch
}

// limitArg превращает limit <= 0 в NULL: LIMIT NULL в Postgres снимает ограничение.
func limitArg(limit int) any {
	if limit > 0 {
		return limit
	}
	return nil
}
