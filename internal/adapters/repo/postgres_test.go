package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"post-wizard-bot/internal/domain"
	"post-wizard-bot/internal/infra/db"
)

func TestLimitArg(t *testing.T) {
	if got := limitArg(10); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
	for _, limit := range []int{0, -1} {
		if got := limitArg(limit); got != nil {
			t.Fatalf("limitArg(%d) = %v, want nil", limit, got)
		}
	}
}

func TestInsertMessagesBatch(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	msgs := []domain.Message{
		{ID: uuid.NewString(), Content: "/help", Origin: domain.OriginUser, Timestamp: now, Command: domain.CommandHelp},
		{ID: uuid.NewString(), Content: "help text", Origin: domain.OriginBot, Timestamp: now},
	}
	batch := insertMessagesBatch("s1", msgs)
	if batch.Len() != 2 {
		t.Fatalf("expected 2 queued inserts, got %d", batch.Len())
	}
	args := batch.QueuedQueries[0].Arguments
	if args[1] != "s1" || args[2] != "user" || args[4] != "/help" {
		t.Fatalf("unexpected arguments: %v", args)
	}
	if ts := args[5].(time.Time); ts.Location() != time.UTC || !ts.Equal(now) {
		t.Fatalf("timestamp must be stored in UTC, got %v", ts)
	}
}

func TestConnCtxKeepsParentDeadline(t *testing.T) {
	p := &Postgres{}
	parent, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	want, _ := parent.Deadline()

	ctx, done := p.connCtxWithParent(parent)
	defer done()
	if got, _ := ctx.Deadline(); !got.Equal(want) {
		t.Fatalf("parent deadline must be kept, got %v", got)
	}

	ctx, done = p.connCtxWithParent(context.Background())
	defer done()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected default deadline")
	}
}

// TestPostgresTranscript ходит в настоящую БД, если задан PG_TEST_DSN.
func TestPostgresTranscript(t *testing.T) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN не задан")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	pg := NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	session := "test-" + uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)
	var msgs []domain.Message
	for i, text := range []string{"welcome", "/help", "help text"} {
		msgs = append(msgs, domain.Message{ID: uuid.NewString(), Content: text, Origin: domain.OriginBot, Timestamp: now.Add(time.Duration(i) * time.Second)})
	}
	if err := pg.Append(ctx, session, msgs...); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := pg.Count(ctx, session)
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
	last, err := pg.List(ctx, session, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(last) != 2 || last[0].Content != "/help" || last[1].Content != "help text" {
		t.Fatalf("unexpected tail: %+v", last)
	}
	all, err := pg.List(ctx, session, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("list all = %d, %v", len(all), err)
	}

	event := domain.PostSubmittedEvent{ID: uuid.NewString(), SessionID: session, SubmittedAt: now}
	if err := pg.SaveSubmitted(ctx, event); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := pg.SaveSubmitted(ctx, event); err != nil {
		t.Fatalf("repeated save must be idempotent: %v", err)
	}
}
