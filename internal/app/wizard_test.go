package app

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"post-wizard-bot/internal/infra/config"
	"post-wizard-bot/internal/usecase/wizard"
)

func baseConfig() config.AppConfig {
	var cfg config.AppConfig
	cfg.Webhook.URL = "http://127.0.0.1:1/hook"
	cfg.Wizard.RestartPolicy = "overwrite"
	cfg.Wizard.AdvanceOnEnrichmentFailure = true
	cfg.Events.Driver = EventsNone
	return cfg
}

func TestWizardInMemory(t *testing.T) {
	svc, cleanup, err := Wizard(context.Background(), baseConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if svc == nil {
		t.Fatal("expected service")
	}
}

func TestWizardConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
		want   string
	}{
		{name: "no webhook", mutate: func(c *config.AppConfig) { c.Webhook.URL = "" }, want: "webhook"},
		{name: "bad policy", mutate: func(c *config.AppConfig) { c.Wizard.RestartPolicy = "ignore" }, want: "restart policy"},
		{name: "redis events without redis", mutate: func(c *config.AppConfig) { c.Events.Driver = EventsRedis }, want: "REDIS_ADDR"},
		{name: "unknown driver", mutate: func(c *config.AppConfig) { c.Events.Driver = "kafka" }, want: "kafka"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			_, cleanup, err := Wizard(context.Background(), cfg, zerolog.Nop())
			cleanup()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Wizard.RestartPolicy = "reject"
	cfg.Wizard.AdvanceOnEnrichmentFailure = false
	p, err := Policy(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Restart != wizard.RestartReject || p.AdvanceOnEnrichmentFailure {
		t.Fatalf("unexpected policy: %+v", p)
	}
}
