package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("RELAY_REMOTE_URL", "https://automation.example.com/webhook/social-media-post")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Relay.Path != "/api/proxy" || !cfg.Relay.CORS {
		t.Fatalf("unexpected relay defaults: %+v", cfg.Relay)
	}
	if cfg.Relay.RemoteURL != "https://automation.example.com/webhook/social-media-post" {
		t.Fatalf("remote url not read: %q", cfg.Relay.RemoteURL)
	}
	if cfg.Wizard.RestartPolicy != "overwrite" || !cfg.Wizard.AdvanceOnEnrichmentFailure {
		t.Fatalf("unexpected wizard defaults: %+v", cfg.Wizard)
	}
	if cfg.StateTTL != 24*time.Hour {
		t.Fatalf("expected 24h state ttl, got %s", cfg.StateTTL)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("WIZARD_ADVANCE_ON_ENRICHMENT_FAILURE", "false")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EVENTS_DRIVER", "rabbitmq")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Wizard.AdvanceOnEnrichmentFailure {
		t.Fatal("override not applied")
	}
	if len(cfg.Web.AllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.Web.AllowedOrigins)
	}
	if cfg.Events.Driver != "rabbitmq" {
		t.Fatalf("expected rabbitmq, got %q", cfg.Events.Driver)
	}
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("STATE_TTL", "forever")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
