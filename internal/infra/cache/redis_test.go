package cache

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"post-wizard-bot/internal/domain"
)

func TestStateJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state domain.WizardState
	}{
		{name: "fresh", state: domain.NewWizardState()},
		{name: "step 3", state: domain.WizardState{
			Step:        domain.StepPlatforms,
			PostType:    domain.PostTypeProductShowcase,
			PostDetails: "Great sale this week",
		}},
		{name: "step 5", state: domain.WizardState{
			Step:              domain.StepTone,
			PostType:          domain.PostTypeProductShowcase,
			PostDetails:       "Great sale this week",
			TargetPlatforms:   []domain.Platform{domain.PlatformInstagram, domain.PlatformFacebook},
			TemplateReference: domain.Templates[0].Reference,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.state)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := decodeState(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.state) {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, tt.state)
			}
		})
	}
}

func TestStateJSONOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(domain.NewWizardState())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"step":1}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}

func TestDecodeStateRejectsBadData(t *testing.T) {
	for _, raw := range []string{`not json`, `{}`, `{"step":0}`, `{"step":6}`} {
		if _, err := decodeState([]byte(raw)); err == nil {
			t.Fatalf("decodeState(%s): expected error", raw)
		}
	}
}

func TestStateKey(t *testing.T) {
	if got := stateKey("tg:42"); got != "wizard:state:tg:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestUnreachableRedisIsNotMissingState(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	store := NewRedisStateStore(client, time.Hour)

	_, err := store.Get(context.Background(), "s1")
	if err == nil || errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "redis get") {
		t.Fatalf("error should be wrapped, got %v", err)
	}
}
