package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"post-wizard-bot/internal/domain"
)

func TestSubmitSendsJSON(t *testing.T) {
	var got domain.PostRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if accept := r.Header.Get("Accept"); accept != "application/json" {
			t.Errorf("unexpected accept %q", accept)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"queued"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	req := domain.PostRequest{PostType: "company update", TargetPlatforms: []string{"TikTok"}, CompanyTone: "formal"}
	res, err := client.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Text("message") != "queued" {
		t.Fatalf("unexpected result %v", res)
	}
	if got.PostType != "company update" || len(got.TargetPlatforms) != 1 {
		t.Fatalf("payload not forwarded: %+v", got)
	}
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "server error", status: http.StatusBadGateway, body: `{"error":"boom"}`, want: ErrUnexpectedStatus},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, want: ErrInvalidBody},
		{name: "json array", status: http.StatusOK, body: `[1,2]`, want: ErrInvalidBody},
		{name: "null", status: http.StatusOK, body: `null`, want: ErrInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			client, _ := NewClient(srv.URL)
			if _, err := client.Submit(context.Background(), domain.EnrichmentRequest{Prompt: "x"}); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client, _ := NewClient(url)
	if _, err := client.Submit(context.Background(), domain.EnrichmentRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
