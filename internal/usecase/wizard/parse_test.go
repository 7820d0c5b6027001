package wizard

import (
	"errors"
	"testing"

	"post-wizard-bot/internal/domain"
)

func TestParsePostType(t *testing.T) {
	cases := map[string]domain.PostType{
		"product showcase":    domain.PostTypeProductShowcase,
		"  Promotional Offer": domain.PostTypePromotionalOffer,
		"COMPANY UPDATE":      domain.PostTypeCompanyUpdate,
		"blog post":           "",
		"":                    "",
	}
	for input, expected := range cases {
		got, err := ParsePostType(input)
		if expected == "" {
			if err == nil {
				t.Fatalf("ожидали ошибку для %q", input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("не ожидали ошибку для %q: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ожидали %q, получили %q", expected, got)
		}
	}
}

func TestParsePlatforms(t *testing.T) {
	got, err := ParsePlatforms("instagram, Facebook ,INSTAGRAM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Platform{domain.PlatformInstagram, domain.PlatformFacebook}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParsePlatformsRejectsUnknown(t *testing.T) {
	_, err := ParsePlatforms("Instagram, MySpace")
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}
	var perr *PlatformError
	if !errors.As(err, &perr) || len(perr.Invalid) != 1 || perr.Invalid[0] != "MySpace" {
		t.Fatalf("expected MySpace to be reported, got %v", err)
	}
}

func TestParsePlatformsRejectsEmptyItem(t *testing.T) {
	if _, err := ParsePlatforms("Instagram,,TikTok"); !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected empty item to be rejected, got %v", err)
	}
}

func TestParseTemplateIndex(t *testing.T) {
	tmpl, err := ParseTemplateIndex(" 1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tmpl.Reference != domain.Templates[0].Reference {
		t.Fatalf("expected %s, got %s", domain.Templates[0].Reference, tmpl.Reference)
	}
	for _, input := range []string{"0", "4", "-1", "two", "1.5", ""} {
		if _, err := ParseTemplateIndex(input); !errors.Is(err, ErrTemplateIndex) {
			t.Fatalf("expected ErrTemplateIndex for %q, got %v", input, err)
		}
	}
}

func TestParseTone(t *testing.T) {
	if _, err := ParseTone("   "); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	tone, err := ParseTone(" casual ")
	if err != nil || tone != "casual" {
		t.Fatalf("expected casual, got %q (%v)", tone, err)
	}
}
