package registry

import (
	"context"
	"errors"
	"testing"

	"brandguard-platform/models"
)

func acmeProfile() models.ClientProfile {
	return models.ClientProfile{
		ClientID:         "acme",
		BrandVoice:       "Professional and direct",
		Tone:             "Technical",
		Lexicon:          []string{"widget"},
		AvoidTerms:       []string{"amazing"},
		DeliverableTypes: []string{"product_update"},
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	if err := r.Register(ctx, acmeProfile()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := r.Get(ctx, "acme")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.BrandVoice != "Professional and direct" {
		t.Fatalf("unexpected brand voice: %q", profile.BrandVoice)
	}
	if profile.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	if err := r.Register(ctx, acmeProfile()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	err := r.Register(ctx, acmeProfile())
	if !errors.Is(err, ErrDuplicateClient) {
		t.Fatalf("expected ErrDuplicateClient, got %v", err)
	}
}

func TestGetUnknownClient(t *testing.T) {
	r := NewMemoryRegistry()

	_, err := r.Get(context.Background(), "globex")
	if !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
}

func TestUpdateReplacesWholesale(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	if err := r.Register(ctx, acmeProfile()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated := acmeProfile()
	updated.Tone = "Playful"
	updated.Lexicon = nil
	if err := r.Update(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	profile, err := r.Get(ctx, "acme")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if profile.Tone != "Playful" {
		t.Fatalf("tone not replaced: %q", profile.Tone)
	}
	if len(profile.Lexicon) != 0 {
		t.Fatalf("lexicon not replaced wholesale: %v", profile.Lexicon)
	}
}

func TestUpdateUnknownClient(t *testing.T) {
	r := NewMemoryRegistry()

	err := r.Update(context.Background(), acmeProfile())
	if !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
}

func TestDeregister(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	if err := r.Register(ctx, acmeProfile()); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Deregister(ctx, "acme"); err != nil {
		t.Fatalf("deregister failed: %v", err)
	}

	if _, err := r.Get(ctx, "acme"); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient after deregister, got %v", err)
	}

	if err := r.Deregister(ctx, "acme"); !errors.Is(err, ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient on second deregister, got %v", err)
	}
}

func TestListSortedByClientID(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	for _, id := range []string{"globex", "acme", "initech"} {
		p := acmeProfile()
		p.ClientID = id
		if err := r.Register(ctx, p); err != nil {
			t.Fatalf("register %s failed: %v", id, err)
		}
	}

	profiles, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	for i, want := range []string{"acme", "globex", "initech"} {
		if profiles[i].ClientID != want {
			t.Fatalf("profiles[%d] = %q, want %q", i, profiles[i].ClientID, want)
		}
	}
}
