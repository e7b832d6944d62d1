package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/registry"
	"brandguard-platform/models"
)

// stubEmbedder returns canned vectors and counts calls so tests can assert
// that rejected requests never reach the embedding stage.
type stubEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

type stubCompleter struct {
	reply    string
	err      error
	calls    int
	last     string
	lastTemp float32
}

func (s *stubCompleter) Complete(_ context.Context, prompt string, _ int, temperature float32) (string, int, error) {
	s.calls++
	s.last = prompt
	s.lastTemp = temperature
	if s.err != nil {
		return "", 0, s.err
	}
	return s.reply, 42, nil
}

func newTestPipeline(t *testing.T) (*Pipeline, *registry.MemoryRegistry, *docstore.MemoryStore, *stubEmbedder, *stubCompleter) {
	t.Helper()
	reg := registry.NewMemoryRegistry()
	store := docstore.NewMemoryStore()
	embedder := &stubEmbedder{vectors: map[string][]float32{}}
	completer := &stubCompleter{reply: "Widget shipping update."}
	return New(reg, store, embedder, completer), reg, store, embedder, completer
}

func registerAcme(t *testing.T, reg *registry.MemoryRegistry) {
	t.Helper()
	err := reg.Register(context.Background(), models.ClientProfile{
		ClientID:         "acme",
		BrandVoice:       "Professional",
		Tone:             "Direct",
		Lexicon:          []string{"widget"},
		AvoidTerms:       []string{"amazing"},
		DeliverableTypes: []string{"product_update"},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
}

func ingestAcmeDoc(t *testing.T, store *docstore.MemoryStore) {
	t.Helper()
	err := store.Ingest(context.Background(), models.Document{
		DocID:     "d1",
		ClientID:  "acme",
		DocType:   "prior_post",
		Content:   "Widgets ship weekly.",
		Embedding: []float32{1, 0},
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
}

func TestGenerateContentHappyPath(t *testing.T) {
	p, reg, store, _, completer := newTestPipeline(t)
	registerAcme(t, reg)
	ingestAcmeDoc(t, store)

	result, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(result.Sources) != 1 || result.Sources[0] != "d1" {
		t.Fatalf("expected sources [d1], got %v", result.Sources)
	}
	if result.ClientID != "acme" {
		t.Fatalf("client id not echoed: %q", result.ClientID)
	}
	if result.Content != "Widget shipping update." {
		t.Fatalf("unexpected content: %q", result.Content)
	}
	if result.TokensUsed != 42 {
		t.Fatalf("token usage not propagated: %d", result.TokensUsed)
	}
	if !strings.Contains(completer.last, "[Source: d1] Widgets ship weekly.") {
		t.Fatal("prompt not grounded on retrieved passage")
	}
}

func TestGenerateContentTemperature(t *testing.T) {
	p, reg, store, _, completer := newTestPipeline(t)
	registerAcme(t, reg)
	ingestAcmeDoc(t, store)

	// Unset temperature falls back to the default.
	_, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if completer.lastTemp != DefaultTemperature {
		t.Fatalf("default temperature = %v, want %v", completer.lastTemp, DefaultTemperature)
	}

	// An explicit zero is a real setting, not a request for the default.
	zero := float32(0)
	_, err = p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
		Temperature:     &zero,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if completer.lastTemp != 0 {
		t.Fatalf("explicit zero temperature coerced to %v", completer.lastTemp)
	}
}

func TestGenerateContentUnknownClient(t *testing.T) {
	p, _, _, embedder, completer := newTestPipeline(t)

	_, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "globex",
		DeliverableType: "product_update",
	})
	if !errors.Is(err, registry.ErrUnknownClient) {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
	if embedder.calls != 0 {
		t.Fatal("embedding computed for unknown client")
	}
	if completer.calls != 0 {
		t.Fatal("model called for unknown client")
	}
}

func TestGenerateContentInsufficientContext(t *testing.T) {
	p, reg, _, _, completer := newTestPipeline(t)
	registerAcme(t, reg)

	_, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
	})
	if !errors.Is(err, ErrInsufficientContext) {
		t.Fatalf("expected ErrInsufficientContext, got %v", err)
	}
	if completer.calls != 0 {
		t.Fatal("model called with zero grounding passages")
	}
}

func TestGenerateContentUnsupportedDeliverable(t *testing.T) {
	p, reg, store, embedder, _ := newTestPipeline(t)
	registerAcme(t, reg)
	ingestAcmeDoc(t, store)

	_, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "press_release",
	})
	if !errors.Is(err, ErrUnsupportedDeliverable) {
		t.Fatalf("expected ErrUnsupportedDeliverable, got %v", err)
	}
	if embedder.calls != 0 {
		t.Fatal("embedding computed for rejected deliverable type")
	}
}

func TestGenerateContentTenantIsolation(t *testing.T) {
	p, reg, store, embedder, _ := newTestPipeline(t)
	registerAcme(t, reg)
	ingestAcmeDoc(t, store)

	err := reg.Register(context.Background(), models.ClientProfile{
		ClientID:         "globex",
		BrandVoice:       "Playful",
		Tone:             "Casual",
		DeliverableTypes: []string{"product_update"},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// globex's document is a much closer embedding match for the query than
	// anything acme owns; it still must never appear in acme's sources.
	embedder.vectors["announce shipping"] = []float32{1, 0.01}
	err = store.Ingest(context.Background(), models.Document{
		DocID:     "g1",
		ClientID:  "globex",
		Content:   "Globex announcement guidelines.",
		Embedding: []float32{1, 0.01},
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	result, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	for _, source := range result.Sources {
		if source == "g1" {
			t.Fatal("cross-tenant document leaked into sources")
		}
	}
	if len(result.Sources) != 1 || result.Sources[0] != "d1" {
		t.Fatalf("expected sources [d1], got %v", result.Sources)
	}
}

func TestGenerateContentModelFailureSurfaces(t *testing.T) {
	p, reg, store, _, completer := newTestPipeline(t)
	registerAcme(t, reg)
	ingestAcmeDoc(t, store)
	completer.err = ai.ErrGenerationUnavailable

	_, err := p.GenerateContent(context.Background(), models.GenerationRequest{
		Query:           "announce shipping",
		ClientID:        "acme",
		DeliverableType: "product_update",
	})
	if !errors.Is(err, ai.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	p, reg, store, _, _ := newTestPipeline(t)
	registerAcme(t, reg)

	for _, id := range []string{"d1", "d2", "d3", "d4"} {
		err := store.Ingest(context.Background(), models.Document{
			DocID:     id,
			ClientID:  "acme",
			Content:   "doc " + id,
			Embedding: []float32{1, 0},
		})
		if err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
	}

	passages, err := p.Retrieve(context.Background(), "query", "acme", 0)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(passages) != DefaultTopK {
		t.Fatalf("expected default top_k %d passages, got %d", DefaultTopK, len(passages))
	}
}
