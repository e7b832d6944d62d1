package docstore

import (
	"context"
	"errors"
	"testing"

	"brandguard-platform/models"
)

func doc(clientID, docID, content string, embedding []float32) models.Document {
	return models.Document{
		DocID:     docID,
		ClientID:  clientID,
		DocType:   "brand_guide",
		Content:   content,
		Embedding: embedding,
	}
}

func TestIngestValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	cases := []struct {
		name string
		doc  models.Document
	}{
		{"missing client_id", doc("", "d1", "text", []float32{1})},
		{"missing doc_id", doc("acme", "", "text", []float32{1})},
		{"missing content", doc("acme", "d1", "", []float32{1})},
		{"missing embedding", doc("acme", "d1", "text", nil)},
	}

	for _, tc := range cases {
		err := s.Ingest(ctx, tc.doc)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestSearchFiltersByTenantBeforeRanking(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	query := []float32{1, 0}

	// globex has a document nearly identical to the query; acme's is a
	// poorer match. acme's thin corpus must still win its own search.
	if err := s.Ingest(ctx, doc("acme", "a1", "acme doc", []float32{0.4, 0.9})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("globex", "g1", "globex doc", []float32{1, 0.01})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("globex", "g2", "globex doc 2", []float32{0.99, 0})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	passages, err := s.Search(ctx, query, "acme", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].DocID != "a1" {
		t.Fatalf("foreign document leaked into results: %q", passages[0].DocID)
	}

	passages, err = s.Search(ctx, query, "globex", 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, p := range passages {
		if p.DocID == "a1" {
			t.Fatal("acme document leaked into globex results")
		}
	}
}

func TestSearchOrdersByDescendingScore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Ingest(ctx, doc("acme", "far", "far", []float32{0, 1})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("acme", "near", "near", []float32{1, 0.1})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("acme", "mid", "mid", []float32{1, 1})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	passages, err := s.Search(ctx, []float32{1, 0}, "acme", 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("topK not enforced: got %d passages", len(passages))
	}
	if passages[0].DocID != "near" || passages[1].DocID != "mid" {
		t.Fatalf("unexpected order: %q, %q", passages[0].DocID, passages[1].DocID)
	}
	if passages[0].Score < passages[1].Score {
		t.Fatalf("scores not descending: %f < %f", passages[0].Score, passages[1].Score)
	}
}

func TestSearchEmptyTenantReturnsEmpty(t *testing.T) {
	s := NewMemoryStore()

	passages, err := s.Search(context.Background(), []float32{1, 0}, "acme", 3)
	if err != nil {
		t.Fatalf("empty tenant search must not error: %v", err)
	}
	if len(passages) != 0 {
		t.Fatalf("expected empty result, got %d passages", len(passages))
	}
}

func TestReingestReplaces(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Ingest(ctx, doc("acme", "d1", "first version", []float32{1, 0})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("acme", "d1", "second version", []float32{1, 0})); err != nil {
		t.Fatalf("re-ingest failed: %v", err)
	}

	count, err := s.Count(ctx, "acme")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one record, got %d", count)
	}

	passages, err := s.Search(ctx, []float32{1, 0}, "acme", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if passages[0].Content != "second version" {
		t.Fatalf("re-ingest did not replace content: %q", passages[0].Content)
	}
}

func TestDeleteIsTenantScoped(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Ingest(ctx, doc("acme", "d1", "acme doc", []float32{1})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if err := s.Ingest(ctx, doc("globex", "d1", "globex doc", []float32{1})); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := s.Delete(ctx, "acme", "d1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	acmeCount, _ := s.Count(ctx, "acme")
	globexCount, _ := s.Count(ctx, "globex")
	if acmeCount != 0 {
		t.Fatalf("acme doc not deleted, count %d", acmeCount)
	}
	if globexCount != 1 {
		t.Fatalf("delete crossed tenants, globex count %d", globexCount)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.9999 {
		t.Fatalf("identical vectors should score ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got > 0.0001 {
		t.Fatalf("orthogonal vectors should score ~0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Fatalf("zero vector should score 0, got %f", got)
	}
}
