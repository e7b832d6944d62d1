package queue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/ingest"
	"brandguard-platform/internal/registry"
	"brandguard-platform/models"
)

type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	return []float32{float32(len(text)), 1, 0}, nil
}

func testProfile(clientID string) models.ClientProfile {
	return models.ClientProfile{
		ClientID:         clientID,
		BrandVoice:       "confident",
		Tone:             "professional",
		DeliverableTypes: []string{"blog_post"},
	}
}

func TestProcessDocumentStoresChunks(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryRegistry()
	if err := reg.Register(ctx, testProfile("acme")); err != nil {
		t.Fatalf("register: %v", err)
	}
	store := docstore.NewMemoryStore()
	emb := &stubEmbedder{}
	proc := NewTaskProcessor(reg, store, emb, ingest.NewChunker(1000, 200))

	path := filepath.Join(t.TempDir(), "upload.txt")
	if err := os.WriteFile(path, []byte("Our brand voice is bold and direct."), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}

	task, err := NewDocumentProcessTask("acme", "brand-guide", "guideline", path, "text/plain")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := proc.ProcessDocument(ctx, task); err != nil {
		t.Fatalf("process: %v", err)
	}

	count, err := store.Count(ctx, "acme")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stored chunk, got %d", count)
	}
	if emb.calls != 1 {
		t.Fatalf("expected 1 embedding call, got %d", emb.calls)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("processed upload should be removed, stat err = %v", err)
	}
}

func TestProcessDocumentUnknownClientSkips(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	proc := NewTaskProcessor(registry.NewMemoryRegistry(), store, &stubEmbedder{}, ingest.NewChunker(1000, 200))

	path := filepath.Join(t.TempDir(), "upload.txt")
	if err := os.WriteFile(path, []byte("orphaned content"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}

	task, err := NewDocumentProcessTask("ghost", "doc1", "guideline", path, "text/plain")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := proc.ProcessDocument(ctx, task); err == nil {
		t.Fatal("expected error for unknown client")
	}

	count, err := store.Count(ctx, "ghost")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("nothing should be stored for an unknown client, got %d", count)
	}
}

func TestProcessDocumentChunkIDsAreDerived(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewMemoryRegistry()
	if err := reg.Register(ctx, testProfile("acme")); err != nil {
		t.Fatalf("register: %v", err)
	}
	store := docstore.NewMemoryStore()
	emb := &stubEmbedder{}
	proc := NewTaskProcessor(reg, store, emb, ingest.NewChunker(60, 0))

	path := filepath.Join(t.TempDir(), "upload.txt")
	content := "First paragraph about the brand voice and tone.\n\nSecond paragraph describing product naming conventions."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}

	task, err := NewDocumentProcessTask("acme", "guide", "guideline", path, "text/plain")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := proc.ProcessDocument(ctx, task); err != nil {
		t.Fatalf("process: %v", err)
	}

	count, err := store.Count(ctx, "acme")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 chunks, got %d", count)
	}

	// Re-processing under the same doc id replaces chunks, not duplicates.
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("rewrite upload: %v", err)
	}
	if err := proc.ProcessDocument(ctx, task); err != nil {
		t.Fatalf("re-process: %v", err)
	}
	count, _ = store.Count(ctx, "acme")
	if count != 2 {
		t.Fatalf("re-processing should replace chunks, got %d", count)
	}
}
