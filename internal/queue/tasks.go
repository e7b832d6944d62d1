package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"brandguard-platform/internal/ai"
	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/ingest"
	"brandguard-platform/internal/logger"
	"brandguard-platform/internal/registry"
	"brandguard-platform/models"
)

const (
	TaskProcessDocument = "document:process"
	TaskImportURL       = "url:import"
)

type DocumentProcessPayload struct {
	ClientID    string `json:"client_id"`
	DocID       string `json:"doc_id"`
	DocType     string `json:"doc_type"`
	FilePath    string `json:"file_path"`
	ContentType string `json:"content_type"`
}

type URLImportPayload struct {
	ClientID string `json:"client_id"`
	DocID    string `json:"doc_id"`
	DocType  string `json:"doc_type"`
	URL      string `json:"url"`
}

// Task creators
func NewDocumentProcessTask(clientID, docID, docType, filePath, contentType string) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentProcessPayload{
		ClientID:    clientID,
		DocID:       docID,
		DocType:     docType,
		FilePath:    filePath,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskProcessDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewURLImportTask(clientID, docID, docType, url string) (*asynq.Task, error) {
	payload, err := json.Marshal(URLImportPayload{
		ClientID: clientID,
		DocID:    docID,
		DocType:  docType,
		URL:      url,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskImportURL,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor handles background ingestion. Extraction and chunking run
// here rather than in the request path so large uploads do not hold an HTTP
// connection open.
type TaskProcessor struct {
	registry registry.Registry
	store    docstore.Store
	embedder ai.Embedder
	chunker  *ingest.Chunker
}

func NewTaskProcessor(reg registry.Registry, store docstore.Store, embedder ai.Embedder, chunker *ingest.Chunker) *TaskProcessor {
	return &TaskProcessor{
		registry: reg,
		store:    store,
		embedder: embedder,
		chunker:  chunker,
	}
}

func (p *TaskProcessor) ProcessDocument(ctx context.Context, t *asynq.Task) error {
	var payload DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing document", "client_id", payload.ClientID, "doc_id", payload.DocID)

	raw, err := os.ReadFile(payload.FilePath)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	text, err := ingest.ExtractText(payload.ContentType, raw)
	if err != nil {
		// Extraction failures are permanent; retrying the same bytes
		// cannot succeed.
		logger.Error("Extraction failed", "doc_id", payload.DocID, "error", err)
		return fmt.Errorf("extract: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.ingestChunks(ctx, payload.ClientID, payload.DocID, payload.DocType, "", text); err != nil {
		return err
	}

	// Uploaded file is no longer needed once its chunks are stored.
	if err := os.Remove(payload.FilePath); err != nil {
		logger.Warn("Failed to remove processed upload", "path", payload.FilePath, "error", err)
	}

	logger.Info("Document processed", "client_id", payload.ClientID, "doc_id", payload.DocID)
	return nil
}

func (p *TaskProcessor) ImportURL(ctx context.Context, t *asynq.Task) error {
	var payload URLImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Importing URL", "client_id", payload.ClientID, "url", payload.URL)

	page, err := ingest.FetchPage(payload.URL)
	if err != nil {
		return err // transient network errors retry
	}

	if err := p.ingestChunks(ctx, payload.ClientID, payload.DocID, payload.DocType, payload.URL, page.Text); err != nil {
		return err
	}

	logger.Info("URL imported", "client_id", payload.ClientID, "url", payload.URL)
	return nil
}

// ingestChunks chunks extracted text, embeds each chunk, and stores it under
// a derived id so re-processing the same document replaces its chunks.
func (p *TaskProcessor) ingestChunks(ctx context.Context, clientID, docID, docType, sourceURL, text string) error {
	if _, err := p.registry.Get(ctx, clientID); err != nil {
		// Client was deregistered after enqueue; nothing to ingest into.
		return fmt.Errorf("resolve client %s: %v: %w", clientID, err, asynq.SkipRetry)
	}

	chunks := p.chunker.Chunk(text)
	if len(chunks) == 0 {
		return fmt.Errorf("no extractable text for %s: %w", docID, asynq.SkipRetry)
	}

	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s: %w", i, docID, err)
		}

		doc := models.Document{
			DocID:      fmt.Sprintf("%s_%d", docID, i),
			ClientID:   clientID,
			DocType:    docType,
			Content:    chunk,
			SourceURL:  sourceURL,
			Embedding:  embedding,
			IngestedAt: time.Now().UTC(),
		}
		if err := p.store.Ingest(ctx, doc); err != nil {
			return fmt.Errorf("store chunk %d of %s: %w", i, docID, err)
		}
	}

	logger.Info("Chunks stored", "client_id", clientID, "doc_id", docID, "chunks", len(chunks))
	return nil
}
