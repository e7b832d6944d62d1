// Package docstore owns vector and metadata persistence for ingested
// reference documents. The tenant equality filter is applied inside every
// implementation before similarity ranking; it is not a caller-supplied
// query option and cannot be bypassed.
package docstore

import (
	"context"
	"fmt"
	"math"

	"brandguard-platform/models"
)

// ValidationError reports a malformed document at the ingestion boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s %s", e.Field, e.Reason)
}

// Store persists embedded documents per tenant. Search returns at most topK
// passages ordered by descending similarity, restricted to the given client
// before ranking. An empty tenant corpus yields an empty slice, not an error.
// Re-ingesting an existing (client_id, doc_id) replaces the record.
type Store interface {
	Ingest(ctx context.Context, doc models.Document) error
	Search(ctx context.Context, queryEmbedding []float32, clientID string, topK int) ([]models.RetrievedPassage, error)
	Delete(ctx context.Context, clientID, docID string) error
	Count(ctx context.Context, clientID string) (int64, error)
}

func validate(doc models.Document) error {
	if doc.ClientID == "" {
		return &ValidationError{Field: "client_id", Reason: "must not be empty"}
	}
	if doc.DocID == "" {
		return &ValidationError{Field: "doc_id", Reason: "must not be empty"}
	}
	if doc.Content == "" {
		return &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if len(doc.Embedding) == 0 {
		return &ValidationError{Field: "embedding", Reason: "must not be empty"}
	}
	return nil
}

// cosineSimilarity computes similarity between two embeddings. Gemini
// embeddings are not guaranteed to be L2-normalized, so the full form is used.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
