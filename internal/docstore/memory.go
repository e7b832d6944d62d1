package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"brandguard-platform/models"
)

// MemoryStore is a mutex-guarded in-memory document store using brute-force
// cosine similarity. Documents are partitioned by client id, so ranking only
// ever sees one tenant's corpus.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]map[string]models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[string]map[string]models.Document)}
}

func (s *MemoryStore) Ingest(_ context.Context, doc models.Document) error {
	if err := validate(doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, exists := s.tenants[doc.ClientID]
	if !exists {
		docs = make(map[string]models.Document)
		s.tenants[doc.ClientID] = docs
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now()
	}
	docs[doc.DocID] = doc
	return nil
}

func (s *MemoryStore) Search(_ context.Context, queryEmbedding []float32, clientID string, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		return []models.RetrievedPassage{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.tenants[clientID]
	passages := make([]models.RetrievedPassage, 0, len(docs))
	for _, doc := range docs {
		passages = append(passages, models.RetrievedPassage{
			DocID:   doc.DocID,
			Content: doc.Content,
			Score:   cosineSimilarity(doc.Embedding, queryEmbedding),
		})
	}

	sort.Slice(passages, func(i, j int) bool {
		if passages[i].Score != passages[j].Score {
			return passages[i].Score > passages[j].Score
		}
		return passages[i].DocID < passages[j].DocID
	})

	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

func (s *MemoryStore) Delete(_ context.Context, clientID, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if docs, exists := s.tenants[clientID]; exists {
		delete(docs, docID)
	}
	return nil
}

func (s *MemoryStore) Count(_ context.Context, clientID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.tenants[clientID])), nil
}
