package models

import "time"

// Document is one ingested reference chunk. The embedding is computed at
// ingestion time and stored alongside metadata so search never re-embeds.
type Document struct {
	DocID      string    `bson:"doc_id" json:"doc_id" binding:"required"`
	ClientID   string    `bson:"client_id" json:"client_id" binding:"required"`
	DocType    string    `bson:"doc_type" json:"doc_type"`
	Content    string    `bson:"content" json:"content" binding:"required"`
	SourceURL  string    `bson:"source_url,omitempty" json:"source_url,omitempty"`
	Embedding  []float32 `bson:"embedding" json:"-"`
	IngestedAt time.Time `bson:"ingested_at" json:"ingested_at"`
}

// RetrievedPassage is one search hit: a document chunk with its similarity
// score, ordered descending by score.
type RetrievedPassage struct {
	DocID   string  `json:"doc_id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type IngestDocumentRequest struct {
	DocID     string `json:"doc_id" binding:"required"`
	DocType   string `json:"doc_type"`
	Content   string `json:"content" binding:"required"`
	SourceURL string `json:"source_url,omitempty"`
}

type ImportURLRequest struct {
	URL     string `json:"url" binding:"required,url"`
	DocType string `json:"doc_type"`
}
