package docstore

import (
	"context"
	"sort"
	"time"

	"brandguard-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists documents in a single collection keyed by
// (client_id, doc_id). When an Atlas vector index is available, Search runs
// $vectorSearch with a client_id pre-filter; otherwise it loads the tenant's
// documents with an equality filter and ranks them in process. Either way the
// tenant filter is applied at the query level, before any ranking.
type MongoStore struct {
	collection      *mongo.Collection
	vectorIndexName string
	vectorEnabled   bool
}

func NewMongoStore(ctx context.Context, db *mongo.Database, vectorIndexName string, vectorEnabled bool) (*MongoStore, error) {
	collection := db.Collection("documents")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}, {Key: "doc_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	return &MongoStore{
		collection:      collection,
		vectorIndexName: vectorIndexName,
		vectorEnabled:   vectorEnabled,
	}, nil
}

func (s *MongoStore) Ingest(ctx context.Context, doc models.Document) error {
	if err := validate(doc); err != nil {
		return err
	}

	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now()
	}

	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"client_id": doc.ClientID, "doc_id": doc.DocID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoStore) Search(ctx context.Context, queryEmbedding []float32, clientID string, topK int) ([]models.RetrievedPassage, error) {
	if topK <= 0 {
		return []models.RetrievedPassage{}, nil
	}

	if s.vectorEnabled {
		return s.vectorSearch(ctx, queryEmbedding, clientID, topK)
	}
	return s.bruteForceSearch(ctx, queryEmbedding, clientID, topK)
}

// vectorSearch runs Atlas $vectorSearch. The client_id filter is part of the
// index query itself, so ranking never sees another tenant's vectors.
func (s *MongoStore) vectorSearch(ctx context.Context, queryEmbedding []float32, clientID string, topK int) ([]models.RetrievedPassage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.M{
			"index":         s.vectorIndexName,
			"path":          "embedding",
			"queryVector":   queryEmbedding,
			"numCandidates": topK * 20,
			"limit":         topK,
			"filter":        bson.M{"client_id": clientID},
		}}},
		{{Key: "$project", Value: bson.M{
			"doc_id":  1,
			"content": 1,
			"score":   bson.M{"$meta": "vectorSearchScore"},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	passages := make([]models.RetrievedPassage, 0, topK)
	for cursor.Next(ctx) {
		var hit struct {
			DocID   string  `bson:"doc_id"`
			Content string  `bson:"content"`
			Score   float64 `bson:"score"`
		}
		if err := cursor.Decode(&hit); err != nil {
			return nil, err
		}
		passages = append(passages, models.RetrievedPassage{
			DocID:   hit.DocID,
			Content: hit.Content,
			Score:   hit.Score,
		})
	}
	return passages, cursor.Err()
}

// bruteForceSearch loads only the tenant's documents and ranks them with
// exact cosine similarity. Adequate for corpora in the low thousands.
func (s *MongoStore) bruteForceSearch(ctx context.Context, queryEmbedding []float32, clientID string, topK int) ([]models.RetrievedPassage, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	passages := make([]models.RetrievedPassage, 0)
	for cursor.Next(ctx) {
		var doc models.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		passages = append(passages, models.RetrievedPassage{
			DocID:   doc.DocID,
			Content: doc.Content,
			Score:   cosineSimilarity(doc.Embedding, queryEmbedding),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
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

func (s *MongoStore) Delete(ctx context.Context, clientID, docID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"client_id": clientID, "doc_id": docID})
	return err
}

func (s *MongoStore) Count(ctx context.Context, clientID string) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{"client_id": clientID})
}
