package registry

import (
	"context"
	"time"

	"brandguard-platform/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRegistry stores profiles in a single collection with a unique index
// on client_id. The unique index makes duplicate registration atomic across
// concurrent callers.
type MongoRegistry struct {
	collection *mongo.Collection
}

func NewMongoRegistry(ctx context.Context, db *mongo.Database) (*MongoRegistry, error) {
	collection := db.Collection("client_profiles")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &MongoRegistry{collection: collection}, nil
}

func (r *MongoRegistry) Register(ctx context.Context, profile models.ClientProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, profile)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateClient
	}
	return err
}

func (r *MongoRegistry) Get(ctx context.Context, clientID string) (models.ClientProfile, error) {
	var profile models.ClientProfile
	err := r.collection.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return models.ClientProfile{}, ErrUnknownClient
	}
	if err != nil {
		return models.ClientProfile{}, err
	}
	return profile, nil
}

func (r *MongoRegistry) Update(ctx context.Context, profile models.ClientProfile) error {
	profile.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"client_id": profile.ClientID},
		profile,
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUnknownClient
	}
	return nil
}

func (r *MongoRegistry) Deregister(ctx context.Context, clientID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"client_id": clientID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrUnknownClient
	}
	return nil
}

func (r *MongoRegistry) List(ctx context.Context) ([]models.ClientProfile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"client_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := make([]models.ClientProfile, 0)
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
