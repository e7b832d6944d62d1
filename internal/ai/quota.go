package ai

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrQuotaExceeded is returned when a tenant's daily token budget is spent.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

const defaultDailyTokenLimit = 50000

// TenantQuota tracks per-tenant daily generation budgets.
type TenantQuota struct {
	ClientID        string    `bson:"client_id"`
	DailyTokenLimit int       `bson:"daily_token_limit"`
	TokensUsedToday int       `bson:"tokens_used_today"`
	RequestsToday   int       `bson:"requests_today"`
	LastResetDate   time.Time `bson:"last_reset_date"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// QuotaStore enforces daily token budgets per tenant, resetting counters on
// day rollover.
type QuotaStore struct {
	collection *mongo.Collection
}

func NewQuotaStore(db *mongo.Database) *QuotaStore {
	return &QuotaStore{collection: db.Collection("generation_quotas")}
}

// Consume reserves estimatedTokens against the tenant's daily budget,
// creating a default quota record on first use. Returns ErrQuotaExceeded when
// the reservation would cross the limit.
func (q *QuotaStore) Consume(ctx context.Context, clientID string, estimatedTokens int) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Day rollover
	_, err := q.collection.UpdateOne(ctx,
		bson.M{"client_id": clientID, "last_reset_date": bson.M{"$lt": today}},
		bson.M{"$set": bson.M{
			"tokens_used_today": 0,
			"requests_today":    0,
			"last_reset_date":   today,
			"updated_at":        now,
		}},
	)
	if err != nil {
		return err
	}

	// Create a default quota record on first use.
	_, err = q.collection.UpdateOne(ctx,
		bson.M{"client_id": clientID},
		bson.M{"$setOnInsert": bson.M{
			"client_id":         clientID,
			"daily_token_limit": defaultDailyTokenLimit,
			"tokens_used_today": 0,
			"requests_today":    0,
			"last_reset_date":   today,
			"created_at":        now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	// The budget guard lives inside the update filter, so concurrent
	// reservations for the same client serialize on the document: only
	// reservations that still fit the limit match and increment.
	result, err := q.collection.UpdateOne(ctx,
		consumeFilter(clientID, estimatedTokens),
		consumeUpdate(estimatedTokens, now),
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// consumeFilter matches the tenant's quota document only while the
// reservation still fits the daily limit.
func consumeFilter(clientID string, estimatedTokens int) bson.M {
	return bson.M{
		"client_id": clientID,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$tokens_used_today", estimatedTokens}},
			"$daily_token_limit",
		}},
	}
}

func consumeUpdate(estimatedTokens int, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"tokens_used_today": estimatedTokens,
			"requests_today":    1,
		},
		"$set": bson.M{"updated_at": now},
	}
}

func (q *QuotaStore) Status(ctx context.Context, clientID string) (*TenantQuota, error) {
	var quota TenantQuota
	err := q.collection.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&quota)
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

func (q *QuotaStore) SetLimit(ctx context.Context, clientID string, dailyLimit int) error {
	_, err := q.collection.UpdateOne(ctx,
		bson.M{"client_id": clientID},
		bson.M{"$set": bson.M{
			"daily_token_limit": dailyLimit,
			"updated_at":        time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}
