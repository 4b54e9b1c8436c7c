package repository

import (
	"context"
	"fmt"
	"time"

	"iqscalar-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryFilter narrows auth history lookups. Since applies to timestamp.
type HistoryFilter struct {
	UserID    string
	EventType string
	Success   *bool
	Since     *time.Time
}

func (f HistoryFilter) BSON() bson.M {
	filter := sinceFilter("timestamp", f.Since)
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.EventType != "" {
		filter["eventType"] = f.EventType
	}
	if f.Success != nil {
		filter["success"] = *f.Success
	}
	return filter
}

type AuthHistoryRepository struct {
	Col *mongo.Collection
}

func NewAuthHistoryRepository(db *mongo.Database) *AuthHistoryRepository {
	return &AuthHistoryRepository{Col: db.Collection(AuthHistoryCollection)}
}

func (r *AuthHistoryRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "externalId", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "eventType", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "ipAddress", Value: 1}},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create auth history indexes: %w", err)
	}
	return nil
}

func (r *AuthHistoryRepository) Log(ctx context.Context, entry *models.UserAuthHistory) error {
	res, err := r.Col.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = objectIDOf(res.InsertedID, entry.ID)
	return nil
}

// Find returns matching events, newest first. A limit of 0 returns all.
func (r *AuthHistoryRepository) Find(ctx context.Context, f HistoryFilter, limit int) ([]models.UserAuthHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.Col.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, err
	}
	events := []models.UserAuthHistory{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *AuthHistoryRepository) Count(ctx context.Context, f HistoryFilter) (int64, error) {
	return r.Col.CountDocuments(ctx, f.BSON())
}

// DailyLoginsPipeline counts successful logins per day.
func DailyLoginsPipeline(userID string, since time.Time) mongo.Pipeline {
	ok := true
	f := HistoryFilter{UserID: userID, EventType: models.EventLogin, Success: &ok, Since: &since}
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":   dayOf("$timestamp"),
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

func (r *AuthHistoryRepository) DailyLogins(ctx context.Context, userID string, since time.Time) ([]models.DailyCount, error) {
	cur, err := r.Col.Aggregate(ctx, DailyLoginsPipeline(userID, since))
	if err != nil {
		return nil, err
	}
	days := []models.DailyCount{}
	if err := cur.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}
