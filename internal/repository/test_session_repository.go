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

const sessionResource = "Test session"

// SessionFilter narrows test session queries. Since applies to completedAt.
type SessionFilter struct {
	UserID   string
	TestType string
	Category string
	Status   string
	Since    *time.Time
}

func (f SessionFilter) BSON() bson.M {
	filter := sinceFilter("completedAt", f.Since)
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.TestType != "" {
		filter["testType"] = f.TestType
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

type SessionSort struct {
	Field string
	Desc  bool
}

// SortableSessionFields are the fields listings may be ordered by.
var SortableSessionFields = map[string]bool{
	"completedAt": true,
	"startedAt":   true,
	"createdAt":   true,
	"score":       true,
	"accuracy":    true,
	"timeSpent":   true,
}

func (s SessionSort) BSON() bson.D {
	field := s.Field
	if !SortableSessionFields[field] {
		field = "completedAt"
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

type TestSessionRepository struct {
	Col *mongo.Collection
}

func NewTestSessionRepository(db *mongo.Database) *TestSessionRepository {
	return &TestSessionRepository{Col: db.Collection(TestSessionsCollection)}
}

func (r *TestSessionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "testType", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "completedAt", Value: -1}},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create test session indexes: %w", err)
	}
	return nil
}

func (r *TestSessionRepository) Create(ctx context.Context, session *models.TestSession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return translate(err, sessionResource)
	}
	session.ID = objectIDOf(res.InsertedID, session.ID)
	return nil
}

func (r *TestSessionRepository) List(ctx context.Context, f SessionFilter, page models.Page, sort SessionSort) ([]models.TestSession, int64, error) {
	filter := f.BSON()
	cur, err := r.Col.Find(ctx, filter, pageOptions(page, sort.BSON()))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	sessions := []models.TestSession{}
	for cur.Next(ctx) {
		var s models.TestSession
		if err := cur.Decode(&s); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}

	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *TestSessionRepository) FindByID(ctx context.Context, id string) (*models.TestSession, error) {
	oid, err := parseObjectID(id, sessionResource)
	if err != nil {
		return nil, err
	}
	var session models.TestSession
	if err := r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&session); err != nil {
		return nil, translate(err, sessionResource)
	}
	return &session, nil
}

// Save replaces the stored document with session.
func (r *TestSessionRepository) Save(ctx context.Context, session *models.TestSession) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return translate(err, sessionResource)
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, sessionResource)
	}
	return nil
}

func (r *TestSessionRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, sessionResource)
	if err != nil {
		return err
	}
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, sessionResource)
	}
	return nil
}

func (r *TestSessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.Col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
