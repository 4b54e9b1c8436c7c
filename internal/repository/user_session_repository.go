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

const userSessionResource = "Session"

type UserSessionRepository struct {
	Col *mongo.Collection
}

func NewUserSessionRepository(db *mongo.Database) *UserSessionRepository {
	return &UserSessionRepository{Col: db.Collection(UserSessionsCollection)}
}

func (r *UserSessionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "externalId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "lastActivity", Value: -1}},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create user session indexes: %w", err)
	}
	return nil
}

func (r *UserSessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	res, err := r.Col.InsertOne(ctx, session)
	if err != nil {
		return translate(err, userSessionResource)
	}
	session.ID = objectIDOf(res.InsertedID, session.ID)
	return nil
}

func (r *UserSessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	return r.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (r *UserSessionRepository) FindActiveBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	return r.findOne(ctx, bson.M{"sessionId": sessionID, "isActive": true})
}

func (r *UserSessionRepository) findOne(ctx context.Context, filter bson.M) (*models.UserSession, error) {
	var session models.UserSession
	if err := r.Col.FindOne(ctx, filter).Decode(&session); err != nil {
		return nil, translate(err, userSessionResource)
	}
	return &session, nil
}

func (r *UserSessionRepository) Save(ctx context.Context, session *models.UserSession) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, userSessionResource)
	}
	return nil
}

// List returns a user's sessions by most recent activity. A nil active
// returns sessions in either state.
func (r *UserSessionRepository) List(ctx context.Context, userID string, active *bool) ([]models.UserSession, error) {
	filter := bson.M{"userId": userID}
	if active != nil {
		filter["isActive"] = *active
	}
	cur, err := r.Col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "lastActivity", Value: -1}}))
	if err != nil {
		return nil, err
	}
	sessions := []models.UserSession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *UserSessionRepository) CountActive(ctx context.Context, userID string) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"userId": userID, "isActive": true})
}

func SessionStatsPipeline(userID string, since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID, "loginTime": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":                    nil,
			"totalSessions":          bson.M{"$sum": 1},
			"averageSessionDuration": bson.M{"$avg": "$sessionDuration"},
			"totalSessionTime":       bson.M{"$sum": "$sessionDuration"},
			"longestSession":         bson.M{"$max": "$sessionDuration"},
		}}},
		{{Key: "$set", Value: bson.M{"averageSessionDuration": round2("$averageSessionDuration")}}},
	}
}

func (r *UserSessionRepository) Stats(ctx context.Context, userID string, since time.Time) (models.SessionStats, error) {
	cur, err := r.Col.Aggregate(ctx, SessionStatsPipeline(userID, since))
	if err != nil {
		return models.SessionStats{}, err
	}
	var rows []models.SessionStats
	if err := cur.All(ctx, &rows); err != nil {
		return models.SessionStats{}, err
	}
	if len(rows) == 0 {
		return models.SessionStats{}, nil
	}
	return rows[0], nil
}

// ExpireInactive ends active sessions idle since before cutoff and returns how
// many were closed.
func (r *UserSessionRepository) ExpireInactive(ctx context.Context, cutoff, now time.Time) (int64, error) {
	filter := bson.M{"isActive": true, "lastActivity": bson.M{"$lt": cutoff}}
	update := bson.M{"$set": bson.M{"isActive": false, "logoutTime": now, "updatedAt": now}}
	res, err := r.Col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
