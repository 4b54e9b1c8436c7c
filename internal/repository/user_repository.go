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

const userResource = "User"

type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection(UsersCollection)}
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "externalId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func UserSearchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	re := caseInsensitive(search)
	return bson.M{"$or": bson.A{
		bson.M{"fullName": re},
		bson.M{"email": re},
	}}
}

func (r *UserRepository) List(ctx context.Context, search string, page models.Page) ([]models.User, int64, error) {
	filter := UserSearchFilter(search)
	cur, err := r.Col.Find(ctx, filter, pageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id, userResource)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, translate(err, userResource)
	}
	return &user, nil
}

func (r *UserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.Col.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&user); err != nil {
		return nil, translate(err, userResource)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.Col.InsertOne(ctx, user)
	if err != nil {
		return translate(err, userResource)
	}
	user.ID = objectIDOf(res.InsertedID, user.ID)
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translate(err, userResource)
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, userResource)
	}
	return nil
}

// Update applies a $set and returns the updated document.
func (r *UserRepository) Update(ctx context.Context, id string, update bson.M) (*models.User, error) {
	oid, err := parseObjectID(id, userResource)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": update}, opts).Decode(&user); err != nil {
		return nil, translate(err, userResource)
	}
	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, userResource)
	if err != nil {
		return err
	}
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, userResource)
	}
	return nil
}

func UserCountsPipeline(activeSince time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"totalUsers": bson.M{"$sum": 1},
			"activeUsers": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$gte": bson.A{"$lastLogin", activeSince}}, 1, 0,
			}}},
		}}},
	}
}

// Counts returns the number of users and how many logged in since activeSince.
func (r *UserRepository) Counts(ctx context.Context, activeSince time.Time) (models.UserCounts, error) {
	var rows []models.UserCounts
	cur, err := r.Col.Aggregate(ctx, UserCountsPipeline(activeSince))
	if err != nil {
		return models.UserCounts{}, err
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.UserCounts{}, err
	}
	if len(rows) == 0 {
		return models.UserCounts{}, nil
	}
	return rows[0], nil
}

func DailyRegistrationsPipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   dayOf("$createdAt"),
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// DailyRegistrations counts new users per day since the given time, oldest day first.
func (r *UserRepository) DailyRegistrations(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	cur, err := r.Col.Aggregate(ctx, DailyRegistrationsPipeline(since))
	if err != nil {
		return nil, err
	}
	days := []models.DailyCount{}
	if err := cur.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}
