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

const questionResource = "Question"

// QuestionFilter narrows question listings. Zero values match everything.
type QuestionFilter struct {
	Category   string
	Difficulty int
	Search     string
	ActiveOnly bool
}

func (f QuestionFilter) BSON() bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Difficulty > 0 {
		filter["difficulty"] = f.Difficulty
	}
	if f.ActiveOnly {
		filter["isActive"] = true
	}
	if f.Search != "" {
		re := caseInsensitive(f.Search)
		filter["$or"] = bson.A{
			bson.M{"questionText": re},
			bson.M{"explanation": re},
			bson.M{"tags": bson.M{"$in": bson.A{re}}},
		}
	}
	return filter
}

type QuestionRepository struct {
	Col *mongo.Collection
}

func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{Col: db.Collection(QuestionsCollection)}
}

func (r *QuestionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "questionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "isActive", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create question indexes: %w", err)
	}
	return nil
}

// List returns one page of matching questions, newest first, and the total match count.
func (r *QuestionRepository) List(ctx context.Context, f QuestionFilter, page models.Page) ([]models.Question, int64, error) {
	filter := f.BSON()
	cur, err := r.Col.Find(ctx, filter, pageOptions(page, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	questions := []models.Question{}
	for cur.Next(ctx) {
		var q models.Question
		if err := cur.Decode(&q); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}

	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func SamplePipeline(f QuestionFilter, size int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}
}

// Sample draws up to size random matching questions.
func (r *QuestionRepository) Sample(ctx context.Context, f QuestionFilter, size int) ([]models.Question, error) {
	cur, err := r.Col.Aggregate(ctx, SamplePipeline(f, size))
	if err != nil {
		return nil, err
	}
	questions := []models.Question{}
	if err := cur.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepository) Categories(ctx context.Context) ([]string, error) {
	values, err := r.Col.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func CategoryCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           "$category",
			"count":         bson.M{"$sum": 1},
			"avgDifficulty": bson.M{"$avg": "$difficulty"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"category":      "$_id",
			"count":         1,
			"avgDifficulty": round1("$avgDifficulty"),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "category", Value: 1}}}},
	}
}

// CategoryCounts returns question count and mean difficulty per category, largest first.
func (r *QuestionRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	cur, err := r.Col.Aggregate(ctx, CategoryCountsPipeline())
	if err != nil {
		return nil, err
	}
	counts := []models.CategoryCount{}
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *QuestionRepository) Count(ctx context.Context) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{})
}

func (r *QuestionRepository) FindByID(ctx context.Context, id string) (*models.Question, error) {
	oid, err := parseObjectID(id, questionResource)
	if err != nil {
		return nil, err
	}
	var question models.Question
	if err := r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&question); err != nil {
		return nil, translate(err, questionResource)
	}
	return &question, nil
}

func (r *QuestionRepository) FindByQuestionID(ctx context.Context, questionID string) (*models.Question, error) {
	var question models.Question
	if err := r.Col.FindOne(ctx, bson.M{"questionId": questionID}).Decode(&question); err != nil {
		return nil, translate(err, questionResource)
	}
	return &question, nil
}

func (r *QuestionRepository) Create(ctx context.Context, question *models.Question) error {
	res, err := r.Col.InsertOne(ctx, question)
	if err != nil {
		return translate(err, questionResource)
	}
	question.ID = objectIDOf(res.InsertedID, question.ID)
	return nil
}

// Save replaces the stored document with question.
func (r *QuestionRepository) Save(ctx context.Context, question *models.Question) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	if err != nil {
		return translate(err, questionResource)
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, questionResource)
	}
	return nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, questionResource)
	if err != nil {
		return err
	}
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, questionResource)
	}
	return nil
}

// RecordUsagePipeline is the update pipeline behind RecordUsage. The previous
// number of correct answers is rebuilt from the stored rate and usage count.
func RecordUsagePipeline(correct bool, now time.Time) mongo.Pipeline {
	inc := 0
	if correct {
		inc = 1
	}
	usage := bson.M{"$ifNull": bson.A{"$usageCount", 0}}
	rate := bson.M{"$ifNull": bson.A{"$successRate", 0}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"_prevCorrect": roundHalfUp(bson.M{"$divide": bson.A{bson.M{"$multiply": bson.A{rate, usage}}, 100}}),
			"usageCount":   bson.M{"$add": bson.A{usage, 1}},
		}}},
		{{Key: "$set", Value: bson.M{
			"successRate": roundHalfUp(bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{bson.M{"$add": bson.A{"$_prevCorrect", inc}}, "$usageCount"}},
				100,
			}}),
			"updatedAt": now,
		}}},
		{{Key: "$unset", Value: "_prevCorrect"}},
	}
}

// RecordUsage updates usage statistics in a single atomic update. Questions
// that are not in the collection are ignored.
func (r *QuestionRepository) RecordUsage(ctx context.Context, questionID string, correct bool) error {
	_, err := r.Col.UpdateOne(ctx, bson.M{"questionId": questionID}, RecordUsagePipeline(correct, time.Now()))
	return err
}

// ReplaceAll empties the collection and bulk inserts questions.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, questions []models.Question) (int, error) {
	if _, err := r.Col.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("failed to clear questions: %w", err)
	}
	if len(questions) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(questions))
	for i := range questions {
		docs[i] = questions[i]
	}
	res, err := r.Col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to insert questions: %w", err)
	}
	return len(res.InsertedIDs), nil
}
