package repository

import (
	"context"
	"time"

	"iqscalar-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MixedCategory labels sessions that span several categories.
const MixedCategory = "Mixed"

var sessionCategory = bson.M{"$ifNull": bson.A{"$category", MixedCategory}}

// AnalyticsRepository runs the reporting aggregations over test sessions.
type AnalyticsRepository struct {
	Sessions *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{Sessions: db.Collection(TestSessionsCollection)}
}

func OverviewPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":                    nil,
			"totalSessions":          bson.M{"$sum": 1},
			"totalQuestions":         bson.M{"$sum": "$totalQuestions"},
			"totalCorrect":           bson.M{"$sum": "$correctAnswers"},
			"totalTimeSpent":         bson.M{"$sum": "$timeSpent"},
			"averageScore":           bson.M{"$avg": "$score"},
			"averageAccuracy":        bson.M{"$avg": "$accuracy"},
			"averageTimePerQuestion": bson.M{"$avg": "$averageTimePerQuestion"},
			"bestScore":              bson.M{"$max": "$score"},
			"worstScore":             bson.M{"$min": "$score"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":                    0,
			"totalSessions":          1,
			"totalQuestions":         1,
			"totalCorrect":           1,
			"totalTimeSpent":         1,
			"averageScore":           round2("$averageScore"),
			"averageAccuracy":        round2("$averageAccuracy"),
			"averageTimePerQuestion": round2("$averageTimePerQuestion"),
			"bestScore":              1,
			"worstScore":             1,
			"overallAccuracy":        percentOf("$totalCorrect", "$totalQuestions"),
		}}},
	}
}

// Overview totals the matching sessions. No sessions yields a zero overview.
func (r *AnalyticsRepository) Overview(ctx context.Context, f SessionFilter) (models.SessionOverview, error) {
	var rows []models.SessionOverview
	if err := r.aggregate(ctx, OverviewPipeline(f), &rows); err != nil {
		return models.SessionOverview{}, err
	}
	if len(rows) == 0 {
		return models.SessionOverview{}, nil
	}
	return rows[0], nil
}

func CategoryPerformancePipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":             sessionCategory,
			"sessions":        bson.M{"$sum": 1},
			"averageScore":    bson.M{"$avg": "$score"},
			"averageAccuracy": bson.M{"$avg": "$accuracy"},
			"totalQuestions":  bson.M{"$sum": "$totalQuestions"},
			"totalCorrect":    bson.M{"$sum": "$correctAnswers"},
			"totalTimeSpent":  bson.M{"$sum": "$timeSpent"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":              0,
			"category":         "$_id",
			"sessions":         1,
			"averageScore":     round2("$averageScore"),
			"averageAccuracy":  round2("$averageAccuracy"),
			"totalQuestions":   1,
			"totalCorrect":     1,
			"totalTimeSpent":   1,
			"categoryAccuracy": percentOf("$totalCorrect", "$totalQuestions"),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "category", Value: 1}}}},
	}
}

func (r *AnalyticsRepository) CategoryPerformance(ctx context.Context, f SessionFilter) ([]models.CategoryPerformance, error) {
	rows := []models.CategoryPerformance{}
	if err := r.aggregate(ctx, CategoryPerformancePipeline(f), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func TestTypeDistributionPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$testType",
			"count":        bson.M{"$sum": 1},
			"averageScore": bson.M{"$avg": "$score"},
		}}},
		{{Key: "$set", Value: bson.M{"averageScore": round2("$averageScore")}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
}

func (r *AnalyticsRepository) TestTypeDistribution(ctx context.Context, f SessionFilter) ([]models.TestTypeCount, error) {
	rows := []models.TestTypeCount{}
	if err := r.aggregate(ctx, TestTypeDistributionPipeline(f), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func BestScoresPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":          sessionCategory,
			"bestScore":    bson.M{"$max": "$score"},
			"averageScore": bson.M{"$avg": "$score"},
			"totalTests":   bson.M{"$sum": 1},
		}}},
		{{Key: "$set", Value: bson.M{"averageScore": round2("$averageScore")}}},
		{{Key: "$sort", Value: bson.D{{Key: "bestScore", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

// BestScores returns the best and average score per category.
func (r *AnalyticsRepository) BestScores(ctx context.Context, f SessionFilter) ([]models.BestScore, error) {
	rows := []models.BestScore{}
	if err := r.aggregate(ctx, BestScoresPipeline(f), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LeaderboardPipeline ranks users by best score. User ids are stored as hex
// strings, so they are converted before joining users; ids that are not
// ObjectIDs join nothing.
func LeaderboardPipeline(f SessionFilter, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$userId",
			"bestScore":       bson.M{"$max": "$score"},
			"averageAccuracy": bson.M{"$avg": "$accuracy"},
			"totalTests":      bson.M{"$sum": 1},
			"totalQuestions":  bson.M{"$sum": "$totalQuestions"},
			"totalCorrect":    bson.M{"$sum": "$correctAnswers"},
			"totalTimeSpent":  bson.M{"$sum": "$timeSpent"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bestScore", Value: -1}, {Key: "averageAccuracy", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from": UsersCollection,
			"let": bson.M{"uid": bson.M{"$convert": bson.M{
				"input":   "$_id",
				"to":      "objectId",
				"onError": nil,
				"onNull":  nil,
			}}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$uid"}}}},
				bson.M{"$project": bson.M{"fullName": 1, "email": 1}},
			},
			"as": "userInfo",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"userId":          "$_id",
			"bestScore":       1,
			"averageAccuracy": round2("$averageAccuracy"),
			"totalTests":      1,
			"totalQuestions":  1,
			"totalCorrect":    1,
			"totalTimeSpent":  1,
			"fullName":        bson.M{"$arrayElemAt": bson.A{"$userInfo.fullName", 0}},
			"email":           bson.M{"$arrayElemAt": bson.A{"$userInfo.email", 0}},
		}}},
	}
}

func (r *AnalyticsRepository) Leaderboard(ctx context.Context, f SessionFilter, limit int) ([]models.LeaderboardEntry, error) {
	rows := []models.LeaderboardEntry{}
	if err := r.aggregate(ctx, LeaderboardPipeline(f, limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// BestScore returns the user's highest score among matching sessions; found
// is false when the user has none.
func (r *AnalyticsRepository) BestScore(ctx context.Context, f SessionFilter) (score int, found bool, err error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "score", Value: -1}}).
		SetProjection(bson.M{"score": 1})

	var row struct {
		Score int `bson:"score"`
	}
	err = r.Sessions.FindOne(ctx, f.BSON(), opts).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.Score, true, nil
}

// CountUsers counts distinct users with a matching session. When above is
// non-nil only sessions scoring strictly higher count.
func (r *AnalyticsRepository) CountUsers(ctx context.Context, f SessionFilter, above *int) (int, error) {
	filter := f.BSON()
	if above != nil {
		filter["score"] = bson.M{"$gt": *above}
	}
	ids, err := r.Sessions.Distinct(ctx, "userId", filter)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func DailyTrendsPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":             dayOf("$completedAt"),
			"sessions":        bson.M{"$sum": 1},
			"averageScore":    bson.M{"$avg": "$score"},
			"averageAccuracy": bson.M{"$avg": "$accuracy"},
			"users":           bson.M{"$addToSet": "$userId"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"date":            "$_id",
			"sessions":        1,
			"averageScore":    round2("$averageScore"),
			"averageAccuracy": round2("$averageAccuracy"),
			"uniqueUsers":     bson.M{"$size": "$users"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}}}},
	}
}

func (r *AnalyticsRepository) DailyTrends(ctx context.Context, f SessionFilter) ([]models.DailyTrend, error) {
	rows := []models.DailyTrend{}
	if err := r.aggregate(ctx, DailyTrendsPipeline(f), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func CategoryTrendsPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"category": sessionCategory,
				"date":     dayOf("$completedAt"),
			},
			"sessions":     bson.M{"$sum": 1},
			"averageScore": bson.M{"$avg": "$score"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"category":     "$_id.category",
			"date":         "$_id.date",
			"sessions":     1,
			"averageScore": round2("$averageScore"),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "category", Value: 1}}}},
	}
}

func (r *AnalyticsRepository) CategoryTrends(ctx context.Context, f SessionFilter) ([]models.CategoryTrend, error) {
	rows := []models.CategoryTrend{}
	if err := r.aggregate(ctx, CategoryTrendsPipeline(f), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// QuestionStatsPipeline counts answered attempts per question across all
// sessions and joins the question collection for text and difficulty.
func QuestionStatsPipeline(sort bson.D, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$questions"}},
		{{Key: "$match", Value: bson.M{"questions.isCorrect": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$questions.questionId",
			"category":      bson.M{"$first": "$questions.category"},
			"totalAttempts": bson.M{"$sum": 1},
			"correctAttempts": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$questions.isCorrect", true}}, 1, 0,
			}}},
		}}},
		{{Key: "$set", Value: bson.M{"successRate": percentOf("$correctAttempts", "$totalAttempts")}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         QuestionsCollection,
			"localField":   "_id",
			"foreignField": "questionId",
			"as":           "question",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             0,
			"questionId":      "$_id",
			"questionText":    bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$question.questionText", 0}}, ""}},
			"category":        bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$question.category", 0}}, "$category"}},
			"difficulty":      bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$question.difficulty", 0}}, 0}},
			"totalAttempts":   1,
			"correctAttempts": 1,
			"successRate":     1,
		}}},
	}
}

func (r *AnalyticsRepository) QuestionStats(ctx context.Context, limit int) (models.QuestionStats, error) {
	stats := models.QuestionStats{
		DifficultQuestions: []models.QuestionAttemptStats{},
		PopularQuestions:   []models.QuestionAttemptStats{},
	}
	hardest := bson.D{{Key: "successRate", Value: 1}, {Key: "totalAttempts", Value: -1}, {Key: "_id", Value: 1}}
	if err := r.aggregate(ctx, QuestionStatsPipeline(hardest, limit), &stats.DifficultQuestions); err != nil {
		return stats, err
	}
	popular := bson.D{{Key: "totalAttempts", Value: -1}, {Key: "_id", Value: 1}}
	if err := r.aggregate(ctx, QuestionStatsPipeline(popular, limit), &stats.PopularQuestions); err != nil {
		return stats, err
	}
	return stats, nil
}

func ProfileStatisticsPipeline(f SessionFilter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":             nil,
			"totalTests":      bson.M{"$sum": 1},
			"totalQuestions":  bson.M{"$sum": "$totalQuestions"},
			"totalCorrect":    bson.M{"$sum": "$correctAnswers"},
			"averageScore":    bson.M{"$avg": "$score"},
			"averageAccuracy": bson.M{"$avg": "$accuracy"},
			"bestScore":       bson.M{"$max": "$score"},
			"totalTimeSpent":  bson.M{"$sum": "$timeSpent"},
		}}},
		{{Key: "$set", Value: bson.M{
			"averageScore":    round2("$averageScore"),
			"averageAccuracy": round2("$averageAccuracy"),
		}}},
	}
}

func (r *AnalyticsRepository) ProfileStatistics(ctx context.Context, f SessionFilter) (models.ProfileStatistics, error) {
	var rows []models.ProfileStatistics
	if err := r.aggregate(ctx, ProfileStatisticsPipeline(f), &rows); err != nil {
		return models.ProfileStatistics{}, err
	}
	if len(rows) == 0 {
		return models.ProfileStatistics{}, nil
	}
	return rows[0], nil
}

func WeakCategoriesPipeline(f SessionFilter, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: f.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":             sessionCategory,
			"averageAccuracy": bson.M{"$avg": "$accuracy"},
			"sessions":        bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageAccuracy", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$set", Value: bson.M{"averageAccuracy": round2("$averageAccuracy")}}},
	}
}

// WeakCategories returns the categories with the lowest average accuracy.
func (r *AnalyticsRepository) WeakCategories(ctx context.Context, f SessionFilter, limit int) ([]models.WeakCategory, error) {
	rows := []models.WeakCategory{}
	if err := r.aggregate(ctx, WeakCategoriesPipeline(f, limit), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentProgress returns the latest sessions' scores, newest first.
func (r *AnalyticsRepository) RecentProgress(ctx context.Context, f SessionFilter, limit int) ([]models.ProgressPoint, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"score": 1, "accuracy": 1, "completedAt": 1, "category": 1})

	cur, err := r.Sessions.Find(ctx, f.BSON(), opts)
	if err != nil {
		return nil, err
	}
	points := []models.ProgressPoint{}
	if err := cur.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (r *AnalyticsRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cur, err := r.Sessions.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// SessionsSince is a convenience filter for completed sessions in a window.
func SessionsSince(since *time.Time) SessionFilter {
	return SessionFilter{Status: models.StatusCompleted, Since: since}
}
