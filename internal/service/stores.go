package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/event"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
)

// The store interfaces are satisfied by the Mongo repositories.

type QuestionStore interface {
	List(ctx context.Context, f repository.QuestionFilter, page models.Page) ([]models.Question, int64, error)
	Sample(ctx context.Context, f repository.QuestionFilter, size int) ([]models.Question, error)
	Categories(ctx context.Context) ([]string, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
	Count(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id string) (*models.Question, error)
	FindByQuestionID(ctx context.Context, questionID string) (*models.Question, error)
	Create(ctx context.Context, question *models.Question) error
	Save(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
	RecordUsage(ctx context.Context, questionID string, correct bool) error
}

type UserStore interface {
	List(ctx context.Context, search string, page models.Page) ([]models.User, int64, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, update bson.M) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context, activeSince time.Time) (models.UserCounts, error)
	DailyRegistrations(ctx context.Context, since time.Time) ([]models.DailyCount, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.TestSession) error
	List(ctx context.Context, f repository.SessionFilter, page models.Page, sort repository.SessionSort) ([]models.TestSession, int64, error)
	FindByID(ctx context.Context, id string) (*models.TestSession, error)
	Save(ctx context.Context, session *models.TestSession) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type AnalyticsStore interface {
	Overview(ctx context.Context, f repository.SessionFilter) (models.SessionOverview, error)
	CategoryPerformance(ctx context.Context, f repository.SessionFilter) ([]models.CategoryPerformance, error)
	TestTypeDistribution(ctx context.Context, f repository.SessionFilter) ([]models.TestTypeCount, error)
	BestScores(ctx context.Context, f repository.SessionFilter) ([]models.BestScore, error)
	Leaderboard(ctx context.Context, f repository.SessionFilter, limit int) ([]models.LeaderboardEntry, error)
	BestScore(ctx context.Context, f repository.SessionFilter) (int, bool, error)
	CountUsers(ctx context.Context, f repository.SessionFilter, above *int) (int, error)
	DailyTrends(ctx context.Context, f repository.SessionFilter) ([]models.DailyTrend, error)
	CategoryTrends(ctx context.Context, f repository.SessionFilter) ([]models.CategoryTrend, error)
	QuestionStats(ctx context.Context, limit int) (models.QuestionStats, error)
	ProfileStatistics(ctx context.Context, f repository.SessionFilter) (models.ProfileStatistics, error)
	WeakCategories(ctx context.Context, f repository.SessionFilter, limit int) ([]models.WeakCategory, error)
	RecentProgress(ctx context.Context, f repository.SessionFilter, limit int) ([]models.ProgressPoint, error)
}

type AuthHistoryStore interface {
	Log(ctx context.Context, entry *models.UserAuthHistory) error
	Find(ctx context.Context, f repository.HistoryFilter, limit int) ([]models.UserAuthHistory, error)
	Count(ctx context.Context, f repository.HistoryFilter) (int64, error)
	DailyLogins(ctx context.Context, userID string, since time.Time) ([]models.DailyCount, error)
}

type UserSessionStore interface {
	Create(ctx context.Context, session *models.UserSession) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error)
	FindActiveBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error)
	Save(ctx context.Context, session *models.UserSession) error
	List(ctx context.Context, userID string, active *bool) ([]models.UserSession, error)
	CountActive(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string, since time.Time) (models.SessionStats, error)
	ExpireInactive(ctx context.Context, cutoff, now time.Time) (int64, error)
}

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodSince returns the start of a reporting period ending at now. Unknown
// periods, including "all", mean no lower bound.
func PeriodSince(period string, now time.Time) *time.Time {
	var since time.Time
	switch period {
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, -1, 0)
	case PeriodYear:
		since = now.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &since
}

// leaderboardSince only narrows by week or month; any other period ranks all time.
func leaderboardSince(period string, now time.Time) *time.Time {
	if period == PeriodWeek || period == PeriodMonth {
		return PeriodSince(period, now)
	}
	return nil
}

func daysAgo(days int, now time.Time) time.Time {
	return now.AddDate(0, 0, -days)
}

// applyPatch overlays the JSON fields of patch onto dst.
func applyPatch(dst interface{}, patch map[string]interface{}) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return apperror.Validation("invalid update: %v", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperror.Validation("invalid update: %v", err)
	}
	return nil
}

func publish(p event.Publisher, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(eventType, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
