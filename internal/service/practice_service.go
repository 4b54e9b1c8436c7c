package service

import (
	"context"
	"time"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
)

const (
	recommendedCategories = 3
	questionsPerWeakArea  = 5
	progressPoints        = 10
)

type PracticeService struct {
	Questions QuestionStore
	Analytics AnalyticsStore
	Sessions  *TestSessionService
	now       func() time.Time
}

func NewPracticeService(questions QuestionStore, analytics AnalyticsStore, sessions *TestSessionService) *PracticeService {
	return &PracticeService{Questions: questions, Analytics: analytics, Sessions: sessions, now: time.Now}
}

type PracticeQuery struct {
	Category   string
	Difficulty int
	Limit      int
	Random     bool
}

// PracticeQuestions returns practice questions, randomly sampled or newest first.
func (s *PracticeService) PracticeQuestions(ctx context.Context, q PracticeQuery) ([]models.Question, error) {
	f := repository.QuestionFilter{Category: q.Category, Difficulty: q.Difficulty, ActiveOnly: true}
	if q.Random {
		return s.Questions.Sample(ctx, f, q.Limit)
	}
	questions, _, err := s.Questions.List(ctx, f, models.Page{Number: 1, Limit: q.Limit})
	return questions, err
}

// CreateSession stores a finished practice session. Learning practice keeps
// its own type; anything else is recorded as plain practice.
func (s *PracticeService) CreateSession(ctx context.Context, session *models.TestSession) error {
	if session.TestType != models.TestTypeLearningPractice {
		session.TestType = models.TestTypePractice
	}
	return s.Sessions.CreateSession(ctx, session)
}

func (s *PracticeService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	return s.Questions.CategoryCounts(ctx)
}

// History pages through the user's practice sessions, newest first.
func (s *PracticeService) History(ctx context.Context, userID, category string, page models.Page) ([]models.TestSession, models.Pagination, error) {
	f := practiceFilter(userID)
	f.Category = category
	return s.Sessions.ListSessions(ctx, f, page, repository.SessionSort{Field: "completedAt", Desc: true})
}

func (s *PracticeService) UserAnalytics(ctx context.Context, userID string) (*models.PracticeAnalytics, error) {
	f := practiceFilter(userID)
	overall, err := s.Analytics.Overview(ctx, f)
	if err != nil {
		return nil, err
	}
	perf, err := s.Analytics.CategoryPerformance(ctx, f)
	if err != nil {
		return nil, err
	}
	recent, err := s.Analytics.RecentProgress(ctx, f, progressPoints)
	if err != nil {
		return nil, err
	}
	// oldest first for charting
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return &models.PracticeAnalytics{Overall: overall, CategoryPerformance: perf, ProgressOverTime: recent}, nil
}

// Recommendations pairs the user's weakest categories with fresh questions.
func (s *PracticeService) Recommendations(ctx context.Context, userID string) (*models.PracticeRecommendations, error) {
	weak, err := s.Analytics.WeakCategories(ctx, practiceFilter(userID), recommendedCategories)
	if err != nil {
		return nil, err
	}

	recs := make([]models.Recommendation, 0, len(weak))
	for _, w := range weak {
		questions, err := s.Questions.Sample(ctx, repository.QuestionFilter{Category: w.Category, ActiveOnly: true}, questionsPerWeakArea)
		if err != nil {
			return nil, err
		}
		recs = append(recs, models.Recommendation{
			Category:        w.Category,
			AverageAccuracy: round2(w.AverageAccuracy),
			Sessions:        w.Sessions,
			Questions:       questions,
		})
	}
	return &models.PracticeRecommendations{WeakCategories: weak, Recommendations: recs}, nil
}

func practiceFilter(userID string) repository.SessionFilter {
	return repository.SessionFilter{UserID: userID, TestType: models.TestTypePractice, Status: models.StatusCompleted}
}
