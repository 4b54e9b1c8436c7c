package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/dataset"
	"iqscalar-service/internal/event"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
	"iqscalar-service/internal/scoring"

	"github.com/google/uuid"
)

type TestSessionService struct {
	Repo      SessionStore
	Analytics AnalyticsStore
	Questions QuestionStore
	Bank      *dataset.Bank
	Events    event.Publisher
	now       func() time.Time
}

func NewTestSessionService(
	repo SessionStore,
	analytics AnalyticsStore,
	questions QuestionStore,
	bank *dataset.Bank,
	events event.Publisher,
) *TestSessionService {
	return &TestSessionService{
		Repo:      repo,
		Analytics: analytics,
		Questions: questions,
		Bank:      bank,
		Events:    events,
		now:       time.Now,
	}
}

// StartRequest opens an in-progress session over already chosen questions.
type StartRequest struct {
	UserID    string                   `json:"userId"`
	TestType  string                   `json:"testType"`
	Category  string                   `json:"category"`
	TimeLimit int                      `json:"timeLimit"`
	Questions []models.SessionQuestion `json:"questions"`
}

type AnswerRequest struct {
	QuestionNumber int    `json:"questionNumber"`
	Answer         string `json:"answer"`
	TimeSpent      int    `json:"timeSpent"`
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CreateSession stores a finished session posted by a client. Answers to
// known questions are graded here; a client correctness flag only stands for
// questions neither the bank nor the store knows. Score, accuracy and timings
// are always derived.
func (s *TestSessionService) CreateSession(ctx context.Context, session *models.TestSession) error {
	now := s.now()
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}

	if len(session.Questions) > 0 {
		correct := 0
		for i := range session.Questions {
			q := &session.Questions[i]
			if q.QuestionNumber == 0 {
				q.QuestionNumber = i + 1
			}
			q.UserAnswer = strings.ToUpper(strings.TrimSpace(q.UserAnswer))
			if q.Answered() {
				ok, err := s.isCorrect(ctx, q.QuestionID, q.UserAnswer)
				switch {
				case err == nil:
					q.IsCorrect = &ok
				case !errors.Is(err, apperror.ErrNotFound):
					return err
				}
			}
			if q.IsCorrect != nil && *q.IsCorrect {
				correct++
			}
		}
		session.TotalQuestions = len(session.Questions)
		session.CorrectAnswers = correct
	}

	session.Score = scoring.ScoreFromCounts(session.CorrectAnswers, session.TotalQuestions)
	if session.TotalQuestions > 0 {
		session.Accuracy = round2(float64(session.CorrectAnswers) / float64(session.TotalQuestions) * 100)
		session.AverageTimePerQuestion = round2(float64(session.TimeSpent) / float64(session.TotalQuestions))
	}
	session.Status = models.StatusCompleted
	session.CompletedAt = &now
	session.ApplyDefaults(now)

	if err := session.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return err
	}

	s.recordUsage(ctx, session)
	if session.TestType == models.TestTypeIQ {
		publish(s.Events, event.TestSessionCompleted, sessionPayload(session))
	} else {
		publish(s.Events, event.PracticeSessionCreated, sessionPayload(session))
	}
	return nil
}

func (s *TestSessionService) ListSessions(ctx context.Context, f repository.SessionFilter, page models.Page, sort repository.SessionSort) ([]models.TestSession, models.Pagination, error) {
	sessions, total, err := s.Repo.List(ctx, f, page, sort)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return sessions, models.NewPagination(page, total), nil
}

func (s *TestSessionService) GetSession(ctx context.Context, id string) (*models.TestSession, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *TestSessionService) DeleteSession(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *TestSessionService) StartSession(ctx context.Context, req StartRequest) (*models.TestSession, error) {
	if len(req.Questions) == 0 {
		return nil, apperror.Validation("at least one question is required")
	}
	testType := req.TestType
	if testType == "" {
		testType = models.TestTypeIQ
	}

	session := &models.TestSession{
		UserID:    req.UserID,
		SessionID: uuid.NewString(),
		TestType:  testType,
		Category:  req.Category,
		TimeLimit: req.TimeLimit,
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q.QuestionID) == "" {
			return nil, apperror.Validation("question %d has no questionId", i+1)
		}
		session.AddQuestion(q.QuestionID, q.Category, i+1)
	}
	session.ApplyDefaults(s.now())

	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitAnswer grades one answer against the question bank or the stored
// question and records it on the session.
func (s *TestSessionService) SubmitAnswer(ctx context.Context, id string, req AnswerRequest) (*models.TestSession, error) {
	session, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questionID := ""
	for _, q := range session.Questions {
		if q.QuestionNumber == req.QuestionNumber {
			questionID = q.QuestionID
			break
		}
	}
	if questionID == "" {
		return nil, apperror.NotFound("Question")
	}

	answer := strings.ToUpper(strings.TrimSpace(req.Answer))
	correct, err := s.isCorrect(ctx, questionID, answer)
	if err != nil {
		return nil, err
	}
	if err := session.AnswerQuestion(req.QuestionNumber, answer, correct, req.TimeSpent); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()

	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *TestSessionService) CompleteSession(ctx context.Context, id string) (*models.TestSession, error) {
	session, err := s.inProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Complete(s.now())
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.recordUsage(ctx, session)
	publish(s.Events, event.TestSessionCompleted, sessionPayload(session))
	return session, nil
}

func (s *TestSessionService) AbandonSession(ctx context.Context, id string) (*models.TestSession, error) {
	session, err := s.inProgress(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Abandon(s.now())
	if err := s.Repo.Save(ctx, session); err != nil {
		return nil, err
	}

	publish(s.Events, event.TestSessionAbandoned, sessionPayload(session))
	return session, nil
}

func (s *TestSessionService) Results(ctx context.Context, id string) (*models.SessionResults, error) {
	session, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	results := session.Results()
	return &results, nil
}

// UserAnalytics summarises a user's completed sessions within period.
func (s *TestSessionService) UserAnalytics(ctx context.Context, userID, period string) (*models.UserAnalytics, error) {
	f := repository.SessionFilter{
		UserID: userID,
		Status: models.StatusCompleted,
		Since:  PeriodSince(period, s.now()),
	}
	overview, err := s.Analytics.Overview(ctx, f)
	if err != nil {
		return nil, err
	}
	perf, err := s.Analytics.CategoryPerformance(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.UserAnalytics{Overview: overview, CategoryPerformance: perf}, nil
}

func (s *TestSessionService) BestScores(ctx context.Context, userID string) ([]models.BestScore, error) {
	return s.Analytics.BestScores(ctx, repository.SessionFilter{UserID: userID, Status: models.StatusCompleted})
}

func (s *TestSessionService) inProgress(ctx context.Context, id string) (*models.TestSession, error) {
	session, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusInProgress {
		return nil, apperror.Validation("session is %s", session.Status)
	}
	return session, nil
}

// isCorrect checks a letter against the bundled bank first, then the
// question collection.
func (s *TestSessionService) isCorrect(ctx context.Context, questionID, letter string) (bool, error) {
	if s.Bank != nil {
		if q, ok := s.Bank.Find(questionID); ok {
			return q.CorrectLetter() == letter, nil
		}
	}
	if s.Questions == nil {
		return false, apperror.NotFound("Question")
	}
	q, err := s.Questions.FindByQuestionID(ctx, questionID)
	if err != nil {
		return false, err
	}
	return q.CorrectAnswer == letter, nil
}

func (s *TestSessionService) recordUsage(ctx context.Context, session *models.TestSession) {
	if s.Questions == nil {
		return
	}
	for _, q := range session.Questions {
		if q.IsCorrect == nil {
			continue
		}
		if err := s.Questions.RecordUsage(ctx, q.QuestionID, *q.IsCorrect); err != nil {
			log.Printf("Failed to record usage for question %s: %v", q.QuestionID, err)
		}
	}
}

func sessionPayload(s *models.TestSession) map[string]interface{} {
	return map[string]interface{}{
		"sessionId":      s.SessionID,
		"userId":         s.UserID,
		"testType":       s.TestType,
		"category":       s.Category,
		"score":          s.Score,
		"correctAnswers": s.CorrectAnswers,
		"totalQuestions": s.TotalQuestions,
		"status":         s.Status,
	}
}
