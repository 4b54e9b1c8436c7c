package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/scoring"
	"iqscalar-service/internal/selection"
)

const maxQuestionsPerRequest = 100

// QuizService serves tests built from the bundled question bank.
type QuizService struct {
	Pool     *selection.PoolManager
	Sessions *TestSessionService
	// PracticeCount is the practice set size used when none is requested.
	PracticeCount int
	now           func() time.Time
}

// NewQuizService wires the pool. sessions may be nil, in which case scored
// tests are never persisted.
func NewQuizService(pool *selection.PoolManager, sessions *TestSessionService) *QuizService {
	return &QuizService{Pool: pool, Sessions: sessions, PracticeCount: selection.DefaultPracticeQuestions, now: time.Now}
}

// ScoreRequest carries answers keyed by question id. QuestionIDs lists every
// question that was served so unanswered ones count as wrong; when empty the
// answered ids are used. TestType defaults to an IQ test; practice sets keep
// their category when saved.
type ScoreRequest struct {
	UserID      string            `json:"userId"`
	Answers     map[string]string `json:"answers"`
	QuestionIDs []string          `json:"questionIds"`
	TimeSpent   int               `json:"timeSpent"`
	TestType    string            `json:"testType"`
	Category    string            `json:"category"`
	Save        bool              `json:"save"`
}

func checkCount(n int) error {
	if n < 0 || n > maxQuestionsPerRequest {
		return apperror.Validation("count must be between 1 and %d", maxQuestionsPerRequest)
	}
	return nil
}

func (s *QuizService) GenerateTest(ctx context.Context, userID string, count int) (*selection.SelectionResult, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	return s.Pool.GenerateTest(ctx, userID, count)
}

// Practice returns count practice questions, optionally from one category or
// spread evenly over all of them.
func (s *QuizService) Practice(category string, count int, balanced bool) ([]models.NormalizedQuestion, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if count == 0 {
		count = s.PracticeCount
	}
	if category == "" && balanced {
		return s.Pool.BalancedPractice(count), nil
	}
	return s.Pool.Practice(category, count), nil
}

func (s *QuizService) Sample(count int) ([]models.NormalizedQuestion, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if count == 0 {
		count = selection.DefaultSampleQuestions
	}
	return s.Pool.Sample(count), nil
}

// ScoreTest grades answers against the bank. With Save set and a user id,
// the result is also stored as a completed test session.
func (s *QuizService) ScoreTest(ctx context.Context, req ScoreRequest) (*models.TestResults, error) {
	ids := req.QuestionIDs
	if len(ids) == 0 {
		for id := range req.Answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	if len(ids) == 0 {
		return nil, apperror.Validation("answers are required")
	}
	testType := req.TestType
	if testType == "" {
		testType = models.TestTypeIQ
	}
	if !models.IsTestType(testType) {
		return nil, apperror.Validation("unknown testType %q", testType)
	}

	bank := s.Pool.Bank()
	questions := make([]models.NormalizedQuestion, 0, len(ids))
	for _, id := range ids {
		q, ok := bank.Find(id)
		if !ok {
			return nil, apperror.Validation("unknown question %q", id)
		}
		questions = append(questions, q)
	}

	results := scoring.Evaluate(questions, req.Answers, s.now())
	results.TestType = testType
	results.IsPractice = testType != models.TestTypeIQ
	if !req.Save || req.UserID == "" || s.Sessions == nil {
		return results, nil
	}

	session := &models.TestSession{
		UserID:    req.UserID,
		SessionID: results.TestID,
		TestType:  testType,
		TimeSpent: req.TimeSpent,
	}
	if results.IsPractice {
		session.Category = req.Category
		if session.Category == "" {
			session.Category = sharedCategory(questions)
		}
	}
	for i, r := range results.Results {
		correct := r.IsCorrect
		answer := strings.ToUpper(strings.TrimSpace(r.UserAnswer))
		if !models.IsAnswerLetter(answer) {
			answer = ""
		}
		session.Questions = append(session.Questions, models.SessionQuestion{
			QuestionID:     r.ID,
			Category:       r.Category,
			UserAnswer:     answer,
			IsCorrect:      &correct,
			QuestionNumber: i + 1,
		})
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	results.SessionID = session.ID.Hex()
	return results, nil
}

func (s *QuizService) Progress(ctx context.Context, userID string) (*models.UserProgress, error) {
	return s.Pool.UserProgress(ctx, userID)
}

func (s *QuizService) ResetProgress(ctx context.Context, userID string) error {
	return s.Pool.ResetProgress(ctx, userID)
}

func (s *QuizService) Statistics() models.BankStatistics {
	return s.Pool.Statistics()
}

// sharedCategory is the category every question belongs to, or "" when they
// are mixed.
func sharedCategory(questions []models.NormalizedQuestion) string {
	if len(questions) == 0 {
		return ""
	}
	category := questions[0].Category
	for _, q := range questions[1:] {
		if q.Category != category {
			return ""
		}
	}
	return category
}
