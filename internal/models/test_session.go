package models

import (
	"math"
	"time"

	"iqscalar-service/internal/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TestTypeIQ               = "iq_test"
	TestTypePractice         = "practice"
	TestTypeLearningPractice = "learning_practice"

	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"

	DefaultTimeLimitMinutes = 30
)

func IsTestType(t string) bool {
	return t == TestTypeIQ || t == TestTypePractice || t == TestTypeLearningPractice
}

// SessionQuestion is one slot of a test. UserAnswer is empty and IsCorrect
// nil until the question has been answered.
type SessionQuestion struct {
	QuestionID     string `bson:"questionId" json:"questionId"`
	Category       string `bson:"category,omitempty" json:"category,omitempty"`
	UserAnswer     string `bson:"userAnswer,omitempty" json:"userAnswer,omitempty"`
	IsCorrect      *bool  `bson:"isCorrect" json:"isCorrect"`
	TimeSpent      int    `bson:"timeSpent" json:"timeSpent"`
	QuestionNumber int    `bson:"questionNumber" json:"questionNumber"`
}

func (q SessionQuestion) Answered() bool {
	return q.UserAnswer != ""
}

type TestSession struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID                 string             `bson:"userId" json:"userId"`
	SessionID              string             `bson:"sessionId" json:"sessionId"`
	TestType               string             `bson:"testType" json:"testType"`
	Category               string             `bson:"category,omitempty" json:"category,omitempty"`
	Questions              []SessionQuestion  `bson:"questions" json:"questions"`
	TotalQuestions         int                `bson:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers         int                `bson:"correctAnswers" json:"correctAnswers"`
	Score                  int                `bson:"score" json:"score"`
	Accuracy               float64            `bson:"accuracy" json:"accuracy"`
	TimeLimit              int                `bson:"timeLimit" json:"timeLimit"`
	TimeSpent              int                `bson:"timeSpent" json:"timeSpent"`
	AverageTimePerQuestion float64            `bson:"averageTimePerQuestion" json:"averageTimePerQuestion"`
	StartedAt              time.Time          `bson:"startedAt" json:"startedAt"`
	CompletedAt            *time.Time         `bson:"completedAt" json:"completedAt"`
	Status                 string             `bson:"status" json:"status"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CategoryScore struct {
	Correct    int `bson:"correct" json:"correct"`
	Total      int `bson:"total" json:"total"`
	Percentage int `bson:"percentage" json:"percentage"`
}

type SessionResults struct {
	SessionID            string                   `json:"sessionId"`
	TestType             string                   `json:"testType"`
	Category             string                   `json:"category,omitempty"`
	TotalQuestions       int                      `json:"totalQuestions"`
	CorrectAnswers       int                      `json:"correctAnswers"`
	Score                int                      `json:"score"`
	TimeSpent            int                      `json:"timeSpent"`
	TimeLimit            int                      `json:"timeLimit"`
	StartedAt            time.Time                `json:"startedAt"`
	CompletedAt          *time.Time               `json:"completedAt"`
	Status               string                   `json:"status"`
	CategoryPerformance  map[string]CategoryScore `json:"categoryPerformance"`
	CompletionPercentage int                      `json:"completionPercentage"`
}

// Percent returns round(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func (s *TestSession) ApplyDefaults(now time.Time) {
	if s.TimeLimit == 0 {
		s.TimeLimit = DefaultTimeLimitMinutes
	}
	if s.Status == "" {
		s.Status = StatusInProgress
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}
	if s.TotalQuestions == 0 {
		s.TotalQuestions = len(s.Questions)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

func (s *TestSession) Validate() error {
	switch {
	case s.UserID == "":
		return apperror.Validation("userId is required")
	case s.SessionID == "":
		return apperror.Validation("sessionId is required")
	case !IsTestType(s.TestType):
		return apperror.Validation("testType must be iq_test, practice or learning_practice")
	case s.TotalQuestions < 1:
		return apperror.Validation("totalQuestions must be at least 1")
	case s.CorrectAnswers < 0 || s.CorrectAnswers > s.TotalQuestions:
		return apperror.Validation("correctAnswers must be between 0 and totalQuestions")
	case s.Score < 0 || s.Score > 100:
		return apperror.Validation("score must be between 0 and 100")
	case s.TimeLimit < 1:
		return apperror.Validation("timeLimit must be at least 1 minute")
	case s.TimeSpent < 0:
		return apperror.Validation("timeSpent must not be negative")
	}
	switch s.Status {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
	default:
		return apperror.Validation("status must be in_progress, completed or abandoned")
	}
	for _, q := range s.Questions {
		if q.UserAnswer != "" && !IsAnswerLetter(q.UserAnswer) {
			return apperror.Validation("answer for question %d must be one of A, B, C, D, E", q.QuestionNumber)
		}
	}
	return nil
}

func (s *TestSession) CompletionPercentage() int {
	answered := 0
	for _, q := range s.Questions {
		if q.Answered() {
			answered++
		}
	}
	return Percent(answered, s.TotalQuestions)
}

// TimeRemaining is in seconds; a completed session has none left.
func (s *TestSession) TimeRemaining() int {
	if s.Status == StatusCompleted {
		return 0
	}
	remaining := s.TimeLimit*60 - s.TimeSpent
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *TestSession) AddQuestion(questionID, category string, number int) {
	s.Questions = append(s.Questions, SessionQuestion{
		QuestionID:     questionID,
		Category:       category,
		QuestionNumber: number,
	})
}

// AnswerQuestion records an answer for the question with the given number.
// Answering again replaces the earlier answer and its time.
func (s *TestSession) AnswerQuestion(number int, answer string, correct bool, seconds int) error {
	if s.Status != StatusInProgress {
		return apperror.Validation("session is %s", s.Status)
	}
	if !IsAnswerLetter(answer) {
		return apperror.Validation("answer must be one of A, B, C, D, E")
	}
	if seconds < 0 {
		seconds = 0
	}
	for i := range s.Questions {
		q := &s.Questions[i]
		if q.QuestionNumber != number {
			continue
		}
		s.TimeSpent += seconds - q.TimeSpent
		q.UserAnswer = answer
		q.IsCorrect = &correct
		q.TimeSpent = seconds
		return nil
	}
	return apperror.NotFound("Question")
}

// Complete finalises an in-progress session from its answered questions.
func (s *TestSession) Complete(now time.Time) {
	correct := 0
	for _, q := range s.Questions {
		if q.IsCorrect != nil && *q.IsCorrect {
			correct++
		}
	}
	s.CorrectAnswers = correct
	s.Score = Percent(correct, s.TotalQuestions)
	s.Accuracy = float64(s.Score)
	if s.TotalQuestions > 0 {
		s.AverageTimePerQuestion = math.Round(float64(s.TimeSpent) / float64(s.TotalQuestions))
	}
	s.CompletedAt = &now
	s.Status = StatusCompleted
	s.UpdatedAt = now
}

func (s *TestSession) Abandon(now time.Time) {
	s.Status = StatusAbandoned
	s.CompletedAt = &now
	s.UpdatedAt = now
}

func (s *TestSession) Results() SessionResults {
	perf := map[string]CategoryScore{}
	for _, q := range s.Questions {
		cs := perf[q.Category]
		cs.Total++
		if q.IsCorrect != nil && *q.IsCorrect {
			cs.Correct++
		}
		perf[q.Category] = cs
	}
	for k, cs := range perf {
		cs.Percentage = Percent(cs.Correct, cs.Total)
		perf[k] = cs
	}
	return SessionResults{
		SessionID:            s.SessionID,
		TestType:             s.TestType,
		Category:             s.Category,
		TotalQuestions:       s.TotalQuestions,
		CorrectAnswers:       s.CorrectAnswers,
		Score:                s.Score,
		TimeSpent:            s.TimeSpent,
		TimeLimit:            s.TimeLimit,
		StartedAt:            s.StartedAt,
		CompletedAt:          s.CompletedAt,
		Status:               s.Status,
		CategoryPerformance:  perf,
		CompletionPercentage: s.CompletionPercentage(),
	}
}
