package models

import "time"

// QuestionResult is one scored question of a submitted test.
type QuestionResult struct {
	NormalizedQuestion
	UserAnswer        string `json:"userAnswer"`
	UserAnswerIndex   int    `json:"userAnswerIndex"`
	UserAnswerText    string `json:"userAnswerText"`
	CorrectAnswerText string `json:"correctAnswerText"`
	IsCorrect         bool   `json:"isCorrect"`
}

type CategoryResult struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// TestResults is the scored outcome of a generated test.
type TestResults struct {
	TestID              string                    `json:"testId"`
	TestType            string                    `json:"testType"`
	IsPractice          bool                      `json:"isPractice"`
	Score               int                       `json:"score"`
	Percentage          float64                   `json:"percentage"`
	IQScore             int                       `json:"iqScore"`
	TotalQuestions      int                       `json:"totalQuestions"`
	CorrectAnswers      int                       `json:"correctAnswers"`
	WrongAnswers        int                       `json:"wrongAnswers"`
	Results             []QuestionResult          `json:"results"`
	CategoryPerformance map[string]CategoryResult `json:"categoryPerformance"`
	QuestionSources     map[string]int            `json:"questionSources"`
	Timestamp           time.Time                 `json:"timestamp"`
	SessionID           string                    `json:"sessionId,omitempty"`
}

// UserProgress describes how far a user has worked through the question bank.
type UserProgress struct {
	UserID                  string   `json:"userId"`
	UsedQuestions           int      `json:"usedQuestions"`
	TestCount               int      `json:"testCount"`
	RemainingTests          int      `json:"remainingTests"`
	TotalPossibleTests      int      `json:"totalPossibleTests"`
	ProgressPercentage      float64  `json:"progressPercentage"`
	CanTakeMoreTests        bool     `json:"canTakeMoreTests"`
	TotalAvailableQuestions int      `json:"totalAvailableQuestions"`
	CategoriesAvailable     []string `json:"categoriesAvailable"`
}

// BankStatistics summarises the bundled question bank.
type BankStatistics struct {
	TotalQuestions       int                       `json:"totalQuestions"`
	Categories           []string                  `json:"categories"`
	QuestionsPerCategory map[string]int            `json:"questionsPerCategory"`
	TotalPossibleTests   int                       `json:"totalPossibleTests"`
	QuestionsPerTest     int                       `json:"questionsPerTest"`
	Sources              []string                  `json:"sources"`
	SourceDistribution   map[string]map[string]int `json:"sourceDistribution"`
}
