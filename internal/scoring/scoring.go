package scoring

import (
	"math"
	"strings"
	"time"

	"iqscalar-service/internal/models"

	"github.com/google/uuid"
)

const (
	iqBase  = 55.0
	iqSlope = 0.9
	iqMin   = 70.0
	iqMax   = 145.0
)

// IQScore maps a percentage onto an approximate IQ scale
func IQScore(percentage float64) int {
	return int(math.Round(math.Max(iqMin, math.Min(iqMax, iqBase+percentage*iqSlope))))
}

// ScoreFromCounts returns the whole-number percentage of correct answers,
// clamped to [0,100].
func ScoreFromCounts(correct, total int) int {
	if total <= 0 {
		return 0
	}
	score := models.Percent(correct, total)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// NewTestID returns an identifier for a scored bank test.
func NewTestID() string {
	return "test_" + uuid.NewString()
}

// Evaluate scores answers (question id → letter) against the questions that
// were served.
func Evaluate(questions []models.NormalizedQuestion, answers map[string]string, now time.Time) *models.TestResults {
	res := &models.TestResults{
		TestID:              NewTestID(),
		TotalQuestions:      len(questions),
		Results:             make([]models.QuestionResult, 0, len(questions)),
		CategoryPerformance: map[string]models.CategoryResult{},
		QuestionSources:     map[string]int{},
		Timestamp:           now,
	}

	for _, q := range questions {
		letter := strings.ToUpper(strings.TrimSpace(answers[q.ID]))
		index := models.IndexForLetter(letter)
		if index >= len(q.Options) {
			index = -1
		}
		correct := index >= 0 && index == q.CorrectIndex

		qr := models.QuestionResult{
			NormalizedQuestion: q,
			UserAnswerIndex:    index,
			CorrectAnswerText:  q.AnswerText,
			IsCorrect:          correct,
		}
		if index >= 0 {
			qr.UserAnswer = letter
			qr.UserAnswerText = q.Options[index]
		}
		res.Results = append(res.Results, qr)

		cr := res.CategoryPerformance[q.Category]
		cr.Total++
		if correct {
			cr.Correct++
			res.CorrectAnswers++
		}
		res.CategoryPerformance[q.Category] = cr
		res.QuestionSources[q.Source]++
	}

	for category, cr := range res.CategoryPerformance {
		cr.Percentage = float64(cr.Correct) / float64(cr.Total) * 100
		res.CategoryPerformance[category] = cr
	}

	res.Score = res.CorrectAnswers
	res.WrongAnswers = res.TotalQuestions - res.CorrectAnswers
	if res.TotalQuestions > 0 {
		res.Percentage = float64(res.CorrectAnswers) / float64(res.TotalQuestions) * 100
	}
	res.IQScore = IQScore(res.Percentage)
	return res
}
