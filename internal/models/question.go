package models

import (
	"math"
	"strings"
	"time"

	"iqscalar-service/internal/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnswerLetters are the option keys a question may use, in display order.
var AnswerLetters = []string{"A", "B", "C", "D", "E"}

const DefaultDifficulty = 3

func IsAnswerLetter(s string) bool {
	for _, l := range AnswerLetters {
		if s == l {
			return true
		}
	}
	return false
}

// LetterForIndex returns "A" for 0, "B" for 1 and so on, or "" when out of range.
func LetterForIndex(i int) string {
	if i < 0 || i >= len(AnswerLetters) {
		return ""
	}
	return AnswerLetters[i]
}

// IndexForLetter is the inverse of LetterForIndex; -1 for anything else.
func IndexForLetter(letter string) int {
	for i, l := range AnswerLetters {
		if l == letter {
			return i
		}
	}
	return -1
}

type Options struct {
	A string `bson:"A" json:"A"`
	B string `bson:"B" json:"B"`
	C string `bson:"C" json:"C"`
	D string `bson:"D" json:"D"`
	E string `bson:"E,omitempty" json:"E,omitempty"`
}

// OptionsFromList maps up to five option texts onto letters A..E.
func OptionsFromList(list []string) Options {
	var o Options
	fields := []*string{&o.A, &o.B, &o.C, &o.D, &o.E}
	for i := 0; i < len(list) && i < len(fields); i++ {
		*fields[i] = list[i]
	}
	return o
}

// List returns A-D and E when present.
func (o Options) List() []string {
	list := []string{o.A, o.B, o.C, o.D}
	if o.E != "" {
		list = append(list, o.E)
	}
	return list
}

func (o Options) Get(letter string) string {
	switch letter {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	case "E":
		return o.E
	}
	return ""
}

type Question struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	QuestionID    string             `bson:"questionId" json:"questionId"`
	Category      string             `bson:"category" json:"category"`
	Difficulty    int                `bson:"difficulty" json:"difficulty"`
	QuestionText  string             `bson:"questionText" json:"questionText"`
	Options       Options            `bson:"options" json:"options"`
	CorrectAnswer string             `bson:"correctAnswer" json:"correctAnswer"`
	Explanation   string             `bson:"explanation" json:"explanation"`
	Tags          []string           `bson:"tags" json:"tags"`
	Source        string             `bson:"source" json:"source"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	UsageCount    int                `bson:"usageCount" json:"usageCount"`
	SuccessRate   int                `bson:"successRate" json:"successRate"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizedQuestion is the client-facing shape shared by the bundled bank,
// generated tests and stored questions.
type NormalizedQuestion struct {
	ID             string   `json:"id"`
	SourceID       string   `json:"sourceId,omitempty"`
	Category       string   `json:"category"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	AnswerText     string   `json:"answerText"`
	CorrectIndex   int      `json:"correctIndex"`
	Explanation    string   `json:"explanation"`
	Source         string   `json:"source"`
	Difficulty     int      `json:"difficulty,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	QuestionNumber int      `json:"questionNumber,omitempty"`
	TestQuestionID int      `json:"testQuestionId,omitempty"`
}

// CorrectLetter returns the option letter of the correct answer.
func (n NormalizedQuestion) CorrectLetter() string {
	return LetterForIndex(n.CorrectIndex)
}

// ApplyDefaults fills the schema defaults for a new question.
func (q *Question) ApplyDefaults(now time.Time) {
	if q.Difficulty == 0 {
		q.Difficulty = DefaultDifficulty
	}
	if strings.TrimSpace(q.Category) == "" {
		q.Category = DefaultCategory
	}
	if q.Source == "" {
		q.Source = "manual"
	}
	if q.Tags == nil {
		q.Tags = TagsForCategory(q.Category)
	}
	q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	q.IsActive = true
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
}

func (q *Question) Validate() error {
	switch {
	case strings.TrimSpace(q.QuestionID) == "":
		return apperror.Validation("questionId is required")
	case strings.TrimSpace(q.QuestionText) == "":
		return apperror.Validation("questionText is required")
	case strings.TrimSpace(q.Explanation) == "":
		return apperror.Validation("explanation is required")
	case q.Difficulty < 1 || q.Difficulty > 5:
		return apperror.Validation("difficulty must be between 1 and 5")
	case !IsAnswerLetter(q.CorrectAnswer):
		return apperror.Validation("correctAnswer must be one of A, B, C, D, E")
	case q.SuccessRate < 0 || q.SuccessRate > 100:
		return apperror.Validation("successRate must be between 0 and 100")
	}
	for _, letter := range AnswerLetters[:4] {
		if strings.TrimSpace(q.Options.Get(letter)) == "" {
			return apperror.Validation("option %s is required", letter)
		}
	}
	if q.Options.Get(q.CorrectAnswer) == "" {
		return apperror.Validation("correctAnswer %s has no option text", q.CorrectAnswer)
	}
	return nil
}

func (q *Question) CorrectAnswerText() string {
	return q.Options.Get(q.CorrectAnswer)
}

// RecordUsage counts one more attempt and folds it into the success rate.
// The previous correct count is reconstructed from the rounded rate.
func (q *Question) RecordUsage(correct bool) {
	q.UsageCount++
	prevCorrect := math.Round(float64(q.SuccessRate) * float64(q.UsageCount-1) / 100)
	if correct {
		prevCorrect++
	}
	q.SuccessRate = int(math.Round(prevCorrect / float64(q.UsageCount) * 100))
}

func (q *Question) Normalized() NormalizedQuestion {
	options := q.Options.List()
	answer := q.CorrectAnswerText()
	correctIndex := -1
	for i, o := range options {
		if o == answer {
			correctIndex = i
			break
		}
	}
	return NormalizedQuestion{
		ID:           q.QuestionID,
		Category:     q.Category,
		Question:     q.QuestionText,
		Options:      options,
		AnswerText:   answer,
		CorrectIndex: correctIndex,
		Explanation:  q.Explanation,
		Source:       q.Source,
		Difficulty:   q.Difficulty,
		Tags:         q.Tags,
	}
}
