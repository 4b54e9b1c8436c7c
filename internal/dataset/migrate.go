package dataset

import (
	"time"

	"iqscalar-service/internal/models"
)

// ToModel converts a bank question into a stored Question with fresh counters.
// Options beyond E are dropped; an answer outside A..E becomes A.
func ToModel(q models.NormalizedQuestion, now time.Time) models.Question {
	options := q.Options
	if len(options) > len(models.AnswerLetters) {
		options = options[:len(models.AnswerLetters)]
	}
	letter := models.LetterForIndex(q.CorrectIndex)
	if letter == "" || q.CorrectIndex >= len(options) {
		letter = "A"
	}
	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = models.DefaultDifficulty
	}
	return models.Question{
		QuestionID:    q.ID,
		Category:      q.Category,
		Difficulty:    difficulty,
		QuestionText:  q.Question,
		Options:       models.OptionsFromList(options),
		CorrectAnswer: letter,
		Explanation:   q.Explanation,
		Tags:          models.TagsForCategory(q.Category),
		Source:        q.Source,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// UniqueByText keeps the first question for each normalized question text.
// Stored questions are deduplicated on text alone, which is stricter than the
// bank's text-and-options hash.
func UniqueByText(questions []models.Question) []models.Question {
	seen := map[string]bool{}
	out := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		key := collapse(q.QuestionText)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}

// MigrationSet converts the whole bank into storable questions.
func (b *Bank) MigrationSet(now time.Time) []models.Question {
	out := make([]models.Question, 0, len(b.questions))
	for _, q := range b.questions {
		out = append(out, ToModel(q, now))
	}
	return UniqueByText(out)
}
