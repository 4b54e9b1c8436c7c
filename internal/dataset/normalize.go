package dataset

import (
	"sort"
	"strings"

	"iqscalar-service/internal/models"
)

// Normalize converts a raw entry into the shared question shape. It reports
// false for entries without text or with fewer than two options. Entries
// without an id are numbered by their 1-based position in the file.
func Normalize(raw *RawQuestion, source string, index int) (models.NormalizedQuestion, bool) {
	if raw == nil {
		return models.NormalizedQuestion{}, false
	}
	text := strings.TrimSpace(raw.QuestionText)
	if text == "" {
		text = strings.TrimSpace(raw.Question)
	}
	options := []string(raw.Options)
	if text == "" || len(options) < 2 {
		return models.NormalizedQuestion{}, false
	}

	id := raw.ID.String()
	if id == "" {
		id = itoa(index + 1)
	}
	category := strings.TrimSpace(raw.Category)
	if category == "" {
		category = models.DefaultCategory
	}
	answerText, correctIndex := resolveAnswer(raw.Answer.String(), options)

	return models.NormalizedQuestion{
		ID:           id,
		Category:     category,
		Question:     text,
		Options:      options,
		AnswerText:   answerText,
		CorrectIndex: correctIndex,
		Explanation:  raw.Explanation,
		Source:       source,
	}, true
}

// resolveAnswer reads an answer given as a letter, a letter list such as
// "B, D" (first letter wins) or the exact option text. Anything else falls
// back to the first option.
func resolveAnswer(answer string, options []string) (string, int) {
	if answer != "" {
		letter := strings.ToUpper(strings.TrimSpace(strings.Split(answer, ",")[0]))
		if i := models.IndexForLetter(letter); i >= 0 && i < len(options) {
			return options[i], i
		}
		for i, o := range options {
			if o == answer {
				return o, i
			}
		}
	}
	if len(options) == 0 {
		return "", 0
	}
	return options[0], 0
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContentHash identifies a question by its lowercased, whitespace-collapsed
// text and its sorted option set, so reordered copies hash the same.
func ContentHash(q models.NormalizedQuestion) string {
	opts := make([]string, len(q.Options))
	for i, o := range q.Options {
		opts[i] = collapse(o)
	}
	sort.Strings(opts)
	return collapse(q.Question) + "|" + strings.Join(opts, "|")
}

// Dedup keeps the first question for each content hash, preserving order.
func Dedup(questions []models.NormalizedQuestion) []models.NormalizedQuestion {
	seen := make(map[string]bool, len(questions))
	out := make([]models.NormalizedQuestion, 0, len(questions))
	for _, q := range questions {
		h := ContentHash(q)
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, q)
	}
	return out
}
