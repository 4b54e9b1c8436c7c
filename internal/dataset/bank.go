package dataset

import (
	"embed"
	"fmt"
	"log"
	"sort"

	"iqscalar-service/internal/models"
)

//go:embed data/*.json
var dataFS embed.FS

// Source names one bundled question file. The name prefixes every question id.
type Source struct {
	Name string
	File string
}

var DefaultSources = []Source{
	{Name: "iq_core", File: "data/iq_core.json"},
	{Name: "practice_core", File: "data/practice_core.json"},
	{Name: "practice_extended", File: "data/practice_extended.json"},
	{Name: "memory_spatial", File: "data/memory_spatial.json"},
}

// Bank is the merged, deduplicated question set. It is read-only after
// construction and safe for concurrent use.
type Bank struct {
	questions  []models.NormalizedQuestion
	byID       map[string]int
	categories []string
	sources    []string
	fallback   bool
}

// LoadDefault builds the bank from the embedded files.
func LoadDefault() (*Bank, error) {
	return Load(DefaultSources, func(s Source) ([]byte, error) {
		return dataFS.ReadFile(s.File)
	})
}

// Load reads every source, prefixes ids with the source name, drops repeated
// ids and then repeated content. When nothing survives the fallback set is used.
func Load(sources []Source, read func(Source) ([]byte, error)) (*Bank, error) {
	var merged []models.NormalizedQuestion
	seenIDs := map[string]bool{}
	for _, src := range sources {
		data, err := read(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read source %s: %w", src.Name, err)
		}
		raws, err := ParseFile(data)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		for i, raw := range raws {
			q, ok := Normalize(raw, src.Name, i)
			if !ok {
				continue
			}
			q.SourceID = q.ID
			q.ID = src.Name + "_" + q.ID
			if seenIDs[q.ID] {
				continue
			}
			seenIDs[q.ID] = true
			merged = append(merged, q)
		}
	}

	unique := Dedup(merged)
	b := newBank(unique)
	if len(unique) == 0 {
		log.Println("No questions loaded from bundled sources, using fallback questions")
		b = newBank(FallbackQuestions())
		b.fallback = true
	}
	log.Printf("Loaded %d unique questions (%d before dedup) across %d categories",
		len(b.questions), len(merged), len(b.categories))
	return b, nil
}

// NewBank wraps an already normalized question list.
func NewBank(questions []models.NormalizedQuestion) *Bank {
	return newBank(Dedup(questions))
}

func newBank(questions []models.NormalizedQuestion) *Bank {
	b := &Bank{
		questions: questions,
		byID:      make(map[string]int, len(questions)),
	}
	cats := map[string]bool{}
	srcs := map[string]bool{}
	for i, q := range questions {
		b.byID[q.ID] = i
		cats[q.Category] = true
		srcs[q.Source] = true
	}
	b.categories = sortedKeys(cats)
	b.sources = sortedKeys(srcs)
	return b
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of every question in load order.
func (b *Bank) All() []models.NormalizedQuestion {
	out := make([]models.NormalizedQuestion, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *Bank) Len() int { return len(b.questions) }

func (b *Bank) IsFallback() bool { return b.fallback }

// Categories are the distinct categories, sorted.
func (b *Bank) Categories() []string {
	return append([]string(nil), b.categories...)
}

func (b *Bank) Sources() []string {
	return append([]string(nil), b.sources...)
}

func (b *Bank) Find(id string) (models.NormalizedQuestion, bool) {
	i, ok := b.byID[id]
	if !ok {
		return models.NormalizedQuestion{}, false
	}
	return b.questions[i], true
}

func (b *Bank) ByCategory(category string) []models.NormalizedQuestion {
	var out []models.NormalizedQuestion
	for _, q := range b.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

func (b *Bank) CategoryCounts() map[string]int {
	counts := make(map[string]int, len(b.categories))
	for _, q := range b.questions {
		counts[q.Category]++
	}
	return counts
}

// Distribution counts questions per source and category.
func (b *Bank) Distribution() map[string]map[string]int {
	dist := map[string]map[string]int{}
	for _, q := range b.questions {
		if dist[q.Source] == nil {
			dist[q.Source] = map[string]int{}
		}
		dist[q.Source][q.Category]++
	}
	return dist
}

// FallbackQuestions keep the service usable when no bundled source loads.
func FallbackQuestions() []models.NormalizedQuestion {
	return []models.NormalizedQuestion{
		{
			ID:           "fallback_1",
			Category:     "Numerical & Abstract Reasoning",
			Question:     "What is the missing number in the sequence: 2, 4, 6, 8, ?",
			Options:      []string{"9", "10", "12", "14"},
			AnswerText:   "10",
			CorrectIndex: 1,
			Explanation:  "The sequence increases by 2 each time.",
			Source:       "fallback",
		},
		{
			ID:           "fallback_2",
			Category:     "Verbal-Logical Reasoning",
			Question:     "If all Bloops are Razzles and all Razzles are Lazzles, then all Bloops are definitely Lazzles.",
			Options:      []string{"True", "False", "Cannot be determined", "Sometimes true"},
			AnswerText:   "True",
			CorrectIndex: 0,
			Explanation:  "This is a logical syllogism.",
			Source:       "fallback",
		},
		{
			ID:           "fallback_3",
			Category:     "Pattern Recognition",
			Question:     "Find the missing number: 5, 10, 15, ?, 25",
			Options:      []string{"16", "20", "18", "22"},
			AnswerText:   "20",
			CorrectIndex: 1,
			Explanation:  "The sequence increases by 5 each time.",
			Source:       "fallback",
		},
	}
}
