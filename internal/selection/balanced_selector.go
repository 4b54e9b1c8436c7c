package selection

import (
	"math/rand"
	"sync"
	"time"

	"iqscalar-service/internal/models"
)

// BalancedSelector draws questions at random, optionally spreading the draw
// evenly across categories. It is safe for concurrent use.
type BalancedSelector struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewBalancedSelector creates a selector seeded from the clock
func NewBalancedSelector() *BalancedSelector {
	return NewSeededSelector(time.Now().UnixNano())
}

// NewSeededSelector creates a selector with a fixed seed, for reproducible draws
func NewSeededSelector(seed int64) *BalancedSelector {
	return &BalancedSelector{rand: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a Fisher-Yates shuffled copy of questions
func (s *BalancedSelector) Shuffle(questions []models.NormalizedQuestion) []models.NormalizedQuestion {
	out := make([]models.NormalizedQuestion, len(questions))
	copy(out, questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := s.rand.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CategoryQuota splits n across categories: each gets n/len, and the first
// n%len categories get one more.
func CategoryQuota(categories []string, n int) map[string]int {
	quota := make(map[string]int, len(categories))
	if len(categories) == 0 || n <= 0 {
		return quota
	}
	base := n / len(categories)
	remainder := n % len(categories)
	for i, c := range categories {
		quota[c] = base
		if i < remainder {
			quota[c]++
		}
	}
	return quota
}

// Balanced takes each category's quota from a shuffled copy of its pool
// questions, fills any shortfall from the unselected remainder, and shuffles
// the result. It returns at most n questions.
func (s *BalancedSelector) Balanced(pool []models.NormalizedQuestion, categories []string, n int) ([]models.NormalizedQuestion, map[string]int) {
	quota := CategoryQuota(categories, n)
	if n <= 0 {
		return []models.NormalizedQuestion{}, quota
	}

	byCategory := map[string][]models.NormalizedQuestion{}
	for _, q := range pool {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}

	selected := make([]models.NormalizedQuestion, 0, n)
	taken := map[string]bool{}
	for _, c := range categories {
		want := quota[c]
		if want == 0 {
			continue
		}
		shuffled := s.Shuffle(byCategory[c])
		if want > len(shuffled) {
			want = len(shuffled)
		}
		for _, q := range shuffled[:want] {
			selected = append(selected, q)
			taken[q.ID] = true
		}
	}

	if len(selected) < n {
		var remaining []models.NormalizedQuestion
		for _, q := range pool {
			if !taken[q.ID] {
				remaining = append(remaining, q)
			}
		}
		for _, q := range s.Shuffle(remaining) {
			if len(selected) >= n {
				break
			}
			selected = append(selected, q)
		}
	}

	selected = s.Shuffle(selected)
	if len(selected) > n {
		selected = selected[:n]
	}
	return selected, quota
}

// SelectQuestions filters the pool by criteria and draws from what is left
func (s *BalancedSelector) SelectQuestions(pool []models.NormalizedQuestion, categories []string, criteria *SelectionCriteria) *SelectionResult {
	excluded := make(map[string]bool, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		excluded[id] = true
	}
	candidates := make([]models.NormalizedQuestion, 0, len(pool))
	for _, q := range pool {
		if excluded[q.ID] {
			continue
		}
		if criteria.Category != "" && q.Category != criteria.Category {
			continue
		}
		candidates = append(candidates, q)
	}

	result := &SelectionResult{TotalCandidates: len(candidates)}
	if criteria.Balanced && criteria.Category == "" {
		result.Questions, result.CategoryQuota = s.Balanced(candidates, categories, criteria.Count)
		return result
	}

	shuffled := s.Shuffle(candidates)
	if criteria.Count >= 0 && criteria.Count < len(shuffled) {
		shuffled = shuffled[:criteria.Count]
	}
	result.Questions = shuffled
	return result
}
