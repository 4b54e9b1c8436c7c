package selection

import (
	"context"
	"fmt"
	"log"

	"iqscalar-service/internal/dataset"
	"iqscalar-service/internal/models"
)

// PoolManager assembles tests and practice sets from the question bank
type PoolManager struct {
	bank     *dataset.Bank
	store    UsedQuestionStore
	selector *BalancedSelector
	testSize int
}

// NewPoolManager creates a new pool manager. testSize is the number of
// questions in one test and drives the progress figures.
func NewPoolManager(bank *dataset.Bank, store UsedQuestionStore, selector *BalancedSelector, testSize int) *PoolManager {
	if store == nil {
		store = NewMemoryStore()
	}
	if selector == nil {
		selector = NewBalancedSelector()
	}
	if testSize <= 0 {
		testSize = DefaultTestQuestions
	}
	return &PoolManager{
		bank:     bank,
		store:    store,
		selector: selector,
		testSize: testSize,
	}
}

func (pm *PoolManager) Bank() *dataset.Bank { return pm.bank }

func (pm *PoolManager) TestSize() int { return pm.testSize }

func userKey(userID string) string {
	if userID == "" {
		return AnonymousUser
	}
	return userID
}

// GenerateTest draws a balanced test of n questions the user has not seen.
// When fewer than n unseen questions remain the user's history is cleared and
// the whole bank is used again.
func (pm *PoolManager) GenerateTest(ctx context.Context, userID string, n int) (*SelectionResult, error) {
	userID = userKey(userID)
	if n <= 0 {
		n = pm.testSize
	}

	used, err := pm.store.Used(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get used questions: %w", err)
	}

	all := pm.bank.All()
	criteria := &SelectionCriteria{Count: n, ExcludeIDs: used, Balanced: true}
	available := len(all) - countKnown(pm.bank, used)

	reset := false
	if available < n {
		log.Printf("Not enough unused questions for %s (%d), resetting history", userID, available)
		if err := pm.store.Reset(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to reset used questions: %w", err)
		}
		criteria.ExcludeIDs = nil
		reset = true
	}

	result := pm.selector.SelectQuestions(all, pm.bank.Categories(), criteria)
	result.HistoryReset = reset

	ids := make([]string, len(result.Questions))
	for i := range result.Questions {
		ids[i] = result.Questions[i].ID
		result.Questions[i].QuestionNumber = i + 1
		result.Questions[i].TestQuestionID = i + 1
	}
	if err := pm.store.MarkUsed(ctx, userID, ids); err != nil {
		return nil, fmt.Errorf("failed to mark used questions: %w", err)
	}
	return result, nil
}

func countKnown(bank *dataset.Bank, ids []string) int {
	n := 0
	for _, id := range ids {
		if _, ok := bank.Find(id); ok {
			n++
		}
	}
	return n
}

// Practice returns up to n shuffled questions, from one category when given
func (pm *PoolManager) Practice(category string, n int) []models.NormalizedQuestion {
	if n <= 0 {
		n = DefaultPracticeQuestions
	}
	return pm.selector.SelectQuestions(pm.bank.All(), pm.bank.Categories(), &SelectionCriteria{
		Category: category,
		Count:    n,
	}).Questions
}

// BalancedPractice returns n questions spread across every category
func (pm *PoolManager) BalancedPractice(n int) []models.NormalizedQuestion {
	if n <= 0 {
		n = DefaultTestQuestions
	}
	questions, _ := pm.selector.Balanced(pm.bank.All(), pm.bank.Categories(), n)
	return questions
}

// Sample returns a random preview without touching any user's history
func (pm *PoolManager) Sample(n int) []models.NormalizedQuestion {
	if n <= 0 {
		n = DefaultSampleQuestions
	}
	return pm.selector.SelectQuestions(pm.bank.All(), nil, &SelectionCriteria{Count: n}).Questions
}

// UserProgress reports how many full tests the user has worked through
func (pm *PoolManager) UserProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	userID = userKey(userID)
	used, err := pm.store.Used(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get used questions: %w", err)
	}

	testCount := len(used) / pm.testSize
	totalPossible := pm.bank.Len() / pm.testSize
	remaining := totalPossible - testCount
	if remaining < 0 {
		remaining = 0
	}
	percentage := 0.0
	if totalPossible > 0 {
		percentage = float64(testCount) / float64(totalPossible) * 100
	}

	return &models.UserProgress{
		UserID:                  userID,
		UsedQuestions:           len(used),
		TestCount:               testCount,
		RemainingTests:          remaining,
		TotalPossibleTests:      totalPossible,
		ProgressPercentage:      percentage,
		CanTakeMoreTests:        testCount < totalPossible,
		TotalAvailableQuestions: pm.bank.Len(),
		CategoriesAvailable:     pm.bank.Categories(),
	}, nil
}

// ResetProgress forgets every question the user has seen
func (pm *PoolManager) ResetProgress(ctx context.Context, userID string) error {
	return pm.store.Reset(ctx, userKey(userID))
}

// Statistics describes the bank: sizes, categories and source spread
func (pm *PoolManager) Statistics() models.BankStatistics {
	return models.BankStatistics{
		TotalQuestions:       pm.bank.Len(),
		Categories:           pm.bank.Categories(),
		QuestionsPerCategory: pm.bank.CategoryCounts(),
		TotalPossibleTests:   pm.bank.Len() / pm.testSize,
		QuestionsPerTest:     pm.testSize,
		Sources:              pm.bank.Sources(),
		SourceDistribution:   pm.bank.Distribution(),
	}
}
