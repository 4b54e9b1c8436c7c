package selection

import "iqscalar-service/internal/models"

const (
	AnonymousUser            = "anonymous"
	DefaultTestQuestions     = 15
	DefaultPracticeQuestions = 10
	DefaultSampleQuestions   = 5
)

// SelectionCriteria defines which questions a draw may use
type SelectionCriteria struct {
	Category   string   `json:"category,omitempty"`
	Count      int      `json:"count"`
	ExcludeIDs []string `json:"exclude_ids,omitempty"`
	Balanced   bool     `json:"balanced"` // Spread the draw evenly over categories
}

// SelectionResult contains the selected questions and metadata
type SelectionResult struct {
	Questions       []models.NormalizedQuestion `json:"questions"`
	TotalCandidates int                         `json:"totalCandidates"`
	CategoryQuota   map[string]int              `json:"categoryQuota,omitempty"`
	HistoryReset    bool                        `json:"historyReset"`
}

// Default selection configuration for a full test
func DefaultSelectionCriteria() *SelectionCriteria {
	return &SelectionCriteria{
		Count:    DefaultTestQuestions,
		Balanced: true,
	}
}
