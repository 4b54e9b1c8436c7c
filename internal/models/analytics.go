package models

import "time"

// Rows decoded from aggregation pipelines. Averages are rounded to two
// decimals by the pipelines themselves.

type SessionOverview struct {
	TotalSessions          int     `bson:"totalSessions" json:"totalSessions"`
	TotalQuestions         int     `bson:"totalQuestions" json:"totalQuestions"`
	TotalCorrect           int     `bson:"totalCorrect" json:"totalCorrect"`
	TotalTimeSpent         int     `bson:"totalTimeSpent" json:"totalTimeSpent"`
	AverageScore           float64 `bson:"averageScore" json:"averageScore"`
	AverageAccuracy        float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	AverageTimePerQuestion float64 `bson:"averageTimePerQuestion" json:"averageTimePerQuestion"`
	BestScore              int     `bson:"bestScore" json:"bestScore"`
	WorstScore             int     `bson:"worstScore" json:"worstScore"`
	OverallAccuracy        float64 `bson:"overallAccuracy" json:"overallAccuracy"`
}

type CategoryPerformance struct {
	Category         string  `bson:"category" json:"category"`
	Sessions         int     `bson:"sessions" json:"sessions"`
	AverageScore     float64 `bson:"averageScore" json:"averageScore"`
	AverageAccuracy  float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	TotalQuestions   int     `bson:"totalQuestions" json:"totalQuestions"`
	TotalCorrect     int     `bson:"totalCorrect" json:"totalCorrect"`
	TotalTimeSpent   int     `bson:"totalTimeSpent" json:"totalTimeSpent"`
	CategoryAccuracy float64 `bson:"categoryAccuracy" json:"categoryAccuracy"`
}

type BestScore struct {
	Category     string  `bson:"_id" json:"category"`
	BestScore    int     `bson:"bestScore" json:"bestScore"`
	AverageScore float64 `bson:"averageScore" json:"averageScore"`
	TotalTests   int     `bson:"totalTests" json:"totalTests"`
}

type TestTypeCount struct {
	TestType     string  `bson:"_id" json:"testType"`
	Count        int     `bson:"count" json:"count"`
	AverageScore float64 `bson:"averageScore" json:"averageScore"`
}

type UserCounts struct {
	TotalUsers  int `bson:"totalUsers" json:"totalUsers"`
	ActiveUsers int `bson:"activeUsers" json:"activeUsers"`
}

type PlatformOverview struct {
	Platform             SessionOverview       `json:"platform"`
	TestTypeDistribution []TestTypeCount       `json:"testTypeDistribution"`
	CategoryPerformance  []CategoryPerformance `json:"categoryPerformance"`
	Users                UserCounts            `json:"users"`
}

type LeaderboardEntry struct {
	UserID          string  `bson:"userId" json:"userId"`
	BestScore       int     `bson:"bestScore" json:"bestScore"`
	AverageAccuracy float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	TotalTests      int     `bson:"totalTests" json:"totalTests"`
	TotalQuestions  int     `bson:"totalQuestions" json:"totalQuestions"`
	TotalCorrect    int     `bson:"totalCorrect" json:"totalCorrect"`
	TotalTimeSpent  int     `bson:"totalTimeSpent" json:"totalTimeSpent"`
	FullName        string  `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Email           string  `bson:"email,omitempty" json:"email,omitempty"`
}

// LeaderboardPosition places one user against everyone with a completed test.
// UserRank is nil when the user has no sessions in the period.
type LeaderboardPosition struct {
	UserRank   *int               `json:"userRank"`
	TotalUsers int                `json:"totalUsers"`
	UserScore  int                `json:"userScore"`
	TopUsers   []LeaderboardEntry `json:"topUsers"`
}

type DailyTrend struct {
	Date            string  `bson:"date" json:"date"`
	Sessions        int     `bson:"sessions" json:"sessions"`
	AverageScore    float64 `bson:"averageScore" json:"averageScore"`
	AverageAccuracy float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	UniqueUsers     int     `bson:"uniqueUsers" json:"uniqueUsers"`
}

type CategoryTrend struct {
	Category     string  `bson:"category" json:"category"`
	Date         string  `bson:"date" json:"date"`
	Sessions     int     `bson:"sessions" json:"sessions"`
	AverageScore float64 `bson:"averageScore" json:"averageScore"`
}

type Trends struct {
	DailyTrends    []DailyTrend    `json:"dailyTrends"`
	CategoryTrends []CategoryTrend `json:"categoryTrends"`
}

type QuestionAttemptStats struct {
	QuestionID      string  `bson:"questionId" json:"questionId"`
	QuestionText    string  `bson:"questionText" json:"questionText"`
	Category        string  `bson:"category" json:"category"`
	Difficulty      int     `bson:"difficulty" json:"difficulty"`
	TotalAttempts   int     `bson:"totalAttempts" json:"totalAttempts"`
	CorrectAttempts int     `bson:"correctAttempts" json:"correctAttempts"`
	SuccessRate     float64 `bson:"successRate" json:"successRate"`
}

type QuestionStats struct {
	DifficultQuestions []QuestionAttemptStats `json:"difficultQuestions"`
	PopularQuestions   []QuestionAttemptStats `json:"popularQuestions"`
}

type DailyCount struct {
	Date  string `bson:"_id" json:"date"`
	Count int    `bson:"count" json:"count"`
}

type CumulativeGrowth struct {
	Dates      []string `json:"dates"`
	Cumulative []int    `json:"cumulative"`
}

type UserGrowth struct {
	DailyRegistrations []DailyCount     `json:"dailyRegistrations"`
	CumulativeGrowth   CumulativeGrowth `json:"cumulativeGrowth"`
}

// Cumulate builds a running total over daily counts that are already sorted by date.
func Cumulate(days []DailyCount) CumulativeGrowth {
	g := CumulativeGrowth{Dates: []string{}, Cumulative: []int{}}
	total := 0
	for _, d := range days {
		total += d.Count
		g.Dates = append(g.Dates, d.Date)
		g.Cumulative = append(g.Cumulative, total)
	}
	return g
}

type ProfileStatistics struct {
	TotalTests      int     `bson:"totalTests" json:"totalTests"`
	TotalQuestions  int     `bson:"totalQuestions" json:"totalQuestions"`
	TotalCorrect    int     `bson:"totalCorrect" json:"totalCorrect"`
	AverageScore    float64 `bson:"averageScore" json:"averageScore"`
	AverageAccuracy float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	BestScore       int     `bson:"bestScore" json:"bestScore"`
	TotalTimeSpent  int     `bson:"totalTimeSpent" json:"totalTimeSpent"`
}

type UserProfile struct {
	User                *User                 `json:"user"`
	Statistics          ProfileStatistics     `json:"statistics"`
	RecentSessions      []TestSession         `json:"recentSessions"`
	CategoryPerformance []CategoryPerformance `json:"categoryPerformance"`
}

type UserAnalytics struct {
	Overview            SessionOverview       `json:"overview"`
	CategoryPerformance []CategoryPerformance `json:"categoryPerformance"`
}

type ProgressPoint struct {
	Score       int        `bson:"score" json:"score"`
	Accuracy    float64    `bson:"accuracy" json:"accuracy"`
	CompletedAt *time.Time `bson:"completedAt" json:"completedAt"`
	Category    string     `bson:"category" json:"category"`
}

type PracticeAnalytics struct {
	Overall             SessionOverview       `json:"overall"`
	CategoryPerformance []CategoryPerformance `json:"categoryPerformance"`
	ProgressOverTime    []ProgressPoint       `json:"progressOverTime"`
}

type WeakCategory struct {
	Category        string  `bson:"_id" json:"category"`
	AverageAccuracy float64 `bson:"averageAccuracy" json:"averageAccuracy"`
	Sessions        int     `bson:"sessions" json:"sessions"`
}

type Recommendation struct {
	Category        string     `json:"category"`
	AverageAccuracy float64    `json:"averageAccuracy"`
	Sessions        int        `json:"sessions"`
	Questions       []Question `json:"questions"`
}

type PracticeRecommendations struct {
	WeakCategories  []WeakCategory   `json:"weakCategories"`
	Recommendations []Recommendation `json:"recommendations"`
}

type CategoryCount struct {
	Category      string  `bson:"category" json:"category"`
	Count         int     `bson:"count" json:"count"`
	AvgDifficulty float64 `bson:"avgDifficulty" json:"avgDifficulty"`
}

type QuestionBankStats struct {
	ByCategory []CategoryCount `json:"byCategory"`
	Total      int             `json:"total"`
}

type AuthStats struct {
	SessionStats SessionStats `json:"sessionStats"`
	LoginStats   []DailyCount `json:"loginStats"`
	FailedLogins int          `json:"failedLogins"`
	Period       string       `json:"period"`
}

type SecurityReport struct {
	ActiveSessions int               `json:"activeSessions"`
	RecentLogins   []UserAuthHistory `json:"recentLogins"`
	FailedAttempts []UserAuthHistory `json:"failedAttempts"`
	SecurityScore  int               `json:"securityScore"`
}

// SecurityScore starts at 100, loses 10 per active session beyond three and
// 5 per failed attempt, and is clamped to [0,100].
func SecurityScore(activeSessions, failedAttempts int) int {
	score := 100
	if activeSessions > 3 {
		score -= (activeSessions - 3) * 10
	}
	score -= failedAttempts * 5
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
