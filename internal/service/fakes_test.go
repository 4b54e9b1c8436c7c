package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/dataset"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeQuestions struct {
	mu        sync.Mutex
	items     []models.Question
	usage     map[string][]bool
	lastQuery repository.QuestionFilter
}

func newFakeQuestions(qs ...models.Question) *fakeQuestions {
	f := &fakeQuestions{usage: map[string][]bool{}}
	for _, q := range qs {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		f.items = append(f.items, q)
	}
	return f
}

func (f *fakeQuestions) match(filter repository.QuestionFilter) []models.Question {
	var out []models.Question
	for _, q := range f.items {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Difficulty > 0 && q.Difficulty != filter.Difficulty {
			continue
		}
		if filter.ActiveOnly && !q.IsActive {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (f *fakeQuestions) List(_ context.Context, filter repository.QuestionFilter, page models.Page) ([]models.Question, int64, error) {
	f.lastQuery = filter
	all := f.match(filter)
	start := int(page.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return append([]models.Question{}, all[start:end]...), int64(len(all)), nil
}

func (f *fakeQuestions) Sample(_ context.Context, filter repository.QuestionFilter, size int) ([]models.Question, error) {
	f.lastQuery = filter
	all := f.match(filter)
	if len(all) > size {
		all = all[:size]
	}
	return append([]models.Question{}, all...), nil
}

func (f *fakeQuestions) Categories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, q := range f.items {
		if !seen[q.Category] {
			seen[q.Category] = true
			out = append(out, q.Category)
		}
	}
	return out, nil
}

func (f *fakeQuestions) CategoryCounts(context.Context) ([]models.CategoryCount, error) {
	counts := map[string]int{}
	for _, q := range f.items {
		counts[q.Category]++
	}
	out := []models.CategoryCount{}
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

func (f *fakeQuestions) Count(context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

func (f *fakeQuestions) FindByID(_ context.Context, id string) (*models.Question, error) {
	for _, q := range f.items {
		if q.ID.Hex() == id {
			q := q
			return &q, nil
		}
	}
	return nil, apperror.NotFound("Question")
}

func (f *fakeQuestions) FindByQuestionID(_ context.Context, questionID string) (*models.Question, error) {
	for _, q := range f.items {
		if q.QuestionID == questionID {
			q := q
			return &q, nil
		}
	}
	return nil, apperror.NotFound("Question")
}

func (f *fakeQuestions) Create(_ context.Context, q *models.Question) error {
	q.ID = primitive.NewObjectID()
	f.items = append(f.items, *q)
	return nil
}

func (f *fakeQuestions) Save(_ context.Context, q *models.Question) error {
	for i := range f.items {
		if f.items[i].ID == q.ID {
			f.items[i] = *q
			return nil
		}
	}
	return apperror.NotFound("Question")
}

func (f *fakeQuestions) Delete(_ context.Context, id string) error {
	for i, q := range f.items {
		if q.ID.Hex() == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Question")
}

func (f *fakeQuestions) RecordUsage(_ context.Context, questionID string, correct bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[questionID] = append(f.usage[questionID], correct)
	return nil
}

type fakeSessions struct {
	items map[primitive.ObjectID]*models.TestSession
	order []primitive.ObjectID
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{items: map[primitive.ObjectID]*models.TestSession{}}
}

func (f *fakeSessions) Create(_ context.Context, s *models.TestSession) error {
	s.ID = primitive.NewObjectID()
	cp := *s
	f.items[s.ID] = &cp
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeSessions) List(_ context.Context, filter repository.SessionFilter, page models.Page, _ repository.SessionSort) ([]models.TestSession, int64, error) {
	var out []models.TestSession
	for i := len(f.order) - 1; i >= 0; i-- {
		s := f.items[f.order[i]]
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.TestType != "" && s.TestType != filter.TestType {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *s)
	}
	total := int64(len(out))
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, total, nil
}

func (f *fakeSessions) FindByID(_ context.Context, id string) (*models.TestSession, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("Test session")
	}
	s, ok := f.items[oid]
	if !ok {
		return nil, apperror.NotFound("Test session")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Save(_ context.Context, s *models.TestSession) error {
	if _, ok := f.items[s.ID]; !ok {
		return apperror.NotFound("Test session")
	}
	cp := *s
	f.items[s.ID] = &cp
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	if _, ok := f.items[oid]; !ok {
		return apperror.NotFound("Test session")
	}
	delete(f.items, oid)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for id, s := range f.items {
		if s.UserID == userID {
			delete(f.items, id)
			n++
		}
	}
	kept := f.order[:0]
	for _, id := range f.order {
		if _, ok := f.items[id]; ok {
			kept = append(kept, id)
		}
	}
	f.order = kept
	return n, nil
}

type fakeUsers struct {
	items   map[primitive.ObjectID]*models.User
	updates []bson.M
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) List(context.Context, string, models.Page) ([]models.User, int64, error) {
	out := []models.User{}
	for _, u := range f.items {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.NotFound("User")
	}
	u, ok := f.items[oid]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	for _, u := range f.items {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.items {
		if existing.ExternalID == u.ExternalID || existing.Email == u.Email {
			return fmt.Errorf("User already exists: %w", apperror.ErrConflict)
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.items[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Save(_ context.Context, u *models.User) error {
	if _, ok := f.items[u.ID]; !ok {
		return apperror.NotFound("User")
	}
	cp := *u
	f.items[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, id string, update bson.M) (*models.User, error) {
	f.updates = append(f.updates, update)
	oid, _ := primitive.ObjectIDFromHex(id)
	u, ok := f.items[oid]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	if t, ok := update["lastLogin"].(time.Time); ok {
		u.LastLogin = t
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	if _, ok := f.items[oid]; !ok {
		return apperror.NotFound("User")
	}
	delete(f.items, oid)
	return nil
}

func (f *fakeUsers) Counts(context.Context, time.Time) (models.UserCounts, error) {
	return models.UserCounts{TotalUsers: len(f.items), ActiveUsers: len(f.items)}, nil
}

func (f *fakeUsers) DailyRegistrations(context.Context, time.Time) ([]models.DailyCount, error) {
	return []models.DailyCount{{Date: "2024-06-01", Count: 2}, {Date: "2024-06-02", Count: 3}}, nil
}

// fakeAnalytics returns canned rows and remembers the filters it was given.
type fakeAnalytics struct {
	overview    models.SessionOverview
	perf        []models.CategoryPerformance
	best        map[string]int
	weak        []models.WeakCategory
	progress    []models.ProgressPoint
	top         []models.LeaderboardEntry
	filters     []repository.SessionFilter
	statsLimits []int
}

func (f *fakeAnalytics) seen(filter repository.SessionFilter) {
	f.filters = append(f.filters, filter)
}

func (f *fakeAnalytics) Overview(_ context.Context, filter repository.SessionFilter) (models.SessionOverview, error) {
	f.seen(filter)
	return f.overview, nil
}

func (f *fakeAnalytics) CategoryPerformance(_ context.Context, filter repository.SessionFilter) ([]models.CategoryPerformance, error) {
	f.seen(filter)
	return f.perf, nil
}

func (f *fakeAnalytics) TestTypeDistribution(_ context.Context, filter repository.SessionFilter) ([]models.TestTypeCount, error) {
	f.seen(filter)
	return []models.TestTypeCount{{TestType: models.TestTypeIQ, Count: 1}}, nil
}

func (f *fakeAnalytics) BestScores(_ context.Context, filter repository.SessionFilter) ([]models.BestScore, error) {
	f.seen(filter)
	return []models.BestScore{}, nil
}

func (f *fakeAnalytics) Leaderboard(_ context.Context, filter repository.SessionFilter, limit int) ([]models.LeaderboardEntry, error) {
	f.seen(filter)
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeAnalytics) BestScore(_ context.Context, filter repository.SessionFilter) (int, bool, error) {
	f.seen(filter)
	score, ok := f.best[filter.UserID]
	return score, ok, nil
}

func (f *fakeAnalytics) CountUsers(_ context.Context, filter repository.SessionFilter, above *int) (int, error) {
	f.seen(filter)
	n := 0
	for _, score := range f.best {
		if above == nil || score > *above {
			n++
		}
	}
	return n, nil
}

func (f *fakeAnalytics) DailyTrends(_ context.Context, filter repository.SessionFilter) ([]models.DailyTrend, error) {
	f.seen(filter)
	return []models.DailyTrend{}, nil
}

func (f *fakeAnalytics) CategoryTrends(_ context.Context, filter repository.SessionFilter) ([]models.CategoryTrend, error) {
	f.seen(filter)
	return []models.CategoryTrend{}, nil
}

func (f *fakeAnalytics) QuestionStats(_ context.Context, limit int) (models.QuestionStats, error) {
	f.statsLimits = append(f.statsLimits, limit)
	return models.QuestionStats{}, nil
}

func (f *fakeAnalytics) ProfileStatistics(_ context.Context, filter repository.SessionFilter) (models.ProfileStatistics, error) {
	f.seen(filter)
	return models.ProfileStatistics{TotalTests: 2}, nil
}

func (f *fakeAnalytics) WeakCategories(_ context.Context, filter repository.SessionFilter, limit int) ([]models.WeakCategory, error) {
	f.seen(filter)
	if len(f.weak) > limit {
		return f.weak[:limit], nil
	}
	return f.weak, nil
}

func (f *fakeAnalytics) RecentProgress(_ context.Context, filter repository.SessionFilter, limit int) ([]models.ProgressPoint, error) {
	f.seen(filter)
	out := append([]models.ProgressPoint{}, f.progress...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeHistory struct {
	entries []models.UserAuthHistory
}

func (f *fakeHistory) Log(_ context.Context, e *models.UserAuthHistory) error {
	e.ID = primitive.NewObjectID()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeHistory) matching(filter repository.HistoryFilter) []models.UserAuthHistory {
	out := []models.UserAuthHistory{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.Success != nil && e.Success != *filter.Success {
			continue
		}
		if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeHistory) Find(_ context.Context, filter repository.HistoryFilter, limit int) ([]models.UserAuthHistory, error) {
	out := f.matching(filter)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeHistory) Count(_ context.Context, filter repository.HistoryFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeHistory) DailyLogins(context.Context, string, time.Time) ([]models.DailyCount, error) {
	return []models.DailyCount{}, nil
}

type fakeUserSessions struct {
	items map[string]*models.UserSession
}

func newFakeUserSessions() *fakeUserSessions {
	return &fakeUserSessions{items: map[string]*models.UserSession{}}
}

func (f *fakeUserSessions) Create(_ context.Context, s *models.UserSession) error {
	s.ID = primitive.NewObjectID()
	cp := *s
	f.items[s.SessionID] = &cp
	return nil
}

func (f *fakeUserSessions) FindBySessionID(_ context.Context, sessionID string) (*models.UserSession, error) {
	s, ok := f.items[sessionID]
	if !ok {
		return nil, apperror.NotFound("Session")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeUserSessions) FindActiveBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	s, err := f.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, apperror.NotFound("Session")
	}
	return s, nil
}

func (f *fakeUserSessions) Save(_ context.Context, s *models.UserSession) error {
	cp := *s
	f.items[s.SessionID] = &cp
	return nil
}

func (f *fakeUserSessions) List(_ context.Context, userID string, active *bool) ([]models.UserSession, error) {
	out := []models.UserSession{}
	for _, s := range f.items {
		if s.UserID != userID {
			continue
		}
		if active != nil && s.IsActive != *active {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeUserSessions) CountActive(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, s := range f.items {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserSessions) Stats(context.Context, string, time.Time) (models.SessionStats, error) {
	return models.SessionStats{}, nil
}

func (f *fakeUserSessions) ExpireInactive(_ context.Context, cutoff, now time.Time) (int64, error) {
	var n int64
	for _, s := range f.items {
		if s.IsActive && s.LastActivity.Before(cutoff) {
			s.IsActive = false
			s.LogoutTime = &now
			n++
		}
	}
	return n, nil
}

func testBank() *dataset.Bank {
	mk := func(id, category, text string, correct int) models.NormalizedQuestion {
		options := []string{text + " one", text + " two", text + " three", text + " four"}
		return models.NormalizedQuestion{
			ID:           id,
			Category:     category,
			Question:     text,
			Options:      options,
			AnswerText:   options[correct],
			CorrectIndex: correct,
			Source:       "test",
		}
	}
	return dataset.NewBank([]models.NormalizedQuestion{
		mk("test_1", "Pattern Recognition", "first", 0),
		mk("test_2", "Pattern Recognition", "second", 1),
		mk("test_3", "Memory", "third", 2),
		mk("test_4", "Memory", "fourth", 3),
	})
}
