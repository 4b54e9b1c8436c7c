package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/event"
	"iqscalar-service/internal/middleware"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memSessions is an in-memory SessionStore that remembers every list filter.
type memSessions struct {
	items   []models.TestSession
	filters []repository.SessionFilter
}

func (m *memSessions) Create(_ context.Context, s *models.TestSession) error {
	s.ID = primitive.NewObjectID()
	m.items = append(m.items, *s)
	return nil
}

func (m *memSessions) List(_ context.Context, f repository.SessionFilter, _ models.Page, _ repository.SessionSort) ([]models.TestSession, int64, error) {
	m.filters = append(m.filters, f)
	out := []models.TestSession{}
	for _, s := range m.items {
		if f.UserID != "" && s.UserID != f.UserID {
			continue
		}
		if f.TestType != "" && s.TestType != f.TestType {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (m *memSessions) FindByID(_ context.Context, id string) (*models.TestSession, error) {
	for _, s := range m.items {
		if s.ID.Hex() == id {
			s := s
			return &s, nil
		}
	}
	return nil, apperror.NotFound("Test session")
}

func (m *memSessions) Save(_ context.Context, s *models.TestSession) error {
	for i := range m.items {
		if m.items[i].ID == s.ID {
			m.items[i] = *s
			return nil
		}
	}
	return apperror.NotFound("Test session")
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	for i, s := range m.items {
		if s.ID.Hex() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("Test session")
}

func (m *memSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	kept := m.items[:0]
	for _, s := range m.items {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	removed := int64(len(m.items) - len(kept))
	m.items = kept
	return removed, nil
}

type memUsers struct {
	items []models.User
}

func (m *memUsers) List(context.Context, string, models.Page) ([]models.User, int64, error) {
	return m.items, int64(len(m.items)), nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	for _, u := range m.items {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ID.Hex() == id })
}

func (m *memUsers) FindByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.ExternalID == externalID })
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	if _, err := m.FindByExternalID(context.Background(), u.ExternalID); err == nil {
		return apperror.ErrConflict
	}
	u.ID = primitive.NewObjectID()
	m.items = append(m.items, *u)
	return nil
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	for i := range m.items {
		if m.items[i].ID == u.ID {
			m.items[i] = *u
			return nil
		}
	}
	return apperror.NotFound("User")
}

func (m *memUsers) Update(_ context.Context, id string, update bson.M) (*models.User, error) {
	for i := range m.items {
		if m.items[i].ID.Hex() != id {
			continue
		}
		if t, ok := update["lastLogin"].(time.Time); ok {
			m.items[i].LastLogin = t
		}
		u := m.items[i]
		return &u, nil
	}
	return nil, apperror.NotFound("User")
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	for i, u := range m.items {
		if u.ID.Hex() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("User")
}

func (m *memUsers) Counts(context.Context, time.Time) (models.UserCounts, error) {
	return models.UserCounts{TotalUsers: len(m.items)}, nil
}

func (m *memUsers) DailyRegistrations(context.Context, time.Time) ([]models.DailyCount, error) {
	return nil, nil
}

type memHistory struct {
	entries []models.UserAuthHistory
}

func (m *memHistory) Log(_ context.Context, e *models.UserAuthHistory) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memHistory) Find(context.Context, repository.HistoryFilter, int) ([]models.UserAuthHistory, error) {
	return m.entries, nil
}

func (m *memHistory) Count(context.Context, repository.HistoryFilter) (int64, error) { return 0, nil }

func (m *memHistory) DailyLogins(context.Context, string, time.Time) ([]models.DailyCount, error) {
	return nil, nil
}

// memLogins is an in-memory UserSessionStore; active records the flag of
// every List call.
type memLogins struct {
	items  []models.UserSession
	active []*bool
}

func (m *memLogins) Create(_ context.Context, s *models.UserSession) error {
	s.ID = primitive.NewObjectID()
	m.items = append(m.items, *s)
	return nil
}

func (m *memLogins) FindBySessionID(_ context.Context, sessionID string) (*models.UserSession, error) {
	for _, s := range m.items {
		if s.SessionID == sessionID {
			s := s
			return &s, nil
		}
	}
	return nil, apperror.NotFound("Session")
}

func (m *memLogins) FindActiveBySessionID(ctx context.Context, sessionID string) (*models.UserSession, error) {
	s, err := m.FindBySessionID(ctx, sessionID)
	if err != nil || !s.IsActive {
		return nil, apperror.NotFound("Session")
	}
	return s, nil
}

func (m *memLogins) Save(_ context.Context, s *models.UserSession) error {
	for i := range m.items {
		if m.items[i].SessionID == s.SessionID {
			m.items[i] = *s
		}
	}
	return nil
}

func (m *memLogins) List(_ context.Context, userID string, active *bool) ([]models.UserSession, error) {
	m.active = append(m.active, active)
	out := []models.UserSession{}
	for _, s := range m.items {
		if s.UserID == userID && (active == nil || s.IsActive == *active) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memLogins) CountActive(context.Context, string) (int64, error) { return 0, nil }

func (m *memLogins) Stats(context.Context, string, time.Time) (models.SessionStats, error) {
	var stats models.SessionStats
	return stats, nil
}

func (m *memLogins) ExpireInactive(context.Context, time.Time, time.Time) (int64, error) {
	return 0, nil
}

// spyAnalytics answers with empty aggregates and records the session filters
// it was asked about.
type spyAnalytics struct {
	filters []repository.SessionFilter
}

func (a *spyAnalytics) seen(f repository.SessionFilter) { a.filters = append(a.filters, f) }

func (a *spyAnalytics) last(t *testing.T) repository.SessionFilter {
	t.Helper()
	require.NotEmpty(t, a.filters)
	return a.filters[len(a.filters)-1]
}

func (a *spyAnalytics) Overview(_ context.Context, f repository.SessionFilter) (models.SessionOverview, error) {
	a.seen(f)
	return models.SessionOverview{}, nil
}

func (a *spyAnalytics) CategoryPerformance(_ context.Context, f repository.SessionFilter) ([]models.CategoryPerformance, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) TestTypeDistribution(_ context.Context, f repository.SessionFilter) ([]models.TestTypeCount, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) BestScores(_ context.Context, f repository.SessionFilter) ([]models.BestScore, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) Leaderboard(_ context.Context, f repository.SessionFilter, _ int) ([]models.LeaderboardEntry, error) {
	a.seen(f)
	return []models.LeaderboardEntry{}, nil
}

func (a *spyAnalytics) BestScore(_ context.Context, f repository.SessionFilter) (int, bool, error) {
	a.seen(f)
	return 0, false, nil
}

func (a *spyAnalytics) CountUsers(_ context.Context, f repository.SessionFilter, _ *int) (int, error) {
	a.seen(f)
	return 0, nil
}

func (a *spyAnalytics) DailyTrends(_ context.Context, f repository.SessionFilter) ([]models.DailyTrend, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) CategoryTrends(_ context.Context, f repository.SessionFilter) ([]models.CategoryTrend, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) QuestionStats(context.Context, int) (models.QuestionStats, error) {
	var stats models.QuestionStats
	return stats, nil
}

func (a *spyAnalytics) ProfileStatistics(_ context.Context, f repository.SessionFilter) (models.ProfileStatistics, error) {
	a.seen(f)
	var stats models.ProfileStatistics
	return stats, nil
}

func (a *spyAnalytics) WeakCategories(_ context.Context, f repository.SessionFilter, _ int) ([]models.WeakCategory, error) {
	a.seen(f)
	return nil, nil
}

func (a *spyAnalytics) RecentProgress(_ context.Context, f repository.SessionFilter, _ int) ([]models.ProgressPoint, error) {
	a.seen(f)
	return nil, nil
}

const testSecret = "s3cret"

type apiFixture struct {
	router    *gin.Engine
	sessions  *memSessions
	users     *memUsers
	logins    *memLogins
	analytics *spyAnalytics
	ready     bool
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		sessions:  &memSessions{},
		users:     &memUsers{},
		logins:    &memLogins{},
		analytics: &spyAnalytics{},
		ready:     true,
	}
	events := event.Noop{}

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	admin := middleware.RequireAdmin(testSecret)
	api := r.Group("/api")

	tests := service.NewTestSessionService(f.sessions, f.analytics, &memQuestions{}, bank(), events)
	NewTestSessionHandler(tests).RegisterRoutes(api, admin)
	NewUserHandler(service.NewUserService(f.users, f.sessions, f.analytics, events), tests).RegisterRoutes(api, admin)
	NewPracticeHandler(service.NewPracticeService(&memQuestions{}, f.analytics, tests)).RegisterRoutes(api)
	NewAnalyticsHandler(service.NewAnalyticsService(f.analytics, f.users)).RegisterRoutes(api, admin)
	auth := service.NewAuthService(f.users, &memHistory{}, f.logins, events, time.Hour)
	NewAuthHandler(auth, func() bool { return f.ready }).RegisterRoutes(api, admin)

	f.router = r
	return f
}

func token(t *testing.T, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "admin-1",
		Role:             role,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func callAs(r http.Handler, bearer, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func assertSince(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.WithinDuration(t, want, *got, time.Minute)
}

func TestTestSessionRoutes(t *testing.T) {
	f := newAPIFixture(t)

	body := `{"userId":"u1","testType":"iq_test","timeSpent":40,"questions":[
		{"questionId":"b_1","userAnswer":"a","isCorrect":false},
		{"questionId":"b_2","userAnswer":"A","isCorrect":true}]}`
	w, env := call(f.router, http.MethodPost, "/api/test-sessions", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	var created models.TestSession
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, 1, created.CorrectAnswers)
	assert.Equal(t, 50, created.Score)
	assert.Equal(t, models.StatusCompleted, created.Status)
	require.Len(t, f.sessions.items, 1)

	w, _ = call(f.router, http.MethodGet, "/api/test-sessions/"+created.ID.Hex(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = call(f.router, http.MethodPost, "/api/test-sessions", `{"userId":"u1","testType":"quiz","totalQuestions":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Message)

	w, _ = call(f.router, http.MethodGet, "/api/test-sessions?userId=u1&testType=iq_test", "")
	require.Equal(t, http.StatusOK, w.Code)
	last := f.sessions.filters[len(f.sessions.filters)-1]
	assert.Equal(t, repository.SessionFilter{UserID: "u1", TestType: models.TestTypeIQ}, last)

	w, _ = call(f.router, http.MethodGet, "/api/test-sessions?limit=101", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTestSessionNeedsAdmin(t *testing.T) {
	f := newAPIFixture(t)
	require.NoError(t, f.sessions.Create(context.Background(), &models.TestSession{UserID: "u1", TestType: models.TestTypeIQ}))
	path := "/api/test-sessions/" + f.sessions.items[0].ID.Hex()

	tests := []struct {
		name   string
		bearer string
		status int
		left   int
	}{
		{"no token", "", http.StatusUnauthorized, 1},
		{"not admin", token(t, "user"), http.StatusForbidden, 1},
		{"admin", token(t, middleware.RoleAdmin), http.StatusOK, 0},
		{"already gone", token(t, middleware.RoleAdmin), http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		w, _ := callAs(f.router, tt.bearer, http.MethodDelete, path, "")
		assert.Equal(t, tt.status, w.Code, tt.name)
		assert.Len(t, f.sessions.items, tt.left, tt.name)
	}
}

func TestSessionAnalyticsPeriod(t *testing.T) {
	tests := []struct {
		query string
		since func(time.Time) time.Time
	}{
		{"", nil},
		{"?period=all", nil},
		{"?period=week", func(now time.Time) time.Time { return now.AddDate(0, 0, -7) }},
		{"?period=month", func(now time.Time) time.Time { return now.AddDate(0, -1, 0) }},
		{"?period=year", func(now time.Time) time.Time { return now.AddDate(-1, 0, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := newAPIFixture(t)
			w, _ := call(f.router, http.MethodGet, "/api/test-sessions/analytics/u1"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			got := f.analytics.last(t)
			assert.Equal(t, "u1", got.UserID)
			assert.Equal(t, models.StatusCompleted, got.Status)
			if tt.since == nil {
				assert.Nil(t, got.Since)
				return
			}
			assertSince(t, tt.since(time.Now()), got.Since)
		})
	}
}

func TestAuthRoutes(t *testing.T) {
	f := newAPIFixture(t)
	signup := `{"externalId":"ext_1","email":"Ada@Example.com","fullName":"Ada Lovelace"}`

	w, env := call(f.router, http.MethodPost, "/api/auth/signup", signup)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User signup logged successfully", env.Message)
	var created map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created["userId"])
	assert.Equal(t, "ada@example.com", created["email"])

	w, _ = call(f.router, http.MethodPost, "/api/auth/signup", signup)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = call(f.router, http.MethodPost, "/api/auth/signup", `{"externalId":"ext_9"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = call(f.router, http.MethodPost, "/api/auth/login", `{"externalId":"ext_1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, created["userId"], login["userId"])
	assert.NotEmpty(t, login["sessionId"])

	w, _ = call(f.router, http.MethodPost, "/api/auth/failed-login", `{"externalId":"ext_1","error":"bad code"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthSessionsActiveFilter(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		query  string
		active *bool
		count  int
	}{
		{"", nil, 1},
		{"?active=true", &yes, 1},
		{"?active=false", &no, 0},
		{"?active=maybe", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := newAPIFixture(t)
			w, env := call(f.router, http.MethodPost, "/api/auth/login", `{"externalId":"ext_1","email":"a@b.io","fullName":"A"}`)
			require.Equal(t, http.StatusOK, w.Code)
			var login map[string]string
			require.NoError(t, json.Unmarshal(env.Data, &login))

			w, env = call(f.router, http.MethodGet, "/api/auth/sessions/"+login["userId"]+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.count, env.Count)
			require.Len(t, f.logins.active, 1)
			assert.Equal(t, tt.active, f.logins.active[0])
		})
	}
}

func TestAuthNeedsDatabase(t *testing.T) {
	f := newAPIFixture(t)
	f.ready = false

	for _, path := range []string{"/api/auth/signup", "/api/auth/failed-login"} {
		w, env := call(f.router, http.MethodPost, path, `{"externalId":"ext_1","email":"a@b.io","fullName":"A"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.False(t, env.Success, path)
		assert.NotEmpty(t, env.Message, path)
	}
	assert.Empty(t, f.users.items)

	w, _ := call(f.router, http.MethodGet, "/api/auth/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not Connected", body["databaseStatus"])

	f.ready = true
	w, _ = call(f.router, http.MethodPost, "/api/auth/signup", `{"externalId":"ext_1","email":"a@b.io","fullName":"A"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUserRoutes(t *testing.T) {
	f := newAPIFixture(t)
	admin := token(t, middleware.RoleAdmin)

	w, env := call(f.router, http.MethodPost, "/api/users", `{"externalId":"ext_2","email":"grace@example.com","fullName":"Grace Hopper"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	require.False(t, user.ID.IsZero())
	assert.Equal(t, models.PlanFree, user.Subscription.Plan)

	w, _ = call(f.router, http.MethodPost, "/api/users", `{"externalId":"ext_3","email":"nope","fullName":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(f.router, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, env = callAs(f.router, admin, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)

	w, _ = call(f.router, http.MethodGet, "/api/users/"+user.ID.Hex(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = call(f.router, http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)

	w, _ = call(f.router, http.MethodDelete, "/api/users/"+user.ID.Hex(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = callAs(f.router, admin, http.MethodDelete, "/api/users/"+user.ID.Hex(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, f.users.items)
}

func TestUserLeaderboardPeriod(t *testing.T) {
	tests := []struct {
		period string
		since  func(time.Time) time.Time
	}{
		{"week", func(now time.Time) time.Time { return now.AddDate(0, 0, -7) }},
		{"month", func(now time.Time) time.Time { return now.AddDate(0, -1, 0) }},
		{"year", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			f := newAPIFixture(t)
			w, env := call(f.router, http.MethodGet, "/api/users/u1/leaderboard?period="+tt.period, "")
			require.Equal(t, http.StatusOK, w.Code)

			var position models.LeaderboardPosition
			require.NoError(t, json.Unmarshal(env.Data, &position))
			assert.Nil(t, position.UserRank)

			got := f.analytics.last(t)
			assert.Equal(t, "u1", got.UserID)
			if tt.since == nil {
				assert.Nil(t, got.Since)
				return
			}
			assertSince(t, tt.since(time.Now()), got.Since)
		})
	}
}

func TestPracticeRoutes(t *testing.T) {
	f := newAPIFixture(t)

	w, env := call(f.router, http.MethodPost, "/api/practice/session", `{"userId":"u1","testType":"iq_test","category":"Memory","totalQuestions":4,"correctAnswers":3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.TestSession
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.TestTypePractice, created.TestType)
	assert.Equal(t, 75, created.Score)

	w, env = call(f.router, http.MethodGet, "/api/practice/user/u1?category=Memory", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)
	last := f.sessions.filters[len(f.sessions.filters)-1]
	assert.Equal(t, repository.SessionFilter{UserID: "u1", TestType: models.TestTypePractice, Category: "Memory", Status: models.StatusCompleted}, last)

	w, env = call(f.router, http.MethodGet, "/api/practice/user/u1?category=Spatial", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), env.Pagination.Total)

	w, _ = call(f.router, http.MethodGet, "/api/practice/user/u1?limit=101", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(f.router, http.MethodGet, "/api/practice/analytics/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TestTypePractice, f.analytics.last(t).TestType)
}

func TestAnalyticsRoutes(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := call(f.router, http.MethodGet, "/api/analytics/leaderboard?period=week", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := f.analytics.last(t)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assertSince(t, time.Now().AddDate(0, 0, -7), got.Since)

	w, _ = call(f.router, http.MethodGet, "/api/analytics/leaderboard?period=year", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, f.analytics.last(t).Since)

	w, _ = call(f.router, http.MethodGet, "/api/analytics/leaderboard?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, path := range []string{"/api/analytics/overview", "/api/analytics/trends", "/api/analytics/question-stats", "/api/analytics/user-growth"} {
		w, _ = call(f.router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w, _ = callAs(f.router, token(t, middleware.RoleAdmin), http.MethodGet, "/api/analytics/overview?period=month", "")
	require.Equal(t, http.StatusOK, w.Code)
	assertSince(t, time.Now().AddDate(0, -1, 0), f.analytics.last(t).Since)
}
