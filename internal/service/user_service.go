package service

import (
	"context"
	"log"
	"time"

	"iqscalar-service/internal/event"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
)

const (
	recentSessionCount = 5
	leaderboardTop     = 10
)

type UserService struct {
	Repo      UserStore
	Sessions  SessionStore
	Analytics AnalyticsStore
	Events    event.Publisher
	now       func() time.Time
}

func NewUserService(repo UserStore, sessions SessionStore, analytics AnalyticsStore, events event.Publisher) *UserService {
	return &UserService{Repo: repo, Sessions: sessions, Analytics: analytics, Events: events, now: time.Now}
}

func (s *UserService) ListUsers(ctx context.Context, search string, page models.Page) ([]models.User, models.Pagination, error) {
	users, total, err := s.Repo.List(ctx, search, page)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return users, models.NewPagination(page, total), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return s.Repo.FindByExternalID(ctx, externalID)
}

func (s *UserService) CreateUser(ctx context.Context, user *models.User) error {
	user.ApplyDefaults(s.now())
	if err := user.Validate(); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return err
	}
	publish(s.Events, event.UserCreated, userPayload(user))
	return nil
}

// UpdateUser merges the patch into the stored user. Identity fields and the
// creation time are kept.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch map[string]interface{}) (*models.User, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oid, externalID, created := user.ID, user.ExternalID, user.CreatedAt

	if err := applyPatch(user, patch); err != nil {
		return nil, err
	}
	user.ID, user.ExternalID, user.CreatedAt = oid, externalID, created
	user.ApplyDefaults(s.now())

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user and every test session recorded for them.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	removed, err := s.Sessions.DeleteByUser(ctx, id)
	if err != nil {
		return err
	}
	log.Printf("Deleted user %s and %d test sessions", id, removed)
	publish(s.Events, event.UserDeleted, map[string]interface{}{"userId": id, "sessionsDeleted": removed})
	return nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*models.UserProfile, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f := repository.SessionFilter{UserID: id, Status: models.StatusCompleted}

	stats, err := s.Analytics.ProfileStatistics(ctx, f)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.Sessions.List(ctx, f, models.Page{Number: 1, Limit: recentSessionCount}, repository.SessionSort{Field: "completedAt", Desc: true})
	if err != nil {
		return nil, err
	}
	perf, err := s.Analytics.CategoryPerformance(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{
		User:                user,
		Statistics:          stats,
		RecentSessions:      recent,
		CategoryPerformance: perf,
	}, nil
}

// LeaderboardPosition ranks the user by best score; ties share a rank.
func (s *UserService) LeaderboardPosition(ctx context.Context, id, period string) (*models.LeaderboardPosition, error) {
	f := repository.SessionFilter{Status: models.StatusCompleted, Since: leaderboardSince(period, s.now())}
	mine := f
	mine.UserID = id

	best, found, err := s.Analytics.BestScore(ctx, mine)
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.LeaderboardPosition{TopUsers: []models.LeaderboardEntry{}}, nil
	}

	total, err := s.Analytics.CountUsers(ctx, f, nil)
	if err != nil {
		return nil, err
	}
	better, err := s.Analytics.CountUsers(ctx, f, &best)
	if err != nil {
		return nil, err
	}
	top, err := s.Analytics.Leaderboard(ctx, f, leaderboardTop)
	if err != nil {
		return nil, err
	}

	rank := better + 1
	return &models.LeaderboardPosition{
		UserRank:   &rank,
		TotalUsers: total,
		UserScore:  best,
		TopUsers:   top,
	}, nil
}

func userPayload(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"userId":     u.ID.Hex(),
		"externalId": u.ExternalID,
		"email":      u.Email,
		"fullName":   u.FullName,
	}
}
