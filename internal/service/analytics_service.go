package service

import (
	"context"
	"time"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
)

const activeUserWindowDays = 30

type AnalyticsService struct {
	Repo  AnalyticsStore
	Users UserStore
	now   func() time.Time
}

func NewAnalyticsService(repo AnalyticsStore, users UserStore) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Users: users, now: time.Now}
}

func (s *AnalyticsService) Overview(ctx context.Context, period string) (*models.PlatformOverview, error) {
	now := s.now()
	f := repository.SessionsSince(PeriodSince(period, now))

	platform, err := s.Repo.Overview(ctx, f)
	if err != nil {
		return nil, err
	}
	types, err := s.Repo.TestTypeDistribution(ctx, f)
	if err != nil {
		return nil, err
	}
	perf, err := s.Repo.CategoryPerformance(ctx, f)
	if err != nil {
		return nil, err
	}
	users, err := s.Users.Counts(ctx, daysAgo(activeUserWindowDays, now))
	if err != nil {
		return nil, err
	}
	return &models.PlatformOverview{
		Platform:             platform,
		TestTypeDistribution: types,
		CategoryPerformance:  perf,
		Users:                users,
	}, nil
}

func (s *AnalyticsService) Leaderboard(ctx context.Context, period string, limit int) ([]models.LeaderboardEntry, error) {
	return s.Repo.Leaderboard(ctx, repository.SessionsSince(leaderboardSince(period, s.now())), limit)
}

func (s *AnalyticsService) Trends(ctx context.Context, days int) (*models.Trends, error) {
	since := daysAgo(days, s.now())
	f := repository.SessionsSince(&since)

	daily, err := s.Repo.DailyTrends(ctx, f)
	if err != nil {
		return nil, err
	}
	categories, err := s.Repo.CategoryTrends(ctx, f)
	if err != nil {
		return nil, err
	}
	return &models.Trends{DailyTrends: daily, CategoryTrends: categories}, nil
}

func (s *AnalyticsService) QuestionStats(ctx context.Context, limit int) (models.QuestionStats, error) {
	return s.Repo.QuestionStats(ctx, limit)
}

func (s *AnalyticsService) UserGrowth(ctx context.Context, days int) (*models.UserGrowth, error) {
	registrations, err := s.Users.DailyRegistrations(ctx, daysAgo(days, s.now()))
	if err != nil {
		return nil, err
	}
	return &models.UserGrowth{
		DailyRegistrations: registrations,
		CumulativeGrowth:   models.Cumulate(registrations),
	}, nil
}
