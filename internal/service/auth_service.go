package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/event"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"

	"github.com/google/uuid"
)

const (
	historyLimit       = 50
	recentLoginCount   = 5
	failedAttemptCount = 10
	failedLoginWindow  = 24 * time.Hour
	defaultLoginMethod = "external"
	defaultSessionTTL  = 24 * time.Hour
)

// ClientInfo identifies where an auth request came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type SignupRequest struct {
	ExternalID   string `json:"externalId"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
}

type LoginRequest struct {
	ExternalID   string `json:"externalId"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
	SessionID    string `json:"sessionId"`
	LoginMethod  string `json:"loginMethod"`
}

type LogoutRequest struct {
	ExternalID string `json:"externalId"`
	SessionID  string `json:"sessionId"`
}

type FailedLoginRequest struct {
	ExternalID string `json:"externalId"`
	Email      string `json:"email"`
	Reason     string `json:"error"`
}

type LoginResult struct {
	User      *models.User `json:"user"`
	SessionID string       `json:"sessionId"`
}

type AuthService struct {
	Users         UserStore
	Audit         AuthHistoryStore
	Sessions      UserSessionStore
	Events        event.Publisher
	SessionExpiry time.Duration
	now           func() time.Time
}

func NewAuthService(users UserStore, history AuthHistoryStore, sessions UserSessionStore, events event.Publisher, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = defaultSessionTTL
	}
	return &AuthService{
		Users:         users,
		Audit:         history,
		Sessions:      sessions,
		Events:        events,
		SessionExpiry: expiry,
		now:           time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest, client ClientInfo) (*models.User, error) {
	if strings.TrimSpace(req.ExternalID) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.FullName) == "" {
		return nil, apperror.Validation("externalId, email and fullName are required")
	}

	now := s.now()
	user := &models.User{
		ExternalID:   req.ExternalID,
		Email:        req.Email,
		FullName:     req.FullName,
		ProfileImage: req.ProfileImage,
	}
	user.ApplyDefaults(now)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.log(ctx, user, models.EventSignup, true, client, nil, ""); err != nil {
		return nil, err
	}
	publish(s.Events, event.AuthSignup, userPayload(user))
	return user, nil
}

// Login finds or creates the user, then opens a new session for them.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*LoginResult, error) {
	if strings.TrimSpace(req.ExternalID) == "" {
		return nil, apperror.Validation("externalId is required")
	}
	now := s.now()

	user, err := s.Users.FindByExternalID(ctx, req.ExternalID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		user = &models.User{
			ExternalID:   req.ExternalID,
			Email:        req.Email,
			FullName:     req.FullName,
			ProfileImage: req.ProfileImage,
		}
		user.ApplyDefaults(now)
		if err := user.Validate(); err != nil {
			return nil, err
		}
		if err := s.Users.Create(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		user, err = s.Users.Update(ctx, user.ID.Hex(), map[string]interface{}{"lastLogin": now, "updatedAt": now})
		if err != nil {
			return nil, err
		}
	}

	sessionID := uuid.NewString()
	providerSessionID := req.SessionID
	if providerSessionID == "" {
		providerSessionID = sessionID
	}
	session := &models.UserSession{
		UserID:            user.ID.Hex(),
		ExternalID:        user.ExternalID,
		SessionID:         sessionID,
		ProviderSessionID: providerSessionID,
		IPAddress:         client.IPAddress,
		UserAgent:         client.UserAgent,
		DeviceInfo:        models.ParseUserAgent(client.UserAgent),
		IsActive:          true,
		LastActivity:      now,
		LoginTime:         now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	method := req.LoginMethod
	if method == "" {
		method = defaultLoginMethod
	}
	meta := map[string]any{"loginMethod": method, "sessionId": sessionID}
	if err := s.log(ctx, user, models.EventLogin, true, client, meta, ""); err != nil {
		return nil, err
	}
	publish(s.Events, event.AuthLogin, map[string]interface{}{"userId": user.ID.Hex(), "sessionId": sessionID})
	return &LoginResult{User: user, SessionID: sessionID}, nil
}

// Logout ends the named session if it is still active and records the event.
// It returns the session duration in seconds, zero when nothing was ended.
func (s *AuthService) Logout(ctx context.Context, req LogoutRequest, client ClientInfo) (int64, error) {
	if strings.TrimSpace(req.ExternalID) == "" || strings.TrimSpace(req.SessionID) == "" {
		return 0, apperror.Validation("externalId and sessionId are required")
	}
	user, err := s.Users.FindByExternalID(ctx, req.ExternalID)
	if err != nil {
		return 0, err
	}

	var duration int64
	session, err := s.Sessions.FindActiveBySessionID(ctx, req.SessionID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
	case err != nil:
		return 0, err
	case session.UserID == user.ID.Hex():
		session.End(s.now())
		if err := s.Sessions.Save(ctx, session); err != nil {
			return 0, err
		}
		duration = session.SessionDuration
	}

	meta := map[string]any{"sessionId": req.SessionID, "sessionDuration": duration}
	if err := s.log(ctx, user, models.EventLogout, true, client, meta, ""); err != nil {
		return 0, err
	}
	publish(s.Events, event.AuthLogout, map[string]interface{}{"userId": user.ID.Hex(), "sessionId": req.SessionID, "sessionDuration": duration})
	return duration, nil
}

// FailedLogin records an unsuccessful login. Unknown users are ignored.
func (s *AuthService) FailedLogin(ctx context.Context, req FailedLoginRequest, client ClientInfo) error {
	if strings.TrimSpace(req.ExternalID) == "" {
		return apperror.Validation("externalId is required")
	}
	user, err := s.Users.FindByExternalID(ctx, req.ExternalID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	reason := req.Reason
	if reason == "" {
		reason = "Login failed"
	}
	meta := map[string]any{"attemptedEmail": req.Email}
	if err := s.log(ctx, user, models.EventLogin, false, client, meta, reason); err != nil {
		return err
	}
	publish(s.Events, event.AuthLoginFailed, map[string]interface{}{"userId": user.ID.Hex(), "reason": reason})
	return nil
}

func (s *AuthService) Activity(ctx context.Context, sessionID string) (*models.UserSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperror.Validation("sessionId is required")
	}
	session, err := s.Sessions.FindActiveBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Touch(s.now())
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *AuthService) History(ctx context.Context, userID, eventType string, limit int) ([]models.UserAuthHistory, error) {
	if eventType != "" && !models.IsAuthEventType(eventType) {
		return nil, apperror.Validation("unknown eventType %q", eventType)
	}
	if limit <= 0 {
		limit = historyLimit
	}
	return s.Audit.Find(ctx, repository.HistoryFilter{UserID: userID, EventType: eventType}, limit)
}

// UserSessions lists a user's sessions; a nil active lists every session.
func (s *AuthService) UserSessions(ctx context.Context, userID string, active *bool) ([]models.UserSession, error) {
	return s.Sessions.List(ctx, userID, active)
}

func (s *AuthService) Stats(ctx context.Context, userID string, days int) (*models.AuthStats, error) {
	now := s.now()
	since := daysAgo(days, now)

	sessions, err := s.Sessions.Stats(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	logins, err := s.Audit.DailyLogins(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	failed, err := s.failedSince(ctx, userID, now.Add(-failedLoginWindow))
	if err != nil {
		return nil, err
	}
	return &models.AuthStats{
		SessionStats: sessions,
		LoginStats:   logins,
		FailedLogins: int(failed),
		Period:       fmt.Sprintf("%d days", days),
	}, nil
}

func (s *AuthService) Security(ctx context.Context, userID string) (*models.SecurityReport, error) {
	active, err := s.Sessions.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, failed := true, false
	recent, err := s.Audit.Find(ctx, repository.HistoryFilter{UserID: userID, EventType: models.EventLogin, Success: &ok}, recentLoginCount)
	if err != nil {
		return nil, err
	}
	attempts, err := s.Audit.Find(ctx, repository.HistoryFilter{UserID: userID, EventType: models.EventLogin, Success: &failed}, failedAttemptCount)
	if err != nil {
		return nil, err
	}
	return &models.SecurityReport{
		ActiveSessions: int(active),
		RecentLogins:   recent,
		FailedAttempts: attempts,
		SecurityScore:  models.SecurityScore(int(active), len(attempts)),
	}, nil
}

func (s *AuthService) EndSession(ctx context.Context, sessionID string) (*models.UserSession, error) {
	session, err := s.Sessions.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsActive {
		session.End(s.now())
		if err := s.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Cleanup ends sessions with no activity within the session expiry.
func (s *AuthService) Cleanup(ctx context.Context) (int64, error) {
	now := s.now()
	return s.Sessions.ExpireInactive(ctx, now.Add(-s.SessionExpiry), now)
}

func (s *AuthService) failedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	failed := false
	return s.Audit.Count(ctx, repository.HistoryFilter{UserID: userID, EventType: models.EventLogin, Success: &failed, Since: &since})
}

func (s *AuthService) log(ctx context.Context, user *models.User, eventType string, success bool, client ClientInfo, meta map[string]any, errMsg string) error {
	now := s.now()
	entry := &models.UserAuthHistory{
		UserID:       user.ID.Hex(),
		ExternalID:   user.ExternalID,
		EventType:    eventType,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		DeviceInfo:   models.ParseUserAgent(client.UserAgent),
		Metadata:     meta,
		Success:      success,
		ErrorMessage: errMsg,
		Timestamp:    now,
		CreatedAt:    now,
	}
	return s.Audit.Log(ctx, entry)
}
