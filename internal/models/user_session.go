package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserSession struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID            string             `bson:"userId" json:"userId"`
	ExternalID        string             `bson:"externalId" json:"externalId"`
	SessionID         string             `bson:"sessionId" json:"sessionId"`
	ProviderSessionID string             `bson:"providerSessionId" json:"providerSessionId"`
	IPAddress         string             `bson:"ipAddress" json:"ipAddress"`
	UserAgent         string             `bson:"userAgent" json:"userAgent"`
	DeviceInfo        DeviceInfo         `bson:"deviceInfo" json:"deviceInfo"`
	Location          *Location          `bson:"location,omitempty" json:"location,omitempty"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	LastActivity      time.Time          `bson:"lastActivity" json:"lastActivity"`
	LoginTime         time.Time          `bson:"loginTime" json:"loginTime"`
	LogoutTime        *time.Time         `bson:"logoutTime" json:"logoutTime"`
	SessionDuration   int64              `bson:"sessionDuration" json:"sessionDuration"`
	Metadata          map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SessionStats summarises a user's sessions; durations are in seconds.
type SessionStats struct {
	TotalSessions          int     `bson:"totalSessions" json:"totalSessions"`
	AverageSessionDuration float64 `bson:"averageSessionDuration" json:"averageSessionDuration"`
	TotalSessionTime       int64   `bson:"totalSessionTime" json:"totalSessionTime"`
	LongestSession         int64   `bson:"longestSession" json:"longestSession"`
}

func (s *UserSession) Touch(now time.Time) {
	s.LastActivity = now
	s.UpdatedAt = now
}

// End closes the session and fixes its duration in whole seconds.
func (s *UserSession) End(now time.Time) {
	s.IsActive = false
	s.LogoutTime = &now
	s.SessionDuration = int64(now.Sub(s.LoginTime) / time.Second)
	if s.SessionDuration < 0 {
		s.SessionDuration = 0
	}
	s.UpdatedAt = now
}
