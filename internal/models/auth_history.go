package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventSignup            = "signup"
	EventLogin             = "login"
	EventLogout            = "logout"
	EventPasswordReset     = "password_reset"
	EventEmailVerification = "email_verification"
	EventProfileUpdate     = "profile_update"
)

func IsAuthEventType(t string) bool {
	switch t {
	case EventSignup, EventLogin, EventLogout, EventPasswordReset, EventEmailVerification, EventProfileUpdate:
		return true
	}
	return false
}

type DeviceInfo struct {
	Browser          string `bson:"browser" json:"browser"`
	OS               string `bson:"os" json:"os"`
	Device           string `bson:"device" json:"device"`
	IsMobile         bool   `bson:"isMobile" json:"isMobile"`
	ScreenResolution string `bson:"screenResolution,omitempty" json:"screenResolution,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

type Location struct {
	Country     string       `bson:"country,omitempty" json:"country,omitempty"`
	City        string       `bson:"city,omitempty" json:"city,omitempty"`
	Timezone    string       `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// UserAuthHistory is an append-only record of one authentication event.
type UserAuthHistory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	UserID       string             `bson:"userId" json:"userId"`
	ExternalID   string             `bson:"externalId" json:"externalId"`
	EventType    string             `bson:"eventType" json:"eventType"`
	IPAddress    string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent    string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	DeviceInfo   DeviceInfo         `bson:"deviceInfo" json:"deviceInfo"`
	Location     *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Metadata     map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Success      bool               `bson:"success" json:"success"`
	ErrorMessage string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
