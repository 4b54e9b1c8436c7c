package models

import (
	"net/mail"
	"strings"
	"time"

	"iqscalar-service/internal/apperror"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
	PlanPro     = "pro"

	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

type Subscription struct {
	Plan      string     `bson:"plan" json:"plan"`
	StartDate time.Time  `bson:"startDate" json:"startDate"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Status    string     `bson:"status" json:"status"`
}

type Preferences struct {
	Theme         string `bson:"theme" json:"theme"`
	Notifications bool   `bson:"notifications" json:"notifications"`
	EmailUpdates  bool   `bson:"emailUpdates" json:"emailUpdates"`
}

// User is keyed by the identity provider's id; the service never stores credentials.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ExternalID   string             `bson:"externalId" json:"externalId"`
	Email        string             `bson:"email" json:"email"`
	FullName     string             `bson:"fullName" json:"fullName"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	LastLogin    time.Time          `bson:"lastLogin" json:"lastLogin"`
	Subscription Subscription       `bson:"subscription" json:"subscription"`
	Preferences  Preferences        `bson:"preferences" json:"preferences"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type UserStats struct {
	MemberSince        time.Time `json:"memberSince"`
	LastLogin          time.Time `json:"lastLogin"`
	SubscriptionPlan   string    `json:"subscriptionPlan"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	IsActive           bool      `json:"isActive"`
}

func (u *User) ApplyDefaults(now time.Time) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	if u.Subscription.Plan == "" {
		u.Subscription.Plan = PlanFree
	}
	if u.Subscription.Status == "" {
		u.Subscription.Status = SubscriptionActive
	}
	if u.Subscription.StartDate.IsZero() {
		u.Subscription.StartDate = now
	}
	if u.Preferences.Theme == "" {
		u.Preferences.Theme = ThemeLight
		u.Preferences.Notifications = true
		u.Preferences.EmailUpdates = true
	}
	if u.LastLogin.IsZero() {
		u.LastLogin = now
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.ExternalID) == "" {
		return apperror.Validation("externalId is required")
	}
	if strings.TrimSpace(u.FullName) == "" {
		return apperror.Validation("fullName is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.Validation("email is invalid")
	}
	switch u.Subscription.Plan {
	case PlanFree, PlanPremium, PlanPro:
	default:
		return apperror.Validation("subscription plan must be free, premium or pro")
	}
	switch u.Subscription.Status {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
	default:
		return apperror.Validation("subscription status must be active, expired or cancelled")
	}
	if u.Preferences.Theme != ThemeLight && u.Preferences.Theme != ThemeDark {
		return apperror.Validation("theme must be light or dark")
	}
	return nil
}

// IsSubscriptionActive reports whether the user's plan is currently usable.
// Free plans never expire.
func (u *User) IsSubscriptionActive(now time.Time) bool {
	if u.Subscription.Plan == PlanFree {
		return true
	}
	if u.Subscription.Status != SubscriptionActive {
		return false
	}
	if u.Subscription.EndDate == nil {
		return true
	}
	return u.Subscription.EndDate.After(now)
}

// UpdateSubscription starts a new paid period of the given number of months.
func (u *User) UpdateSubscription(plan string, months int, now time.Time) error {
	switch plan {
	case PlanFree, PlanPremium, PlanPro:
	default:
		return apperror.Validation("subscription plan must be free, premium or pro")
	}
	if months < 1 {
		months = 1
	}
	end := now.AddDate(0, months, 0)
	u.Subscription = Subscription{
		Plan:      plan,
		StartDate: now,
		EndDate:   &end,
		Status:    SubscriptionActive,
	}
	u.UpdatedAt = now
	return nil
}

func (u *User) Stats(now time.Time) UserStats {
	return UserStats{
		MemberSince:        u.CreatedAt,
		LastLogin:          u.LastLogin,
		SubscriptionPlan:   u.Subscription.Plan,
		SubscriptionStatus: u.Subscription.Status,
		IsActive:           u.IsSubscriptionActive(now),
	}
}
