package models

import (
	"testing"
	"time"
)

func TestIsSubscriptionActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	testCases := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"free is always active", Subscription{Plan: PlanFree, Status: SubscriptionCancelled}, true},
		{"premium cancelled", Subscription{Plan: PlanPremium, Status: SubscriptionCancelled}, false},
		{"premium without end date", Subscription{Plan: PlanPremium, Status: SubscriptionActive}, true},
		{"pro expired by date", Subscription{Plan: PlanPro, Status: SubscriptionActive, EndDate: &past}, false},
		{"pro within period", Subscription{Plan: PlanPro, Status: SubscriptionActive, EndDate: &future}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{Subscription: tc.sub}
			if got := u.IsSubscriptionActive(now); got != tc.want {
				t.Errorf("IsSubscriptionActive() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateSubscription(t *testing.T) {
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	u := &User{}

	if err := u.UpdateSubscription("gold", 1, now); err == nil {
		t.Fatalf("Expected unknown plan to be rejected")
	}
	if err := u.UpdateSubscription(PlanPremium, 3, now); err != nil {
		t.Fatalf("UpdateSubscription returned %v", err)
	}
	if u.Subscription.EndDate == nil || !u.Subscription.EndDate.Equal(now.AddDate(0, 3, 0)) {
		t.Errorf("Unexpected end date %v", u.Subscription.EndDate)
	}
	if !u.IsSubscriptionActive(now) {
		t.Errorf("Expected new subscription to be active")
	}
}

func TestUserDefaultsAndValidate(t *testing.T) {
	u := &User{ExternalID: "ext_1", Email: " Ada@Example.COM ", FullName: "Ada"}
	u.ApplyDefaults(time.Now())

	if u.Email != "ada@example.com" {
		t.Errorf("Expected lowercased email, got %q", u.Email)
	}
	if u.Subscription.Plan != PlanFree || u.Preferences.Theme != ThemeLight {
		t.Errorf("Expected free plan and light theme defaults")
	}
	if err := u.Validate(); err != nil {
		t.Errorf("Expected valid user, got %v", err)
	}

	u.Email = "not-an-email"
	if err := u.Validate(); err == nil {
		t.Errorf("Expected invalid email to be rejected")
	}
}

func TestUserSessionEnd(t *testing.T) {
	login := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := &UserSession{IsActive: true, LoginTime: login}
	s.End(login.Add(90*time.Second + 400*time.Millisecond))

	if s.IsActive || s.LogoutTime == nil {
		t.Fatalf("Expected ended session")
	}
	if s.SessionDuration != 90 {
		t.Errorf("Expected 90 second duration, got %d", s.SessionDuration)
	}
}
