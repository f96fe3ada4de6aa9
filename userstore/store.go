// Package userstore holds the current user's profile, preferences and
// toggle flags. Everything is in-memory CRUD; there is no real login
// flow yet, so the store is seeded with a fixed default profile.
package userstore

import (
	"sync"

	"travelfront/models"
)

// Store is the user-state container. Patches merge shallowly into the
// matching sub-object; nil patch fields leave values unchanged.
type Store struct {
	mu            sync.Mutex
	user          *models.User
	authenticated bool
}

func New() *Store {
	u := defaultUser()
	return &Store{user: &u, authenticated: true}
}

func defaultUser() models.User {
	return models.User{
		ID:     "current_user",
		Name:   "我",
		Email:  "user@example.com",
		Avatar: "👨‍💼",
		Phone:  "138****8888",
		Preferences: models.Preferences{
			Language:       "zh-CN",
			Currency:       "CNY",
			Interests:      []string{"文化", "美食", "自然"},
			BudgetMin:      1000,
			BudgetMax:      5000,
			Transportation: "mixed",
		},
		Notifications: models.Notifications{
			PlanReminder: true,
			FriendInvite: true,
			WeatherAlert: true,
			Promotions:   false,
		},
		Privacy: models.Privacy{
			PublicProfile:  true,
			ShareItinerary: true,
		},
	}
}

// User returns a copy of the current user and whether one is set.
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	cp := *s.user
	cp.Preferences.Interests = append([]string(nil), s.user.Preferences.Interests...)
	return cp, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// UserPatch is a partial profile update.
type UserPatch struct {
	Name   *string
	Email  *string
	Avatar *string
	Phone  *string
}

func (s *Store) UpdateUser(p UserPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if p.Name != nil {
		s.user.Name = *p.Name
	}
	if p.Email != nil {
		s.user.Email = *p.Email
	}
	if p.Avatar != nil {
		s.user.Avatar = *p.Avatar
	}
	if p.Phone != nil {
		s.user.Phone = *p.Phone
	}
}

// PreferencesPatch is a partial preferences update.
type PreferencesPatch struct {
	Language       *string
	Currency       *string
	Interests      []string
	BudgetMin      *int
	BudgetMax      *int
	Transportation *string
}

func (s *Store) UpdatePreferences(p PreferencesPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if p.Language != nil {
		s.user.Preferences.Language = *p.Language
	}
	if p.Currency != nil {
		s.user.Preferences.Currency = *p.Currency
	}
	if p.Interests != nil {
		s.user.Preferences.Interests = append([]string(nil), p.Interests...)
	}
	if p.BudgetMin != nil {
		s.user.Preferences.BudgetMin = *p.BudgetMin
	}
	if p.BudgetMax != nil {
		s.user.Preferences.BudgetMax = *p.BudgetMax
	}
	if p.Transportation != nil {
		s.user.Preferences.Transportation = *p.Transportation
	}
}

// NotificationsPatch is a partial notification-toggle update.
type NotificationsPatch struct {
	PlanReminder *bool
	FriendInvite *bool
	WeatherAlert *bool
	Promotions   *bool
}

func (s *Store) UpdateNotifications(p NotificationsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if p.PlanReminder != nil {
		s.user.Notifications.PlanReminder = *p.PlanReminder
	}
	if p.FriendInvite != nil {
		s.user.Notifications.FriendInvite = *p.FriendInvite
	}
	if p.WeatherAlert != nil {
		s.user.Notifications.WeatherAlert = *p.WeatherAlert
	}
	if p.Promotions != nil {
		s.user.Notifications.Promotions = *p.Promotions
	}
}

// PrivacyPatch is a partial privacy-toggle update.
type PrivacyPatch struct {
	PublicProfile  *bool
	ShareItinerary *bool
}

func (s *Store) UpdatePrivacy(p PrivacyPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return
	}
	if p.PublicProfile != nil {
		s.user.Privacy.PublicProfile = *p.PublicProfile
	}
	if p.ShareItinerary != nil {
		s.user.Privacy.ShareItinerary = *p.ShareItinerary
	}
}

// Login replaces the user record and marks the session authenticated.
// There is no token or session handling; this is a stub.
func (s *Store) Login(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := u
	s.user = &cp
	s.authenticated = true
}

// Logout clears the user record.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.authenticated = false
}
