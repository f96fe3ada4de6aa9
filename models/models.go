package models

import "time"

// ========== 資料模型 ==========

// Plan lifecycle states.
const (
	StatusDraft     = "draft"
	StatusPlanning  = "planning"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Participant confirmation states.
const (
	ParticipantConfirmed = "confirmed"
	ParticipantDeclined  = "declined"
	ParticipantPending   = "pending"
	ParticipantMaybe     = "maybe"
)

// Participant roles.
const (
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

// Activity categories assigned by the itinerary normalizer.
const (
	CategoryDining        = "dining"
	CategoryCulture       = "culture"
	CategoryShopping      = "shopping"
	CategoryOutdoor       = "outdoor"
	CategoryEntertainment = "entertainment"
)

// Participant is a person invited to a plan. ID doubles as the user
// identifier for collaboration lookups.
type Participant struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	Feedback string `json:"feedback,omitempty"`
}

// PlanDetails are the trip parameters the user fills in on creation.
type PlanDetails struct {
	Destination  string   `json:"destination"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Participants int      `json:"participants"`
	Budget       string   `json:"budget"`
	TravelStyle  []string `json:"travelStyle"`
	Interests    []string `json:"interests"`
}

// Plan is a trip proposal with details, participants, itinerary and a
// lifecycle status. The itinerary, when present, is always the
// normalized shape regardless of which backend format produced it.
type Plan struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Details      PlanDetails   `json:"details"`
	Participants []Participant `json:"participants"`
	Status       string        `json:"status"`
	CreatedBy    string        `json:"createdBy"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Itinerary    []Day         `json:"itinerary,omitempty"`
}

// Day is one day of a normalized itinerary.
type Day struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Theme      string     `json:"theme"`
	Activities []Activity `json:"activities"`
}

// Activity is a single normalized itinerary entry. IDs are
// "{dayIndex}-{activityIndex}" and are stable across re-normalization
// of the same input.
type Activity struct {
	ID          string          `json:"id"`
	TimeSlot    string          `json:"timeSlot"`
	Time        string          `json:"time"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Cost        float64         `json:"cost"`
	Category    string          `json:"category"`
	Details     ActivityDetails `json:"details"`
}

// ActivityDetails carries the optional labeled fields extracted from an
// activity description or supplied by the time-slot backend shape.
type ActivityDetails struct {
	OpenTime    string `json:"openTime"`
	TicketPrice string `json:"ticketPrice"`
	Specialties string `json:"specialties"`
	PerPerson   string `json:"perPerson"`
	Features    string `json:"features"`
	Tips        string `json:"tips"`
}

// CanTransition reports whether a plan may move between lifecycle
// states. The forward path is draft → planning → confirmed → completed;
// cancellation is allowed from any non-terminal state. Setting the same
// status again is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch to {
	case StatusCancelled:
		return from != StatusCompleted && from != StatusCancelled
	case StatusPlanning:
		return from == StatusDraft
	case StatusConfirmed:
		return from == StatusPlanning
	case StatusCompleted:
		return from == StatusConfirmed
	}
	return false
}

// User preferences, notification toggles and privacy toggles.
type Preferences struct {
	Language       string   `json:"language"`
	Currency       string   `json:"currency"`
	Interests      []string `json:"interests"`
	BudgetMin      int      `json:"budgetMin"`
	BudgetMax      int      `json:"budgetMax"`
	Transportation string   `json:"transportation"`
}

type Notifications struct {
	PlanReminder bool `json:"planReminder"`
	FriendInvite bool `json:"friendInvite"`
	WeatherAlert bool `json:"weatherAlert"`
	Promotions   bool `json:"promotions"`
}

type Privacy struct {
	PublicProfile  bool `json:"publicProfile"`
	ShareItinerary bool `json:"shareItinerary"`
}

// User is the current user's profile. It lives only for the page
// session; nothing here is persisted.
type User struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Avatar        string        `json:"avatar,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Preferences   Preferences   `json:"preferences"`
	Notifications Notifications `json:"notifications"`
	Privacy       Privacy       `json:"privacy"`
}
