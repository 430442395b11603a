package types

import "time"

// DateFormat is the wire format for calendar dates throughout the API.
const DateFormat = "2006-01-02"

// ProtocolDays is the length of the protocol in days.
const ProtocolDays = 28

// Task represents a single scheduled action within a protocol day.
type Task struct {
	ID          string `json:"id"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// DayEntry represents one day of the 28-day protocol calendar.
// Completed is derived: true iff every task is completed.
type DayEntry struct {
	Day         int    `json:"day"`
	Week        int    `json:"week"`
	Title       string `json:"title"`
	Phase       string `json:"phase"`
	Tasks       []Task `json:"tasks"`
	DieOffScore *int   `json:"dieOffScore,omitempty"`
	Completed   bool   `json:"completed"`
}

// MealEntry represents a single meal logged in a journal entry.
type MealEntry struct {
	Meal  string `json:"meal"`
	Foods string `json:"foods"`
	Notes string `json:"notes"`
}

// JournalEntry represents the free-text reflections for one calendar date.
type JournalEntry struct {
	Date             string      `json:"date"`
	Physical         string      `json:"physical"`
	Emotional        string      `json:"emotional"`
	Cognitive        string      `json:"cognitive"`
	Spiritual        string      `json:"spiritual"`
	DieOffSymptoms   string      `json:"dieOffSymptoms"`
	DieOffIntensity  *int        `json:"dieOffIntensity,omitempty"`
	DieOffMitigation string      `json:"dieOffMitigation"`
	Meals            []MealEntry `json:"meals"`
}

// BiofeedbackEntry represents the physiological and subjective metrics
// logged for one calendar date. All metrics are optional; an omitted
// metric is stored as NULL, not zero.
type BiofeedbackEntry struct {
	Date       string   `json:"date"`
	HRV        *float64 `json:"hrv,omitempty"`
	RestingHR  *int     `json:"restingHR,omitempty"`
	TempDelta  *float64 `json:"tempDelta,omitempty"`
	VO2Max     *float64 `json:"vo2Max,omitempty"`
	ActiveCals *int     `json:"activeCals,omitempty"`
	DeepSleep  *float64 `json:"deepSleep,omitempty"`
	RemSleep   *float64 `json:"remSleep,omitempty"`
	BrainFog   *int     `json:"brainFog,omitempty"`
	Mood       *int     `json:"mood,omitempty"`
	Libido     *int     `json:"libido,omitempty"`
	Energy     *int     `json:"energy,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UserProgress is the aggregate holding all tracked state for one user.
// Map keys are calendar dates (journal, biofeedback) or day numbers (days).
type UserProgress struct {
	CurrentDay         int                         `json:"currentDay"`
	StartDate          string                      `json:"startDate"`
	CompletedDays      []int                       `json:"completedDays"`
	JournalEntries     map[string]JournalEntry     `json:"journalEntries"`
	BiofeedbackEntries map[string]BiofeedbackEntry `json:"biofeedbackEntries"`
	DayEntries         map[int]DayEntry            `json:"dayEntries"`
}

// NewUserProgress returns an empty aggregate positioned at day 1 of the
// protocol, starting today. Maps are allocated so the JSON shape is
// always {} rather than null.
func NewUserProgress(now time.Time) UserProgress {
	return UserProgress{
		CurrentDay:         1,
		StartDate:          now.UTC().Format(DateFormat),
		CompletedDays:      []int{},
		JournalEntries:     map[string]JournalEntry{},
		BiofeedbackEntries: map[string]BiofeedbackEntry{},
		DayEntries:         map[int]DayEntry{},
	}
}

// User represents a registered user profile keyed by the id supplied by
// the external identity provider.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"externalId"`
	Email      string    `json:"email,omitempty"`
	FirstName  string    `json:"firstName,omitempty"`
	LastName   string    `json:"lastName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Supplement describes one row of the static supplement reference table.
type Supplement struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Dosage  string `json:"dosage"`
	Timing  string `json:"timing"`
	Phase   string `json:"phase"`
	Brand   string `json:"brand"`
}

// ProgressResponse is the body of GET /api/progress.
type ProgressResponse struct {
	Progress UserProgress `json:"progress"`
}

// SaveProgressRequest is the body of POST /api/progress.
type SaveProgressRequest struct {
	UserID   string        `json:"userId"`
	Progress *UserProgress `json:"progress"`
}

// SaveProgressResponse is the body of a successful POST /api/progress.
type SaveProgressResponse struct {
	OK bool `json:"ok"`
}

// SetupUserRequest is the body of POST /api/setup-user.
type SetupUserRequest struct {
	UserID    string `json:"userId"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SetupUserResponse is the body of a successful POST /api/setup-user.
type SetupUserResponse struct {
	User User `json:"user"`
}

// SupplementsResponse is the body of GET /api/supplements.
type SupplementsResponse struct {
	Supplements []Supplement `json:"supplements"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UserCount int64  `json:"user_count"`
}

// StoreStats contains aggregate store statistics for health reporting.
type StoreStats struct {
	UserCount int64
}
