package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Feeding kinds.
const (
	FeedingBreast = "breast"
	FeedingBottle = "bottle"
	FeedingSolid  = "solid"
)

// Diaper kinds.
const (
	DiaperWet   = "wet"
	DiaperDirty = "dirty"
	DiaperMixed = "mixed"
	DiaperDry   = "dry"
)

type Baby struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Profile
}

// Profile holds the mutable, journaled attributes of a baby.
type Profile struct {
	Name                string   `json:"name"`
	BirthDate           string   `json:"birth_date,omitempty"` // YYYY-MM-DD
	Gender              string   `json:"gender,omitempty"`
	WeightKg            *float64 `json:"weight_kg,omitempty"`
	HeightCm            *float64 `json:"height_cm,omitempty"`
	HeadCircumferenceCm *float64 `json:"head_circumference_cm,omitempty"`
}

// ProfileFields is a partial view of a Profile: nil means "not present".
type ProfileFields struct {
	Name                *string  `json:"name,omitempty"`
	BirthDate           *string  `json:"birth_date,omitempty"`
	Gender              *string  `json:"gender,omitempty"`
	WeightKg            *float64 `json:"weight_kg,omitempty"`
	HeightCm            *float64 `json:"height_cm,omitempty"`
	HeadCircumferenceCm *float64 `json:"head_circumference_cm,omitempty"`
}

// BabyProfileHistory is an append-only snapshot of the values a profile
// update replaced. Previous only carries the fields listed in ChangedFields;
// a nil value there means the field was unset before the update.
type BabyProfileHistory struct {
	ID            string        `json:"id"`
	BabyID        string        `json:"baby_id"`
	ChangedFields []string      `json:"changed_fields"`
	Previous      ProfileFields `json:"previous"`
	CreatedAt     time.Time     `json:"created_at"`
}

type BreastFeedingSession struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

type Feeding struct {
	ID              string                 `json:"id"`
	BabyID          string                 `json:"baby_id"`
	Kind            string                 `json:"kind"`
	Side            string                 `json:"side,omitempty"`
	AmountML        *float64               `json:"amount_ml,omitempty"`
	DurationMinutes int                    `json:"duration_minutes"`
	Sessions        []BreastFeedingSession `json:"sessions,omitempty"`
	StartAt         time.Time              `json:"start_at"`
	Notes           string                 `json:"notes,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type Sleep struct {
	ID              string     `json:"id"`
	BabyID          string     `json:"baby_id"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Diaper struct {
	ID         string    `json:"id"`
	BabyID     string    `json:"baby_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Reminder struct {
	ID        string    `json:"id"`
	BabyID    string    `json:"baby_id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	RemindAt  time.Time `json:"remind_at"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BabyMeasurement struct {
	ID                  string    `json:"id"`
	BabyID              string    `json:"baby_id"`
	WeightKg            *float64  `json:"weight_kg,omitempty"`
	HeightCm            *float64  `json:"height_cm,omitempty"`
	HeadCircumferenceCm *float64  `json:"head_circumference_cm,omitempty"`
	MeasuredAt          time.Time `json:"measured_at"`
	CreatedAt           time.Time `json:"created_at"`
}
