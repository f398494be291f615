package storage

import (
	"context"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// ProfileUpdateFunc receives the locked current baby row and returns the
// fields to write plus an optional history snapshot. Returning an error
// aborts the update without writing anything.
type ProfileUpdateFunc func(current *internal.Baby) (internal.ProfileFields, *internal.BabyProfileHistory, error)

type BabyRepository interface {
	CreateBaby(ctx context.Context, baby *internal.Baby) error
	GetBaby(ctx context.Context, id string) (*internal.Baby, error)
	ListBabies(ctx context.Context, userID string) ([]internal.Baby, error)
	DeleteBaby(ctx context.Context, id string) error
	// UpdateProfile writes the current row and the history row atomically.
	UpdateProfile(ctx context.Context, babyID string, fn ProfileUpdateFunc) (*internal.Baby, error)
	ListProfileHistory(ctx context.Context, babyID string) ([]internal.BabyProfileHistory, error)
}

type FeedingRepository interface {
	SaveFeeding(ctx context.Context, f *internal.Feeding) error
	UpdateFeeding(ctx context.Context, f *internal.Feeding) error
	GetFeeding(ctx context.Context, babyID, id string) (*internal.Feeding, error)
	ListFeedings(ctx context.Context, babyID string) ([]internal.Feeding, error)
	DeleteFeeding(ctx context.Context, babyID, id string) error
}

type SleepRepository interface {
	SaveSleep(ctx context.Context, s *internal.Sleep) error
	UpdateSleep(ctx context.Context, s *internal.Sleep) error
	GetSleep(ctx context.Context, babyID, id string) (*internal.Sleep, error)
	ListSleeps(ctx context.Context, babyID string) ([]internal.Sleep, error)
	DeleteSleep(ctx context.Context, babyID, id string) error
}

type DiaperRepository interface {
	SaveDiaper(ctx context.Context, d *internal.Diaper) error
	UpdateDiaper(ctx context.Context, d *internal.Diaper) error
	GetDiaper(ctx context.Context, babyID, id string) (*internal.Diaper, error)
	ListDiapers(ctx context.Context, babyID string) ([]internal.Diaper, error)
	DeleteDiaper(ctx context.Context, babyID, id string) error
}

type ReminderRepository interface {
	SaveReminder(ctx context.Context, r *internal.Reminder) error
	UpdateReminder(ctx context.Context, r *internal.Reminder) error
	GetReminder(ctx context.Context, babyID, id string) (*internal.Reminder, error)
	ListReminders(ctx context.Context, babyID string) ([]internal.Reminder, error)
	DeleteReminder(ctx context.Context, babyID, id string) error
}

type MeasurementRepository interface {
	SaveMeasurement(ctx context.Context, m *internal.BabyMeasurement) error
	ListMeasurements(ctx context.Context, babyID string) ([]internal.BabyMeasurement, error)
	DeleteMeasurement(ctx context.Context, babyID, id string) error
}

// Store is everything a backend provides.
type Store interface {
	BabyRepository
	FeedingRepository
	SleepRepository
	DiaperRepository
	ReminderRepository
	MeasurementRepository
	Close() error
}
