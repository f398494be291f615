package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type ReminderRequest struct {
	Title    string    `json:"title" validate:"required,max=200"`
	Notes    string    `json:"notes" validate:"max=1000"`
	RemindAt time.Time `json:"remind_at" validate:"required"`
	Done     bool      `json:"done"`
}

func CreateReminder(ctx context.Context, repo storage.ReminderRepository, babyID string, body *ReminderRequest) (*internal.Reminder, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r := &internal.Reminder{
		ID:        uuid.NewString(),
		BabyID:    babyID,
		Title:     body.Title,
		Notes:     body.Notes,
		RemindAt:  body.RemindAt.UTC(),
		Done:      body.Done,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.SaveReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func UpdateReminder(ctx context.Context, repo storage.ReminderRepository, babyID, id string, body *ReminderRequest) (*internal.Reminder, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	r, err := repo.GetReminder(ctx, babyID, id)
	if err != nil {
		return nil, err
	}
	r.Title, r.Notes, r.RemindAt, r.Done = body.Title, body.Notes, body.RemindAt.UTC(), body.Done
	r.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// PendingReminders keeps the reminders not yet done, soonest first.
func PendingReminders(reminders []internal.Reminder) []internal.Reminder {
	out := []internal.Reminder{}
	for i := len(reminders) - 1; i >= 0; i-- {
		if !reminders[i].Done {
			out = append(out, reminders[i])
		}
	}
	return out
}
