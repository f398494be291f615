package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type SleepRequest struct {
	StartAt         time.Time  `json:"start_at" validate:"required"`
	EndAt           *time.Time `json:"end_at"`
	DurationMinutes *Minutes   `json:"duration_minutes"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

// resolve derives the duration from the single [start_at, end_at] session
// unless an explicit duration is given. An open sleep lasts 0 minutes.
func (body *SleepRequest) resolve() (*internal.Sleep, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	in := DurationInput{DurationMinutes: body.DurationMinutes}
	sl := &internal.Sleep{StartAt: body.StartAt.UTC(), Notes: body.Notes}
	if body.EndAt != nil {
		end := body.EndAt.UTC()
		if end.Before(sl.StartAt) {
			return nil, internal.NewValidationError("end_at", "is before start_at")
		}
		sl.EndAt = &end
		in.Sessions = []SessionInput{{
			StartAt: sl.StartAt.Format(time.RFC3339Nano),
			EndAt:   end.Format(time.RFC3339Nano),
		}}
	}
	minutes, err := ComputeDuration(in)
	if err != nil {
		return nil, err
	}
	sl.DurationMinutes = minutes
	return sl, nil
}

func CreateSleep(ctx context.Context, repo storage.SleepRepository, babyID string, body *SleepRequest) (*internal.Sleep, error) {
	sl, err := body.resolve()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sl.ID, sl.BabyID, sl.CreatedAt, sl.UpdatedAt = uuid.NewString(), babyID, now, now
	if err := repo.SaveSleep(ctx, sl); err != nil {
		return nil, err
	}
	return sl, nil
}

func UpdateSleep(ctx context.Context, repo storage.SleepRepository, babyID, id string, body *SleepRequest) (*internal.Sleep, error) {
	existing, err := repo.GetSleep(ctx, babyID, id)
	if err != nil {
		return nil, err
	}
	sl, err := body.resolve()
	if err != nil {
		return nil, err
	}
	sl.ID, sl.BabyID, sl.CreatedAt, sl.UpdatedAt = existing.ID, existing.BabyID, existing.CreatedAt, time.Now().UTC()
	if err := repo.UpdateSleep(ctx, sl); err != nil {
		return nil, err
	}
	return sl, nil
}
