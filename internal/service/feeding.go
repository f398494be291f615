package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type FeedingRequest struct {
	Kind     string    `json:"kind" validate:"required,oneof=breast bottle solid"`
	Side     string    `json:"side" validate:"omitempty,oneof=left right both"`
	AmountML *float64  `json:"amount_ml" validate:"omitnil,gte=0,lte=2000"`
	StartAt  time.Time `json:"start_at" validate:"required"`
	Notes    string    `json:"notes" validate:"max=1000"`
	DurationInput
}

// resolve turns the request into a feeding with a fully computed duration.
func (body *FeedingRequest) resolve() (*internal.Feeding, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	if body.Side != "" && body.Kind != internal.FeedingBreast {
		return nil, internal.NewValidationError("side", "only applies to breast feedings")
	}
	sessions, err := ParseSessions(body.Sessions)
	if err != nil {
		return nil, err
	}
	minutes, err := ComputeDuration(body.DurationInput)
	if err != nil {
		return nil, err
	}
	return &internal.Feeding{
		Kind:            body.Kind,
		Side:            body.Side,
		AmountML:        body.AmountML,
		DurationMinutes: minutes,
		Sessions:        sessions,
		StartAt:         body.StartAt.UTC(),
		Notes:           body.Notes,
	}, nil
}

func CreateFeeding(ctx context.Context, repo storage.FeedingRepository, babyID string, body *FeedingRequest) (*internal.Feeding, error) {
	f, err := body.resolve()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	f.ID, f.BabyID, f.CreatedAt, f.UpdatedAt = uuid.NewString(), babyID, now, now
	if err := repo.SaveFeeding(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFeeding replaces an existing feeding and recomputes its duration.
func UpdateFeeding(ctx context.Context, repo storage.FeedingRepository, babyID, id string, body *FeedingRequest) (*internal.Feeding, error) {
	existing, err := repo.GetFeeding(ctx, babyID, id)
	if err != nil {
		return nil, err
	}
	f, err := body.resolve()
	if err != nil {
		return nil, err
	}
	f.ID, f.BabyID, f.CreatedAt, f.UpdatedAt = existing.ID, existing.BabyID, existing.CreatedAt, time.Now().UTC()
	if err := repo.UpdateFeeding(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
