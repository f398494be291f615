package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type DiaperRequest struct {
	Kind       string    `json:"kind" validate:"required,oneof=wet dirty mixed dry"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
	Notes      string    `json:"notes" validate:"max=1000"`
}

func CreateDiaper(ctx context.Context, repo storage.DiaperRepository, babyID string, body *DiaperRequest) (*internal.Diaper, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	d := &internal.Diaper{
		ID:         uuid.NewString(),
		BabyID:     babyID,
		Kind:       body.Kind,
		OccurredAt: body.OccurredAt.UTC(),
		Notes:      body.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.SaveDiaper(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func UpdateDiaper(ctx context.Context, repo storage.DiaperRepository, babyID, id string, body *DiaperRequest) (*internal.Diaper, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	d, err := repo.GetDiaper(ctx, babyID, id)
	if err != nil {
		return nil, err
	}
	d.Kind, d.OccurredAt, d.Notes, d.UpdatedAt = body.Kind, body.OccurredAt.UTC(), body.Notes, time.Now().UTC()
	if err := repo.UpdateDiaper(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
