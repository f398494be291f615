package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

type MeasurementRequest struct {
	WeightKg            *float64  `json:"weight_kg" validate:"omitnil,gt=0,lt=50"`
	HeightCm            *float64  `json:"height_cm" validate:"omitnil,gt=0,lt=200"`
	HeadCircumferenceCm *float64  `json:"head_circumference_cm" validate:"omitnil,gt=0,lt=100"`
	MeasuredAt          time.Time `json:"measured_at" validate:"required"`
}

func CreateMeasurement(ctx context.Context, repo storage.MeasurementRepository, babyID string, body *MeasurementRequest) (*internal.BabyMeasurement, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	if body.WeightKg == nil && body.HeightCm == nil && body.HeadCircumferenceCm == nil {
		return nil, internal.NewValidationError("", "at least one measurement is required")
	}
	m := &internal.BabyMeasurement{
		ID:                  uuid.NewString(),
		BabyID:              babyID,
		WeightKg:            body.WeightKg,
		HeightCm:            body.HeightCm,
		HeadCircumferenceCm: body.HeadCircumferenceCm,
		MeasuredAt:          body.MeasuredAt.UTC(),
		CreatedAt:           time.Now().UTC(),
	}
	if err := repo.SaveMeasurement(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
