package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

// ProfileChange is the result of reconciling a profile update: the fields to
// write to the current row and, when anything differs, the history snapshot.
type ProfileChange struct {
	Update  internal.ProfileFields
	History *internal.BabyProfileHistory
}

// profileField describes one journaled attribute.
type profileField struct {
	name    string
	present func(f *internal.ProfileFields) bool
	equal   func(next, prev *internal.ProfileFields) bool
	copy    func(dst, src *internal.ProfileFields)
}

// profileFields is the declared field list, in the order history records
// report them.
var profileFields = []profileField{
	{
		name:    "name",
		present: func(f *internal.ProfileFields) bool { return f.Name != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return eqPtr(n.Name, p.Name) },
		copy:    func(d, s *internal.ProfileFields) { d.Name = clonePtr(s.Name) },
	},
	{
		name:    "birth_date",
		present: func(f *internal.ProfileFields) bool { return f.BirthDate != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return deref(n.BirthDate) == deref(p.BirthDate) },
		copy:    func(d, s *internal.ProfileFields) { d.BirthDate = clonePtr(s.BirthDate) },
	},
	{
		name:    "gender",
		present: func(f *internal.ProfileFields) bool { return f.Gender != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return deref(n.Gender) == deref(p.Gender) },
		copy:    func(d, s *internal.ProfileFields) { d.Gender = clonePtr(s.Gender) },
	},
	{
		name:    "weight_kg",
		present: func(f *internal.ProfileFields) bool { return f.WeightKg != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return eqPtr(n.WeightKg, p.WeightKg) },
		copy:    func(d, s *internal.ProfileFields) { d.WeightKg = clonePtr(s.WeightKg) },
	},
	{
		name:    "height_cm",
		present: func(f *internal.ProfileFields) bool { return f.HeightCm != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return eqPtr(n.HeightCm, p.HeightCm) },
		copy:    func(d, s *internal.ProfileFields) { d.HeightCm = clonePtr(s.HeightCm) },
	},
	{
		name:    "head_circumference_cm",
		present: func(f *internal.ProfileFields) bool { return f.HeadCircumferenceCm != nil },
		equal:   func(n, p *internal.ProfileFields) bool { return eqPtr(n.HeadCircumferenceCm, p.HeadCircumferenceCm) },
		copy:    func(d, s *internal.ProfileFields) { d.HeadCircumferenceCm = clonePtr(s.HeadCircumferenceCm) },
	},
}

// ProfileReconciler diffs a proposed profile update against the previous
// values. It holds no state beyond its clock and id source.
type ProfileReconciler struct {
	Now   func() time.Time
	NewID func() string
}

func NewProfileReconciler() *ProfileReconciler {
	return &ProfileReconciler{Now: time.Now, NewID: uuid.NewString}
}

// Reconcile splits current into the fields to write and a snapshot of the
// previous values of the fields that actually change. Empty optional text
// and an unset value compare equal.
func (r *ProfileReconciler) Reconcile(current, previous internal.ProfileFields, babyID string) (ProfileChange, error) {
	if strings.TrimSpace(babyID) == "" {
		return ProfileChange{}, internal.NewValidationError("baby_id", "is required")
	}

	var change ProfileChange
	var changed []string
	var prev internal.ProfileFields
	for _, f := range profileFields {
		if !f.present(&current) {
			continue
		}
		f.copy(&change.Update, &current)
		if f.equal(&current, &previous) {
			continue
		}
		changed = append(changed, f.name)
		f.copy(&prev, &previous)
	}
	if len(changed) == 0 {
		return change, nil
	}

	change.History = &internal.BabyProfileHistory{
		ID:            r.NewID(),
		BabyID:        babyID,
		ChangedFields: changed,
		Previous:      prev,
		CreatedAt:     r.Now().UTC(),
	}
	return change, nil
}

type BabyRequest struct {
	Name                string   `json:"name" validate:"required,max=100"`
	BirthDate           string   `json:"birth_date" validate:"optional_date"`
	Gender              string   `json:"gender" validate:"oneof=female male other ''"`
	WeightKg            *float64 `json:"weight_kg" validate:"omitnil,gt=0,lt=50"`
	HeightCm            *float64 `json:"height_cm" validate:"omitnil,gt=0,lt=200"`
	HeadCircumferenceCm *float64 `json:"head_circumference_cm" validate:"omitnil,gt=0,lt=100"`
}

// ProfileUpdateRequest is a partial update: absent fields are left alone.
// An empty string clears birth_date or gender.
type ProfileUpdateRequest struct {
	Name                *string  `json:"name" validate:"omitnil,min=1,max=100"`
	BirthDate           *string  `json:"birth_date" validate:"omitnil,optional_date"`
	Gender              *string  `json:"gender" validate:"omitnil,oneof=female male other ''"`
	WeightKg            *float64 `json:"weight_kg" validate:"omitnil,gt=0,lt=50"`
	HeightCm            *float64 `json:"height_cm" validate:"omitnil,gt=0,lt=200"`
	HeadCircumferenceCm *float64 `json:"head_circumference_cm" validate:"omitnil,gt=0,lt=100"`
}

func (r *ProfileUpdateRequest) Fields() internal.ProfileFields {
	f := internal.ProfileFields{
		Name:                r.Name,
		BirthDate:           r.BirthDate,
		Gender:              r.Gender,
		WeightKg:            r.WeightKg,
		HeightCm:            r.HeightCm,
		HeadCircumferenceCm: r.HeadCircumferenceCm,
	}
	if f.Name != nil {
		f.Name = clonePtr(f.Name)
		*f.Name = strings.TrimSpace(*f.Name)
	}
	return f
}

func CreateBaby(ctx context.Context, repo storage.BabyRepository, user *internal.User, body *BabyRequest) (*internal.Baby, error) {
	if err := validateStruct(body); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	baby := &internal.Baby{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
		Profile: internal.Profile{
			Name:                strings.TrimSpace(body.Name),
			BirthDate:           body.BirthDate,
			Gender:              body.Gender,
			WeightKg:            body.WeightKg,
			HeightCm:            body.HeightCm,
			HeadCircumferenceCm: body.HeadCircumferenceCm,
		},
	}
	if err := repo.CreateBaby(ctx, baby); err != nil {
		return nil, err
	}
	return baby, nil
}

// UpdateBabyProfile reconciles body against the locked current row and
// lets the repository write the row and its history atomically. The
// returned history is nil when no field changed.
func UpdateBabyProfile(ctx context.Context, repo storage.BabyRepository, r *ProfileReconciler, babyID string, body *ProfileUpdateRequest) (*internal.Baby, *internal.BabyProfileHistory, error) {
	if err := validateStruct(body); err != nil {
		return nil, nil, err
	}
	update := body.Fields()
	if update.Name != nil && *update.Name == "" {
		return nil, nil, internal.NewValidationError("name", "must not be blank")
	}
	var written *internal.BabyProfileHistory
	baby, err := repo.UpdateProfile(ctx, babyID, func(current *internal.Baby) (internal.ProfileFields, *internal.BabyProfileHistory, error) {
		change, err := r.Reconcile(update, current.Profile.Fields(), current.ID)
		if err != nil {
			return internal.ProfileFields{}, nil, err
		}
		written = change.History
		return change.Update, change.History, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return baby, written, nil
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
