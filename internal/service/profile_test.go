package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testReconciler() *ProfileReconciler {
	return &ProfileReconciler{Now: func() time.Time { return fixedNow }, NewID: func() string { return "hist-1" }}
}

func TestReconcile_NoChange(t *testing.T) {
	change, err := testReconciler().Reconcile(
		internal.ProfileFields{WeightKg: ptr(5.0)},
		internal.ProfileFields{WeightKg: ptr(5.0)},
		"baby-1",
	)
	require.NoError(t, err)
	assert.Nil(t, change.History)
	require.NotNil(t, change.Update.WeightKg)
	assert.Equal(t, 5.0, *change.Update.WeightKg)
}

func TestReconcile_PartialChange(t *testing.T) {
	change, err := testReconciler().Reconcile(
		internal.ProfileFields{WeightKg: ptr(6.0), HeightCm: ptr(50.0)},
		internal.ProfileFields{WeightKg: ptr(5.0), HeightCm: ptr(50.0)},
		"baby-1",
	)
	require.NoError(t, err)
	assert.Equal(t, internal.ProfileFields{WeightKg: ptr(6.0), HeightCm: ptr(50.0)}, change.Update)

	require.NotNil(t, change.History)
	h := change.History
	assert.Equal(t, "baby-1", h.BabyID)
	assert.Equal(t, "hist-1", h.ID)
	assert.Equal(t, fixedNow, h.CreatedAt)
	assert.Equal(t, []string{"weight_kg"}, h.ChangedFields)
	assert.Equal(t, internal.ProfileFields{WeightKg: ptr(5.0)}, h.Previous)
}

func TestReconcile_MissingBabyID(t *testing.T) {
	for _, id := range []string{"", "   "} {
		_, err := testReconciler().Reconcile(
			internal.ProfileFields{WeightKg: ptr(6.0)},
			internal.ProfileFields{WeightKg: ptr(5.0)},
			id,
		)
		assert.True(t, internal.IsValidation(err), "id %q", id)
	}
}

func TestReconcile_IdempotentReapply(t *testing.T) {
	r := testReconciler()
	update := internal.ProfileFields{Name: ptr("Noa"), WeightKg: ptr(6.0)}
	previous := internal.ProfileFields{Name: ptr("Mia"), WeightKg: ptr(5.0)}

	first, err := r.Reconcile(update, previous, "baby-1")
	require.NoError(t, err)
	require.NotNil(t, first.History)
	assert.Equal(t, []string{"name", "weight_kg"}, first.History.ChangedFields)

	p := internal.Profile{Name: "Mia", WeightKg: ptr(5.0)}
	first.Update.ApplyTo(&p)
	second, err := r.Reconcile(update, p.Fields(), "baby-1")
	require.NoError(t, err)
	assert.Nil(t, second.History)
}

func TestReconcile_EmptyCurrentIsNoop(t *testing.T) {
	change, err := testReconciler().Reconcile(internal.ProfileFields{}, internal.ProfileFields{Name: ptr("Mia")}, "baby-1")
	require.NoError(t, err)
	assert.True(t, change.Update.IsEmpty())
	assert.Nil(t, change.History)
}

func TestReconcile_UnsetPreviousAndClearing(t *testing.T) {
	change, err := testReconciler().Reconcile(
		internal.ProfileFields{HeightCm: ptr(51.0), Gender: ptr("")},
		internal.ProfileFields{},
		"baby-1",
	)
	require.NoError(t, err)
	require.NotNil(t, change.History)
	assert.Equal(t, []string{"height_cm"}, change.History.ChangedFields)
	assert.Nil(t, change.History.Previous.HeightCm)
	require.NotNil(t, change.Update.Gender)
}

func TestReconcile_DoesNotAliasInputs(t *testing.T) {
	w := 5.0
	previous := internal.ProfileFields{WeightKg: &w}
	current := internal.ProfileFields{WeightKg: ptr(6.0)}

	change, err := testReconciler().Reconcile(current, previous, "baby-1")
	require.NoError(t, err)
	*change.History.Previous.WeightKg = 100
	*change.Update.WeightKg = 200

	assert.Equal(t, 5.0, w)
	assert.Equal(t, 6.0, *current.WeightKg)
}

func TestUpdateBabyProfile_JournalsOnce(t *testing.T) {
	for name, store := range testutil.Backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			baby, err := CreateBaby(ctx, store, &internal.User{ID: "u1"}, &BabyRequest{Name: "Mia", WeightKg: ptr(3.2)})
			require.NoError(t, err)

			body := &ProfileUpdateRequest{WeightKg: ptr(4.0), Gender: ptr("female")}
			for i := 0; i < 2; i++ {
				updated, written, err := UpdateBabyProfile(ctx, store, NewProfileReconciler(), baby.ID, body)
				require.NoError(t, err)
				assert.Equal(t, i == 0, written != nil)
				assert.Equal(t, "female", updated.Gender)
				assert.Equal(t, 4.0, *updated.WeightKg)
			}

			history, err := store.ListProfileHistory(ctx, baby.ID)
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, []string{"gender", "weight_kg"}, history[0].ChangedFields)
			assert.Equal(t, 3.2, *history[0].Previous.WeightKg)
			assert.Nil(t, history[0].Previous.Gender)
		})
	}
}

func TestUpdateBabyProfile_Validation(t *testing.T) {
	store := testutil.NewFileStore(t)
	ctx := context.Background()
	baby, err := CreateBaby(ctx, store, &internal.User{ID: "u1"}, &BabyRequest{Name: "Mia"})
	require.NoError(t, err)

	bad := []*ProfileUpdateRequest{
		{Name: ptr("  ")},
		{Name: ptr("")},
		{BirthDate: ptr("2024-13-40")},
		{Gender: ptr("unknown")},
		{WeightKg: ptr(-1.0)},
	}
	for _, body := range bad {
		_, _, err := UpdateBabyProfile(ctx, store, NewProfileReconciler(), baby.ID, body)
		assert.True(t, internal.IsValidation(err), "%+v", body)
	}

	_, _, err = UpdateBabyProfile(ctx, store, NewProfileReconciler(), baby.ID, &ProfileUpdateRequest{BirthDate: ptr("")})
	assert.NoError(t, err)

	_, _, err = UpdateBabyProfile(ctx, store, NewProfileReconciler(), "missing", &ProfileUpdateRequest{Name: ptr("X")})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestCreateBaby_Validation(t *testing.T) {
	store := testutil.NewFileStore(t)
	_, err := CreateBaby(context.Background(), store, &internal.User{ID: "u1"}, &BabyRequest{Name: ""})
	var ve *internal.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = CreateBaby(context.Background(), store, &internal.User{ID: "u1"}, &BabyRequest{Name: "Mia", BirthDate: "01/02/2024"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "birth_date", ve.Field)
}
