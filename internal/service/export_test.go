package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/testutil"
)

func TestBuildCareWorkbook(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	baby, err := CreateBaby(ctx, store, &internal.User{ID: "u1"}, &BabyRequest{Name: "Mia", WeightKg: ptr(3.1)})
	require.NoError(t, err)
	_, _, err = UpdateBabyProfile(ctx, store, NewProfileReconciler(), baby.ID, &ProfileUpdateRequest{WeightKg: ptr(3.6)})
	require.NoError(t, err)
	_, err = CreateFeeding(ctx, store, baby.ID, &FeedingRequest{Kind: internal.FeedingBottle, AmountML: ptr(60.0), StartAt: at,
		DurationInput: DurationInput{DurationMinutes: minutes(15)}})
	require.NoError(t, err)
	_, err = CreateDiaper(ctx, store, baby.ID, &DiaperRequest{Kind: internal.DiaperWet, OccurredAt: at})
	require.NoError(t, err)

	data, err := LoadCareData(ctx, store, baby.ID)
	require.NoError(t, err)
	wb, err := BuildCareWorkbook(data)
	require.NoError(t, err)
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetProfile, SheetHistory, SheetFeedings, SheetSleeps, SheetDiapers, SheetReminders, SheetMeasurements}, f.GetSheetList())

	rows, err := f.GetRows(SheetFeedings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "duration_minutes", rows[0][4])
	assert.Equal(t, "15", rows[1][4])
	assert.Equal(t, "2024-03-01T09:00:00Z", rows[1][6])

	rows, err = f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "weight_kg", rows[1][1])
	assert.Equal(t, "3.1", rows[1][5])

	rows, err = f.GetRows(SheetSleeps)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLoadCareData_MissingBaby(t *testing.T) {
	_, err := LoadCareData(context.Background(), testutil.NewFileStore(t), "nope")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}
