package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

// CareData is everything recorded for one baby.
type CareData struct {
	Baby         internal.Baby
	History      []internal.BabyProfileHistory
	Feedings     []internal.Feeding
	Sleeps       []internal.Sleep
	Diapers      []internal.Diaper
	Reminders    []internal.Reminder
	Measurements []internal.BabyMeasurement
}

func LoadCareData(ctx context.Context, store storage.Store, babyID string) (*CareData, error) {
	baby, err := store.GetBaby(ctx, babyID)
	if err != nil {
		return nil, err
	}
	data := &CareData{Baby: *baby}
	if data.History, err = store.ListProfileHistory(ctx, babyID); err != nil {
		return nil, err
	}
	if data.Feedings, err = store.ListFeedings(ctx, babyID); err != nil {
		return nil, err
	}
	if data.Sleeps, err = store.ListSleeps(ctx, babyID); err != nil {
		return nil, err
	}
	if data.Diapers, err = store.ListDiapers(ctx, babyID); err != nil {
		return nil, err
	}
	if data.Reminders, err = store.ListReminders(ctx, babyID); err != nil {
		return nil, err
	}
	if data.Measurements, err = store.ListMeasurements(ctx, babyID); err != nil {
		return nil, err
	}
	return data, nil
}

// Workbook sheet names.
const (
	SheetProfile      = "Profile"
	SheetHistory      = "Profile history"
	SheetFeedings     = "Feedings"
	SheetSleeps       = "Sleeps"
	SheetDiapers      = "Diapers"
	SheetReminders    = "Reminders"
	SheetMeasurements = "Measurements"
)

// BuildCareWorkbook lays out one sheet per event kind, a header row first.
// The caller closes the returned file.
func BuildCareWorkbook(data *CareData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetProfile); err != nil {
		f.Close()
		return nil, err
	}

	b := data.Baby
	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{
			name:   SheetProfile,
			header: []interface{}{"id", "name", "birth_date", "gender", "weight_kg", "height_cm", "head_circumference_cm", "created_at", "updated_at"},
			rows: [][]interface{}{{b.ID, b.Name, b.BirthDate, b.Gender, cell(b.WeightKg), cell(b.HeightCm),
				cell(b.HeadCircumferenceCm), stamp(b.CreatedAt), stamp(b.UpdatedAt)}},
		},
		{name: SheetHistory, header: []interface{}{"id", "changed_fields", "name", "birth_date", "gender", "weight_kg", "height_cm", "head_circumference_cm", "created_at"}},
		{name: SheetFeedings, header: []interface{}{"id", "kind", "side", "amount_ml", "duration_minutes", "sessions", "start_at", "notes"}},
		{name: SheetSleeps, header: []interface{}{"id", "start_at", "end_at", "duration_minutes", "notes"}},
		{name: SheetDiapers, header: []interface{}{"id", "kind", "occurred_at", "notes"}},
		{name: SheetReminders, header: []interface{}{"id", "title", "remind_at", "done", "notes"}},
		{name: SheetMeasurements, header: []interface{}{"id", "weight_kg", "height_cm", "head_circumference_cm", "measured_at"}},
	}
	for _, h := range data.History {
		p := h.Previous
		sheets[1].rows = append(sheets[1].rows, []interface{}{h.ID, strings.Join(h.ChangedFields, ","),
			cell(p.Name), cell(p.BirthDate), cell(p.Gender), cell(p.WeightKg), cell(p.HeightCm),
			cell(p.HeadCircumferenceCm), stamp(h.CreatedAt)})
	}
	for _, fd := range data.Feedings {
		sheets[2].rows = append(sheets[2].rows, []interface{}{fd.ID, fd.Kind, fd.Side, cell(fd.AmountML),
			fd.DurationMinutes, len(fd.Sessions), stamp(fd.StartAt), fd.Notes})
	}
	for _, s := range data.Sleeps {
		end := ""
		if s.EndAt != nil {
			end = stamp(*s.EndAt)
		}
		sheets[3].rows = append(sheets[3].rows, []interface{}{s.ID, stamp(s.StartAt), end, s.DurationMinutes, s.Notes})
	}
	for _, d := range data.Diapers {
		sheets[4].rows = append(sheets[4].rows, []interface{}{d.ID, d.Kind, stamp(d.OccurredAt), d.Notes})
	}
	for _, r := range data.Reminders {
		sheets[5].rows = append(sheets[5].rows, []interface{}{r.ID, r.Title, stamp(r.RemindAt), r.Done, r.Notes})
	}
	for _, m := range data.Measurements {
		sheets[6].rows = append(sheets[6].rows, []interface{}{m.ID, cell(m.WeightKg), cell(m.HeightCm),
			cell(m.HeadCircumferenceCm), stamp(m.MeasuredAt)})
	}

	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("creating sheet %s: %w", s.name, err)
			}
		}
		if err := writeRows(f, s.name, s.header, s.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// cell renders an optional value, blank when unset.
func cell[T any](p *T) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
