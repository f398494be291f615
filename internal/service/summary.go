package service

import (
	"context"
	"time"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/storage"
)

// DailySummary totals the care events of one window.
type DailySummary struct {
	From         time.Time      `json:"from"`
	To           time.Time      `json:"to"`
	FeedCount    int            `json:"feed_count"`
	FeedMinutes  int            `json:"feed_minutes"`
	BottleML     float64        `json:"bottle_ml"`
	SleepCount   int            `json:"sleep_count"`
	SleepMinutes int            `json:"sleep_minutes"`
	DiaperCounts map[string]int `json:"diaper_counts"`
}

// Summarize counts the events that start in [from, to).
func Summarize(feedings []internal.Feeding, sleeps []internal.Sleep, diapers []internal.Diaper, from, to time.Time) DailySummary {
	s := DailySummary{From: from, To: to, DiaperCounts: map[string]int{}}
	in := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }

	for _, f := range feedings {
		if !in(f.StartAt) {
			continue
		}
		s.FeedCount++
		s.FeedMinutes += f.DurationMinutes
		if f.AmountML != nil {
			s.BottleML += *f.AmountML
		}
	}
	for _, sl := range sleeps {
		if !in(sl.StartAt) {
			continue
		}
		s.SleepCount++
		s.SleepMinutes += sl.DurationMinutes
	}
	for _, d := range diapers {
		if in(d.OccurredAt) {
			s.DiaperCounts[d.Kind]++
		}
	}
	return s
}

// SummarizeLastDay summarizes the 24 hours ending at now.
func SummarizeLastDay(ctx context.Context, store storage.Store, babyID string, now time.Time) (DailySummary, error) {
	feedings, err := store.ListFeedings(ctx, babyID)
	if err != nil {
		return DailySummary{}, err
	}
	sleeps, err := store.ListSleeps(ctx, babyID)
	if err != nil {
		return DailySummary{}, err
	}
	diapers, err := store.ListDiapers(ctx, babyID)
	if err != nil {
		return DailySummary{}, err
	}
	now = now.UTC()
	return Summarize(feedings, sleeps, diapers, now.Add(-24*time.Hour), now), nil
}
