package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// MaxDurationMinutes bounds any resolved duration: one week.
const MaxDurationMinutes = 7 * 24 * 60

// Minutes is an explicit duration. It decodes from a JSON number or a
// numeric string; fractions are truncated toward zero by Int.
type Minutes float64

func (m *Minutes) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" {
		return internal.NewValidationError("duration_minutes", "must be a number")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return internal.NewValidationError("duration_minutes", "%q is not a number", s)
	}
	*m = Minutes(f)
	return nil
}

func (m Minutes) Int() int { return int(m) }

// SessionInput is a raw sub-session as posted by a client.
type SessionInput struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
}

// DurationInput is the source a duration is derived from.
type DurationInput struct {
	DurationMinutes *Minutes       `json:"duration_minutes,omitempty"`
	Sessions        []SessionInput `json:"sessions,omitempty"`
}

// ComputeDuration resolves minutes from in. An explicit duration always
// wins; otherwise the session lengths are summed left to right.
func ComputeDuration(in DurationInput) (int, error) {
	if in.DurationMinutes != nil {
		if *in.DurationMinutes < 0 {
			return 0, internal.NewValidationError("duration_minutes", "must not be negative")
		}
		if *in.DurationMinutes >= MaxDurationMinutes+1 {
			return 0, internal.NewValidationError("duration_minutes", "must be at most %d", MaxDurationMinutes)
		}
		return in.DurationMinutes.Int(), nil
	}
	sessions, err := ParseSessions(in.Sessions)
	if err != nil {
		return 0, err
	}
	total := SumSessions(sessions)
	if total > MaxDurationMinutes {
		return 0, internal.NewValidationError("sessions", "total of %d minutes exceeds %d", total, MaxDurationMinutes)
	}
	return total, nil
}

// ParseSessions parses RFC 3339 timestamps. A session that ends before it
// starts is rejected.
func ParseSessions(in []SessionInput) ([]internal.BreastFeedingSession, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]internal.BreastFeedingSession, 0, len(in))
	for i, s := range in {
		start, err := parseTimestamp(s.StartAt)
		if err != nil {
			return nil, internal.NewValidationError(sessionField(i, "start_at"), "%v", err)
		}
		end, err := parseTimestamp(s.EndAt)
		if err != nil {
			return nil, internal.NewValidationError(sessionField(i, "end_at"), "%v", err)
		}
		if end.Before(start) {
			return nil, internal.NewValidationError(sessionField(i, "end_at"), "is before start_at")
		}
		out = append(out, internal.BreastFeedingSession{StartAt: start, EndAt: end})
	}
	return out, nil
}

// SumSessions adds whole minutes per session. No overlap detection.
func SumSessions(sessions []internal.BreastFeedingSession) int {
	total := 0
	for _, s := range sessions {
		total += int(s.EndAt.Sub(s.StartAt) / time.Minute)
	}
	return total
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("is required")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an RFC 3339 timestamp", s)
	}
	return t.UTC(), nil
}

func sessionField(i int, name string) string {
	return fmt.Sprintf("sessions[%d].%s", i, name)
}
