package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// dialect covers the few places sqlite and postgres disagree.
type dialect struct {
	name      string
	numbered  bool   // $1, $2 ... instead of ?
	forUpdate string // row lock suffix for SELECT inside a transaction
}

var (
	sqliteDialect   = dialect{name: "sqlite"}
	postgresDialect = dialect{name: "postgres", numbered: true, forUpdate: " FOR UPDATE"}
)

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore implements Store over database/sql. Both the sqlite and the
// postgres backends use it.
type SQLStore struct {
	db     *sql.DB
	uow    UnitOfWork
	d      dialect
	logger internal.Logger
	close  func() error
}

func newSQLStore(db *sql.DB, d dialect, uow UnitOfWork, logger internal.Logger) *SQLStore {
	return &SQLStore{db: db, uow: uow, d: d, logger: logger, close: db.Close}
}

func (s *SQLStore) Close() error {
	return s.close()
}

// Ping reports whether the database answers.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) exec(ctx context.Context, q DBTX, op, query string, args ...any) (sql.Result, error) {
	res, err := q.ExecContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		s.logger.Errorf("storage: %s failed: %v", op, err)
		return nil, internal.WrapStorage(op, err)
	}
	return res, nil
}

// execOne is exec for statements that must touch exactly one row.
func (s *SQLStore) execOne(ctx context.Context, op, kind, id, query string, args ...any) error {
	res, err := s.exec(ctx, s.db, op, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return internal.WrapStorage(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, internal.ErrNotFound)
	}
	return nil
}

func (s *SQLStore) query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		s.logger.Errorf("storage: %s failed: %v", op, err)
		return nil, internal.WrapStorage(op, err)
	}
	return rows, nil
}

func notFoundOr(op, kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, internal.ErrNotFound)
	}
	return internal.WrapStorage(op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// --- BabyRepository ---

const babyColumns = `id, user_id, name, birth_date, gender, weight_kg, height_cm, head_circumference_cm, created_at, updated_at`

func scanBaby(row rowScanner) (*internal.Baby, error) {
	var b internal.Baby
	var weight, height, head sql.NullFloat64
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.BirthDate, &b.Gender, &weight, &height, &head, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.WeightKg, b.HeightCm, b.HeadCircumferenceCm = floatPtr(weight), floatPtr(height), floatPtr(head)
	return &b, nil
}

func (s *SQLStore) CreateBaby(ctx context.Context, b *internal.Baby) error {
	_, err := s.exec(ctx, s.db, "insert baby",
		`INSERT INTO babies (`+babyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.BirthDate, b.Gender,
		nullable(b.WeightKg), nullable(b.HeightCm), nullable(b.HeadCircumferenceCm),
		b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	return err
}

func (s *SQLStore) GetBaby(ctx context.Context, id string) (*internal.Baby, error) {
	return s.getBaby(ctx, s.db, id, false)
}

func (s *SQLStore) getBaby(ctx context.Context, q DBTX, id string, lock bool) (*internal.Baby, error) {
	query := `SELECT ` + babyColumns + ` FROM babies WHERE id = ?`
	if lock {
		query += s.d.forUpdate
	}
	b, err := scanBaby(q.QueryRowContext(ctx, s.d.rebind(query), id))
	if err != nil {
		return nil, notFoundOr("get baby", "baby", id, err)
	}
	return b, nil
}

func (s *SQLStore) ListBabies(ctx context.Context, userID string) ([]internal.Baby, error) {
	rows, err := s.query(ctx, "list babies",
		`SELECT `+babyColumns+` FROM babies WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	babies := []internal.Baby{}
	for rows.Next() {
		b, err := scanBaby(rows)
		if err != nil {
			return nil, internal.WrapStorage("scan baby", err)
		}
		babies = append(babies, *b)
	}
	return babies, internal.WrapStorage("list babies", rows.Err())
}

func (s *SQLStore) DeleteBaby(ctx context.Context, id string) error {
	return s.execOne(ctx, "delete baby", "baby", id, `DELETE FROM babies WHERE id = ?`, id)
}

func (s *SQLStore) UpdateProfile(ctx context.Context, babyID string, fn ProfileUpdateFunc) (*internal.Baby, error) {
	var updated *internal.Baby
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		baby, err := s.getBaby(ctx, tx, babyID, true)
		if err != nil {
			return err
		}
		current := *baby
		update, history, err := fn(&current)
		if err != nil {
			return err
		}
		if update.IsEmpty() && history == nil {
			updated = baby
			return nil
		}

		update.ApplyTo(&baby.Profile)
		baby.UpdatedAt = time.Now().UTC()
		if _, err := s.exec(ctx, tx, "update baby profile",
			`UPDATE babies SET name = ?, birth_date = ?, gender = ?, weight_kg = ?, height_cm = ?,
				head_circumference_cm = ?, updated_at = ? WHERE id = ?`,
			baby.Name, baby.BirthDate, baby.Gender,
			nullable(baby.WeightKg), nullable(baby.HeightCm), nullable(baby.HeadCircumferenceCm),
			baby.UpdatedAt, baby.ID); err != nil {
			return err
		}

		if history != nil {
			if err := s.insertHistory(ctx, tx, history); err != nil {
				return err
			}
		}
		updated = baby
		return nil
	})
	if err != nil {
		return nil, internal.WrapStorage("update profile", err)
	}
	return updated, nil
}

func (s *SQLStore) insertHistory(ctx context.Context, tx DBTX, h *internal.BabyProfileHistory) error {
	changed, err := json.Marshal(h.ChangedFields)
	if err != nil {
		return internal.WrapStorage("encode changed fields", err)
	}
	p := h.Previous
	_, err = s.exec(ctx, tx, "insert profile history",
		`INSERT INTO baby_profile_history (id, baby_id, changed_fields, name, birth_date, gender,
			weight_kg, height_cm, head_circumference_cm, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.BabyID, string(changed),
		nullable(p.Name), nullable(p.BirthDate), nullable(p.Gender),
		nullable(p.WeightKg), nullable(p.HeightCm), nullable(p.HeadCircumferenceCm),
		h.CreatedAt.UTC())
	return err
}

func (s *SQLStore) ListProfileHistory(ctx context.Context, babyID string) ([]internal.BabyProfileHistory, error) {
	rows, err := s.query(ctx, "list profile history",
		`SELECT id, baby_id, changed_fields, name, birth_date, gender, weight_kg, height_cm,
			head_circumference_cm, created_at
		FROM baby_profile_history WHERE baby_id = ? ORDER BY created_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.BabyProfileHistory{}
	for rows.Next() {
		var h internal.BabyProfileHistory
		var changed string
		var name, birth, gender sql.NullString
		var weight, height, head sql.NullFloat64
		if err := rows.Scan(&h.ID, &h.BabyID, &changed, &name, &birth, &gender, &weight, &height, &head, &h.CreatedAt); err != nil {
			return nil, internal.WrapStorage("scan profile history", err)
		}
		if err := json.Unmarshal([]byte(changed), &h.ChangedFields); err != nil {
			return nil, internal.WrapStorage("decode changed fields", err)
		}
		h.Previous = internal.ProfileFields{
			Name:                stringPtr(name),
			BirthDate:           stringPtr(birth),
			Gender:              stringPtr(gender),
			WeightKg:            floatPtr(weight),
			HeightCm:            floatPtr(height),
			HeadCircumferenceCm: floatPtr(head),
		}
		out = append(out, h)
	}
	return out, internal.WrapStorage("list profile history", rows.Err())
}

// --- FeedingRepository ---

const feedingColumns = `id, baby_id, kind, side, amount_ml, duration_minutes, sessions, start_at, notes, created_at, updated_at`

func scanFeeding(row rowScanner) (*internal.Feeding, error) {
	var f internal.Feeding
	var amount sql.NullFloat64
	var sessions string
	if err := row.Scan(&f.ID, &f.BabyID, &f.Kind, &f.Side, &amount, &f.DurationMinutes, &sessions,
		&f.StartAt, &f.Notes, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.AmountML = floatPtr(amount)
	if sessions != "" {
		if err := json.Unmarshal([]byte(sessions), &f.Sessions); err != nil {
			return nil, fmt.Errorf("decoding sessions: %w", err)
		}
	}
	return &f, nil
}

func encodeSessions(sessions []internal.BreastFeedingSession) (string, error) {
	if sessions == nil {
		sessions = []internal.BreastFeedingSession{}
	}
	b, err := json.Marshal(sessions)
	if err != nil {
		return "", internal.WrapStorage("encode sessions", err)
	}
	return string(b), nil
}

func (s *SQLStore) SaveFeeding(ctx context.Context, f *internal.Feeding) error {
	sessions, err := encodeSessions(f.Sessions)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db, "insert feeding",
		`INSERT INTO feedings (`+feedingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.BabyID, f.Kind, f.Side, nullable(f.AmountML), f.DurationMinutes, sessions,
		f.StartAt.UTC(), f.Notes, f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	return err
}

func (s *SQLStore) UpdateFeeding(ctx context.Context, f *internal.Feeding) error {
	sessions, err := encodeSessions(f.Sessions)
	if err != nil {
		return err
	}
	return s.execOne(ctx, "update feeding", "feeding", f.ID,
		`UPDATE feedings SET kind = ?, side = ?, amount_ml = ?, duration_minutes = ?, sessions = ?,
			start_at = ?, notes = ?, updated_at = ?
		WHERE id = ? AND baby_id = ?`,
		f.Kind, f.Side, nullable(f.AmountML), f.DurationMinutes, sessions,
		f.StartAt.UTC(), f.Notes, f.UpdatedAt.UTC(), f.ID, f.BabyID)
}

func (s *SQLStore) GetFeeding(ctx context.Context, babyID, id string) (*internal.Feeding, error) {
	f, err := scanFeeding(s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+feedingColumns+` FROM feedings WHERE id = ? AND baby_id = ?`), id, babyID))
	if err != nil {
		return nil, notFoundOr("get feeding", "feeding", id, err)
	}
	return f, nil
}

func (s *SQLStore) ListFeedings(ctx context.Context, babyID string) ([]internal.Feeding, error) {
	rows, err := s.query(ctx, "list feedings",
		`SELECT `+feedingColumns+` FROM feedings WHERE baby_id = ? ORDER BY start_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Feeding{}
	for rows.Next() {
		f, err := scanFeeding(rows)
		if err != nil {
			return nil, internal.WrapStorage("scan feeding", err)
		}
		out = append(out, *f)
	}
	return out, internal.WrapStorage("list feedings", rows.Err())
}

func (s *SQLStore) DeleteFeeding(ctx context.Context, babyID, id string) error {
	return s.execOne(ctx, "delete feeding", "feeding", id,
		`DELETE FROM feedings WHERE id = ? AND baby_id = ?`, id, babyID)
}

// --- SleepRepository ---

const sleepColumns = `id, baby_id, start_at, end_at, duration_minutes, notes, created_at, updated_at`

func scanSleep(row rowScanner) (*internal.Sleep, error) {
	var sl internal.Sleep
	var end sql.NullTime
	if err := row.Scan(&sl.ID, &sl.BabyID, &sl.StartAt, &end, &sl.DurationMinutes, &sl.Notes, &sl.CreatedAt, &sl.UpdatedAt); err != nil {
		return nil, err
	}
	if end.Valid {
		t := end.Time
		sl.EndAt = &t
	}
	return &sl, nil
}

func (s *SQLStore) SaveSleep(ctx context.Context, sl *internal.Sleep) error {
	_, err := s.exec(ctx, s.db, "insert sleep",
		`INSERT INTO sleeps (`+sleepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sl.ID, sl.BabyID, sl.StartAt.UTC(), nullableTime(sl.EndAt), sl.DurationMinutes, sl.Notes,
		sl.CreatedAt.UTC(), sl.UpdatedAt.UTC())
	return err
}

func (s *SQLStore) UpdateSleep(ctx context.Context, sl *internal.Sleep) error {
	return s.execOne(ctx, "update sleep", "sleep", sl.ID,
		`UPDATE sleeps SET start_at = ?, end_at = ?, duration_minutes = ?, notes = ?, updated_at = ?
		WHERE id = ? AND baby_id = ?`,
		sl.StartAt.UTC(), nullableTime(sl.EndAt), sl.DurationMinutes, sl.Notes, sl.UpdatedAt.UTC(), sl.ID, sl.BabyID)
}

func (s *SQLStore) GetSleep(ctx context.Context, babyID, id string) (*internal.Sleep, error) {
	sl, err := scanSleep(s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+sleepColumns+` FROM sleeps WHERE id = ? AND baby_id = ?`), id, babyID))
	if err != nil {
		return nil, notFoundOr("get sleep", "sleep", id, err)
	}
	return sl, nil
}

func (s *SQLStore) ListSleeps(ctx context.Context, babyID string) ([]internal.Sleep, error) {
	rows, err := s.query(ctx, "list sleeps",
		`SELECT `+sleepColumns+` FROM sleeps WHERE baby_id = ? ORDER BY start_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Sleep{}
	for rows.Next() {
		sl, err := scanSleep(rows)
		if err != nil {
			return nil, internal.WrapStorage("scan sleep", err)
		}
		out = append(out, *sl)
	}
	return out, internal.WrapStorage("list sleeps", rows.Err())
}

func (s *SQLStore) DeleteSleep(ctx context.Context, babyID, id string) error {
	return s.execOne(ctx, "delete sleep", "sleep", id,
		`DELETE FROM sleeps WHERE id = ? AND baby_id = ?`, id, babyID)
}

// --- DiaperRepository ---

const diaperColumns = `id, baby_id, kind, occurred_at, notes, created_at, updated_at`

func scanDiaper(row rowScanner) (*internal.Diaper, error) {
	var d internal.Diaper
	if err := row.Scan(&d.ID, &d.BabyID, &d.Kind, &d.OccurredAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLStore) SaveDiaper(ctx context.Context, d *internal.Diaper) error {
	_, err := s.exec(ctx, s.db, "insert diaper",
		`INSERT INTO diapers (`+diaperColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.BabyID, d.Kind, d.OccurredAt.UTC(), d.Notes, d.CreatedAt.UTC(), d.UpdatedAt.UTC())
	return err
}

func (s *SQLStore) UpdateDiaper(ctx context.Context, d *internal.Diaper) error {
	return s.execOne(ctx, "update diaper", "diaper", d.ID,
		`UPDATE diapers SET kind = ?, occurred_at = ?, notes = ?, updated_at = ? WHERE id = ? AND baby_id = ?`,
		d.Kind, d.OccurredAt.UTC(), d.Notes, d.UpdatedAt.UTC(), d.ID, d.BabyID)
}

func (s *SQLStore) GetDiaper(ctx context.Context, babyID, id string) (*internal.Diaper, error) {
	d, err := scanDiaper(s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+diaperColumns+` FROM diapers WHERE id = ? AND baby_id = ?`), id, babyID))
	if err != nil {
		return nil, notFoundOr("get diaper", "diaper", id, err)
	}
	return d, nil
}

func (s *SQLStore) ListDiapers(ctx context.Context, babyID string) ([]internal.Diaper, error) {
	rows, err := s.query(ctx, "list diapers",
		`SELECT `+diaperColumns+` FROM diapers WHERE baby_id = ? ORDER BY occurred_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Diaper{}
	for rows.Next() {
		d, err := scanDiaper(rows)
		if err != nil {
			return nil, internal.WrapStorage("scan diaper", err)
		}
		out = append(out, *d)
	}
	return out, internal.WrapStorage("list diapers", rows.Err())
}

func (s *SQLStore) DeleteDiaper(ctx context.Context, babyID, id string) error {
	return s.execOne(ctx, "delete diaper", "diaper", id,
		`DELETE FROM diapers WHERE id = ? AND baby_id = ?`, id, babyID)
}

// --- ReminderRepository ---

const reminderColumns = `id, baby_id, title, notes, remind_at, done, created_at, updated_at`

func scanReminder(row rowScanner) (*internal.Reminder, error) {
	var r internal.Reminder
	if err := row.Scan(&r.ID, &r.BabyID, &r.Title, &r.Notes, &r.RemindAt, &r.Done, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLStore) SaveReminder(ctx context.Context, r *internal.Reminder) error {
	_, err := s.exec(ctx, s.db, "insert reminder",
		`INSERT INTO reminders (`+reminderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BabyID, r.Title, r.Notes, r.RemindAt.UTC(), r.Done, r.CreatedAt.UTC(), r.UpdatedAt.UTC())
	return err
}

func (s *SQLStore) UpdateReminder(ctx context.Context, r *internal.Reminder) error {
	return s.execOne(ctx, "update reminder", "reminder", r.ID,
		`UPDATE reminders SET title = ?, notes = ?, remind_at = ?, done = ?, updated_at = ?
		WHERE id = ? AND baby_id = ?`,
		r.Title, r.Notes, r.RemindAt.UTC(), r.Done, r.UpdatedAt.UTC(), r.ID, r.BabyID)
}

func (s *SQLStore) GetReminder(ctx context.Context, babyID, id string) (*internal.Reminder, error) {
	r, err := scanReminder(s.db.QueryRowContext(ctx,
		s.d.rebind(`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND baby_id = ?`), id, babyID))
	if err != nil {
		return nil, notFoundOr("get reminder", "reminder", id, err)
	}
	return r, nil
}

func (s *SQLStore) ListReminders(ctx context.Context, babyID string) ([]internal.Reminder, error) {
	rows, err := s.query(ctx, "list reminders",
		`SELECT `+reminderColumns+` FROM reminders WHERE baby_id = ? ORDER BY remind_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, internal.WrapStorage("scan reminder", err)
		}
		out = append(out, *r)
	}
	return out, internal.WrapStorage("list reminders", rows.Err())
}

func (s *SQLStore) DeleteReminder(ctx context.Context, babyID, id string) error {
	return s.execOne(ctx, "delete reminder", "reminder", id,
		`DELETE FROM reminders WHERE id = ? AND baby_id = ?`, id, babyID)
}

// --- MeasurementRepository ---

const measurementColumns = `id, baby_id, weight_kg, height_cm, head_circumference_cm, measured_at, created_at`

func (s *SQLStore) SaveMeasurement(ctx context.Context, m *internal.BabyMeasurement) error {
	_, err := s.exec(ctx, s.db, "insert measurement",
		`INSERT INTO baby_measurements (`+measurementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.BabyID, nullable(m.WeightKg), nullable(m.HeightCm), nullable(m.HeadCircumferenceCm),
		m.MeasuredAt.UTC(), m.CreatedAt.UTC())
	return err
}

func (s *SQLStore) ListMeasurements(ctx context.Context, babyID string) ([]internal.BabyMeasurement, error) {
	rows, err := s.query(ctx, "list measurements",
		`SELECT `+measurementColumns+` FROM baby_measurements WHERE baby_id = ? ORDER BY measured_at DESC`, babyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.BabyMeasurement{}
	for rows.Next() {
		var m internal.BabyMeasurement
		var weight, height, head sql.NullFloat64
		if err := rows.Scan(&m.ID, &m.BabyID, &weight, &height, &head, &m.MeasuredAt, &m.CreatedAt); err != nil {
			return nil, internal.WrapStorage("scan measurement", err)
		}
		m.WeightKg, m.HeightCm, m.HeadCircumferenceCm = floatPtr(weight), floatPtr(height), floatPtr(head)
		out = append(out, m)
	}
	return out, internal.WrapStorage("list measurements", rows.Err())
}

func (s *SQLStore) DeleteMeasurement(ctx context.Context, babyID, id string) error {
	return s.execOne(ctx, "delete measurement", "measurement", id,
		`DELETE FROM baby_measurements WHERE id = ? AND baby_id = ?`, id, babyID)
}

// nullable turns a nil pointer into SQL NULL and dereferences anything else.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// --- Compile-time assertions ---
var _ Store = (*SQLStore)(nil)
