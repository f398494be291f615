package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

// FileStorage keeps every table in memory and snapshots them to one JSON
// file. Writes are debounced by a save worker; Close flushes synchronously.
type FileStorage struct {
	babies       map[string]*internal.Baby
	history      map[string][]*internal.BabyProfileHistory // babyID -> snapshots, oldest first
	feedings     *babyScoped[internal.Feeding]
	sleeps       *babyScoped[internal.Sleep]
	diapers      *babyScoped[internal.Diaper]
	reminders    *babyScoped[internal.Reminder]
	measurements *babyScoped[internal.BabyMeasurement]

	mu           sync.RWMutex
	dataFile     string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	workerDone   chan struct{}
	saveDelay    time.Duration
	closeOnce    sync.Once
	logger       internal.Logger
}

type fileData struct {
	Babies       []*internal.Baby               `json:"babies"`
	History      []*internal.BabyProfileHistory `json:"baby_profile_history"`
	Feedings     []*internal.Feeding            `json:"feedings"`
	Sleeps       []*internal.Sleep              `json:"sleeps"`
	Diapers      []*internal.Diaper             `json:"diapers"`
	Reminders    []*internal.Reminder           `json:"reminders"`
	Measurements []*internal.BabyMeasurement    `json:"baby_measurements"`
}

func NewFileStorage(dataFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		babies:  make(map[string]*internal.Baby),
		history: make(map[string][]*internal.BabyProfileHistory),
		feedings: newBabyScoped(
			func(f *internal.Feeding) string { return f.ID },
			func(f *internal.Feeding) string { return f.BabyID },
			func(f *internal.Feeding) time.Time { return f.StartAt },
		),
		sleeps: newBabyScoped(
			func(s *internal.Sleep) string { return s.ID },
			func(s *internal.Sleep) string { return s.BabyID },
			func(s *internal.Sleep) time.Time { return s.StartAt },
		),
		diapers: newBabyScoped(
			func(d *internal.Diaper) string { return d.ID },
			func(d *internal.Diaper) string { return d.BabyID },
			func(d *internal.Diaper) time.Time { return d.OccurredAt },
		),
		reminders: newBabyScoped(
			func(r *internal.Reminder) string { return r.ID },
			func(r *internal.Reminder) string { return r.BabyID },
			func(r *internal.Reminder) time.Time { return r.RemindAt },
		),
		measurements: newBabyScoped(
			func(m *internal.BabyMeasurement) string { return m.ID },
			func(m *internal.BabyMeasurement) string { return m.BabyID },
			func(m *internal.BabyMeasurement) time.Time { return m.MeasuredAt },
		),
		dataFile:     dataFile,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		workerDone:   make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		logger:       logger,
	}

	if dir := filepath.Dir(dataFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: creating data directory: %w", err)
		}
	}
	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load %s: %v", dataFile, err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) load() error {
	file, err := os.Open(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var data fileData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range data.Babies {
		s.babies[b.ID] = b
	}
	for _, h := range data.History {
		s.history[h.BabyID] = append(s.history[h.BabyID], h)
	}
	for _, hs := range s.history {
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].CreatedAt.Before(hs[j].CreatedAt) })
	}
	s.feedings.load(data.Feedings)
	s.sleeps.load(data.Sleeps)
	s.diapers.load(data.Diapers)
	s.reminders.load(data.Reminders)
	s.measurements.load(data.Measurements)
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) save() error {
	s.mu.RLock()
	data := fileData{
		Babies:       make([]*internal.Baby, 0, len(s.babies)),
		History:      []*internal.BabyProfileHistory{},
		Feedings:     s.feedings.all(),
		Sleeps:       s.sleeps.all(),
		Diapers:      s.diapers.all(),
		Reminders:    s.reminders.all(),
		Measurements: s.measurements.all(),
	}
	for _, b := range s.babies {
		data.Babies = append(data.Babies, b)
	}
	for _, hs := range s.history {
		data.History = append(data.History, hs...)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.dataFile, data)
}

func (s *FileStorage) saveWorker() {
	defer close(s.workerDone)
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", s.dataFile, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// markDirty signals the save worker without blocking.
func (s *FileStorage) markDirty() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		<-s.workerDone
		err = s.save()
	})
	return err
}

// --- BabyRepository ---
func (s *FileStorage) CreateBaby(ctx context.Context, baby *internal.Baby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.babies[baby.ID]; exists {
		return fmt.Errorf("storage: baby %s already exists", baby.ID)
	}
	s.babies[baby.ID] = cloneBaby(baby)
	s.markDirty()
	return nil
}

func (s *FileStorage) GetBaby(ctx context.Context, id string) (*internal.Baby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.babies[id]
	if !ok {
		return nil, fmt.Errorf("baby %s: %w", id, internal.ErrNotFound)
	}
	return cloneBaby(b), nil
}

func (s *FileStorage) ListBabies(ctx context.Context, userID string) ([]internal.Baby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	babies := []internal.Baby{}
	for _, b := range s.babies {
		if b.UserID == userID {
			babies = append(babies, *cloneBaby(b))
		}
	}
	sort.Slice(babies, func(i, j int) bool { return babies[i].CreatedAt.Before(babies[j].CreatedAt) })
	return babies, nil
}

func (s *FileStorage) DeleteBaby(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.babies[id]; !ok {
		return fmt.Errorf("baby %s: %w", id, internal.ErrNotFound)
	}
	delete(s.babies, id)
	delete(s.history, id)
	s.feedings.removeBaby(id)
	s.sleeps.removeBaby(id)
	s.diapers.removeBaby(id)
	s.reminders.removeBaby(id)
	s.measurements.removeBaby(id)
	s.markDirty()
	return nil
}

// UpdateProfile holds the write lock across read, fn and write, so nothing
// is visible until both rows are in place.
func (s *FileStorage) UpdateProfile(ctx context.Context, babyID string, fn ProfileUpdateFunc) (*internal.Baby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.babies[babyID]
	if !ok {
		return nil, fmt.Errorf("baby %s: %w", babyID, internal.ErrNotFound)
	}
	working := cloneBaby(current)
	update, history, err := fn(cloneBaby(current))
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() && history == nil {
		return working, nil
	}
	update.ApplyTo(&working.Profile)
	working.UpdatedAt = time.Now().UTC()

	s.babies[babyID] = working
	if history != nil {
		h := *history
		s.history[babyID] = append(s.history[babyID], &h)
	}
	s.markDirty()
	return cloneBaby(working), nil
}

func (s *FileStorage) ListProfileHistory(ctx context.Context, babyID string) ([]internal.BabyProfileHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hs := s.history[babyID]
	out := make([]internal.BabyProfileHistory, 0, len(hs))
	for i := len(hs) - 1; i >= 0; i-- {
		out = append(out, *hs[i])
	}
	return out, nil
}

// --- FeedingRepository ---
func (s *FileStorage) SaveFeeding(ctx context.Context, f *internal.Feeding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedings.put(cloneFeeding(f))
	s.markDirty()
	return nil
}

func (s *FileStorage) UpdateFeeding(ctx context.Context, f *internal.Feeding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedings.get(f.BabyID, f.ID); !ok {
		return fmt.Errorf("feeding %s: %w", f.ID, internal.ErrNotFound)
	}
	s.feedings.put(cloneFeeding(f))
	s.markDirty()
	return nil
}

func (s *FileStorage) GetFeeding(ctx context.Context, babyID, id string) (*internal.Feeding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feedings.get(babyID, id)
	if !ok {
		return nil, fmt.Errorf("feeding %s: %w", id, internal.ErrNotFound)
	}
	return cloneFeeding(f), nil
}

func (s *FileStorage) ListFeedings(ctx context.Context, babyID string) ([]internal.Feeding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feedings := s.feedings.list(babyID)
	for i := range feedings {
		feedings[i] = *cloneFeeding(&feedings[i])
	}
	return feedings, nil
}

func (s *FileStorage) DeleteFeeding(ctx context.Context, babyID, id string) error {
	return s.remove(s.feedings.remove, "feeding", babyID, id)
}

// --- SleepRepository ---
func (s *FileStorage) SaveSleep(ctx context.Context, sl *internal.Sleep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps.put(cloneSleep(sl))
	s.markDirty()
	return nil
}

func (s *FileStorage) UpdateSleep(ctx context.Context, sl *internal.Sleep) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sleeps.get(sl.BabyID, sl.ID); !ok {
		return fmt.Errorf("sleep %s: %w", sl.ID, internal.ErrNotFound)
	}
	s.sleeps.put(cloneSleep(sl))
	s.markDirty()
	return nil
}

func (s *FileStorage) GetSleep(ctx context.Context, babyID, id string) (*internal.Sleep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.sleeps.get(babyID, id)
	if !ok {
		return nil, fmt.Errorf("sleep %s: %w", id, internal.ErrNotFound)
	}
	return cloneSleep(sl), nil
}

func (s *FileStorage) ListSleeps(ctx context.Context, babyID string) ([]internal.Sleep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sleeps := s.sleeps.list(babyID)
	for i := range sleeps {
		sleeps[i] = *cloneSleep(&sleeps[i])
	}
	return sleeps, nil
}

func (s *FileStorage) DeleteSleep(ctx context.Context, babyID, id string) error {
	return s.remove(s.sleeps.remove, "sleep", babyID, id)
}

// --- DiaperRepository ---
func (s *FileStorage) SaveDiaper(ctx context.Context, d *internal.Diaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diapers.put(d)
	s.markDirty()
	return nil
}

func (s *FileStorage) UpdateDiaper(ctx context.Context, d *internal.Diaper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diapers.get(d.BabyID, d.ID); !ok {
		return fmt.Errorf("diaper %s: %w", d.ID, internal.ErrNotFound)
	}
	s.diapers.put(d)
	s.markDirty()
	return nil
}

func (s *FileStorage) GetDiaper(ctx context.Context, babyID, id string) (*internal.Diaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diapers.get(babyID, id)
	if !ok {
		return nil, fmt.Errorf("diaper %s: %w", id, internal.ErrNotFound)
	}
	return d, nil
}

func (s *FileStorage) ListDiapers(ctx context.Context, babyID string) ([]internal.Diaper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diapers.list(babyID), nil
}

func (s *FileStorage) DeleteDiaper(ctx context.Context, babyID, id string) error {
	return s.remove(s.diapers.remove, "diaper", babyID, id)
}

// --- ReminderRepository ---
func (s *FileStorage) SaveReminder(ctx context.Context, r *internal.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders.put(r)
	s.markDirty()
	return nil
}

func (s *FileStorage) UpdateReminder(ctx context.Context, r *internal.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminders.get(r.BabyID, r.ID); !ok {
		return fmt.Errorf("reminder %s: %w", r.ID, internal.ErrNotFound)
	}
	s.reminders.put(r)
	s.markDirty()
	return nil
}

func (s *FileStorage) GetReminder(ctx context.Context, babyID, id string) (*internal.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders.get(babyID, id)
	if !ok {
		return nil, fmt.Errorf("reminder %s: %w", id, internal.ErrNotFound)
	}
	return r, nil
}

func (s *FileStorage) ListReminders(ctx context.Context, babyID string) ([]internal.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reminders.list(babyID), nil
}

func (s *FileStorage) DeleteReminder(ctx context.Context, babyID, id string) error {
	return s.remove(s.reminders.remove, "reminder", babyID, id)
}

// --- MeasurementRepository ---
func (s *FileStorage) SaveMeasurement(ctx context.Context, m *internal.BabyMeasurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurements.put(m)
	s.markDirty()
	return nil
}

func (s *FileStorage) ListMeasurements(ctx context.Context, babyID string) ([]internal.BabyMeasurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.measurements.list(babyID), nil
}

func (s *FileStorage) DeleteMeasurement(ctx context.Context, babyID, id string) error {
	return s.remove(s.measurements.remove, "measurement", babyID, id)
}

func (s *FileStorage) remove(fn func(babyID, id string) bool, kind, babyID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(babyID, id) {
		return fmt.Errorf("%s %s: %w", kind, id, internal.ErrNotFound)
	}
	s.markDirty()
	return nil
}

func cloneBaby(b *internal.Baby) *internal.Baby {
	c := *b
	p := b.Profile.Fields()
	c.WeightKg, c.HeightCm, c.HeadCircumferenceCm = p.WeightKg, p.HeightCm, p.HeadCircumferenceCm
	return &c
}

func cloneFeeding(f *internal.Feeding) *internal.Feeding {
	c := *f
	if f.Sessions != nil {
		c.Sessions = append([]internal.BreastFeedingSession(nil), f.Sessions...)
	}
	if f.AmountML != nil {
		v := *f.AmountML
		c.AmountML = &v
	}
	return &c
}

func cloneSleep(sl *internal.Sleep) *internal.Sleep {
	c := *sl
	if sl.EndAt != nil {
		end := *sl.EndAt
		c.EndAt = &end
	}
	return &c
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
