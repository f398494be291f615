package storage

import (
	"sort"
	"time"
)

// babyScoped is an in-memory table of rows owned by a baby. Callers hold
// the FileStorage lock.
type babyScoped[T any] struct {
	rows map[string]*T
	id   func(*T) string
	baby func(*T) string
	at   func(*T) time.Time
}

func newBabyScoped[T any](id, baby func(*T) string, at func(*T) time.Time) *babyScoped[T] {
	return &babyScoped[T]{rows: make(map[string]*T), id: id, baby: baby, at: at}
}

func (t *babyScoped[T]) load(rows []*T) {
	for _, r := range rows {
		t.rows[t.id(r)] = r
	}
}

func (t *babyScoped[T]) put(v *T) {
	c := *v
	t.rows[t.id(&c)] = &c
}

func (t *babyScoped[T]) get(babyID, id string) (*T, bool) {
	r, ok := t.rows[id]
	if !ok || t.baby(r) != babyID {
		return nil, false
	}
	c := *r
	return &c, true
}

// list returns copies, newest first.
func (t *babyScoped[T]) list(babyID string) []T {
	out := []T{}
	for _, r := range t.rows {
		if t.baby(r) == babyID {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return t.at(&out[i]).After(t.at(&out[j])) })
	return out
}

func (t *babyScoped[T]) remove(babyID, id string) bool {
	r, ok := t.rows[id]
	if !ok || t.baby(r) != babyID {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *babyScoped[T]) removeBaby(babyID string) {
	for id, r := range t.rows {
		if t.baby(r) == babyID {
			delete(t.rows, id)
		}
	}
}

func (t *babyScoped[T]) all() []*T {
	out := make([]*T, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	return out
}
