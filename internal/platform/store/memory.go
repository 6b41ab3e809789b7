package store

import (
	"context"
	"sort"
	"sync"
)

// Row is a record the memory table can hold. Clone must return a copy that
// shares no mutable state with the receiver.
type Row[T any] interface {
	GetID() int64
	SetID(id int64)
	Clone() T
}

// Table is an in-memory keyed collection with store-assigned int64 ids.
// Iteration follows ascending id, the same order the SQL adapters return.
// Every read and write copies rows so callers never alias stored state.
type Table[T Row[T]] struct {
	mu    sync.RWMutex
	seq   int64
	order []int64
	rows  map[int64]T
}

func NewTable[T Row[T]]() *Table[T] {
	return &Table[T]{rows: make(map[int64]T)}
}

// Save inserts or replaces v. A zero id is replaced by the next sequence
// value; an explicit id is kept and advances the sequence past it.
func (t *Table[T]) Save(v T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	row := v.Clone()
	id := row.GetID()
	if id == 0 {
		t.seq++
		id = t.seq
		row.SetID(id)
	} else if id > t.seq {
		t.seq = id
	}
	if _, ok := t.rows[id]; !ok {
		i := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= id })
		t.order = append(t.order, 0)
		copy(t.order[i+1:], t.order[i:])
		t.order[i] = id
	}
	t.rows[id] = row
	return row.Clone()
}

func (t *Table[T]) Get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return row.Clone(), true
}

func (t *Table[T]) Has(id int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rows[id]
	return ok
}

// Filter returns copies of every row accepted by keep, in ascending id order.
// A nil keep accepts everything.
func (t *Table[T]) Filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row.Clone())
		}
	}
	return out
}

// Any reports whether at least one row satisfies match.
func (t *Table[T]) Any(match func(T) bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if match(t.rows[id]) {
			return true
		}
	}
	return false
}

func (t *Table[T]) Delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Transactor runs fn as one unit of work against a store.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Serializer is the memory-backend Transactor: units run one at a time.
type Serializer struct {
	mu sync.Mutex
}

func (s *Serializer) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}
