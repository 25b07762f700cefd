// Package buffer implements the ordered, observable sequence of message
// ids belonging to one channel, real or virtual (spec.md §4.B).
package buffer

// Observer is notified after a Buffer's contents change. Observers are
// invoked synchronously, over a snapshot of the subscriber list, and must
// not mutate the buffer re-entrantly (spec.md §5, §9 "Reactive stores").
type Observer func(b *Buffer)

// Buffer is an insertion-ordered set of message ids. Order is insertion
// order; callers that need a timestamp-sorted view derive it themselves.
type Buffer struct {
	ids       []string
	index     map[string]int
	observers []Observer
}

// New creates an empty Buffer.
func New() *Buffer {
	return &Buffer{index: make(map[string]int)}
}

// Len returns the number of ids currently in the buffer.
func (b *Buffer) Len() int {
	return len(b.ids)
}

// IDs returns the buffer's contents. Callers must not mutate the returned
// slice; it is shared with the buffer's internal storage until the next
// mutating call.
func (b *Buffer) IDs() []string {
	return b.ids
}

// Contains reports whether id is present in the buffer.
func (b *Buffer) Contains(id string) bool {
	_, ok := b.index[id]
	return ok
}

// IndexOf returns the position of id in the buffer, or -1 if absent.
func (b *Buffer) IndexOf(id string) int {
	if i, ok := b.index[id]; ok {
		return i
	}
	return -1
}

// At returns the id at position i, or "" if out of range.
func (b *Buffer) At(i int) string {
	if i < 0 || i >= len(b.ids) {
		return ""
	}
	return b.ids[i]
}

// Append adds id to the tail. No-op if id is already present (set
// semantics, spec.md §4.B), otherwise notifies observers.
func (b *Buffer) Append(id string) {
	if b.Contains(id) {
		return
	}
	b.index[id] = len(b.ids)
	b.ids = append(b.ids, id)
	b.notify()
}

// Prepend adds id to the head. No-op if already present.
func (b *Buffer) Prepend(id string) {
	if b.Contains(id) {
		return
	}
	b.ids = append([]string{id}, b.ids...)
	b.reindex()
	b.notify()
}

// Remove deletes id from the buffer, if present, and notifies observers
// on change.
func (b *Buffer) Remove(id string) {
	i, ok := b.index[id]
	if !ok {
		return
	}
	b.ids = append(b.ids[:i], b.ids[i+1:]...)
	b.reindex()
	b.notify()
}

// ReplaceAll swaps the buffer's contents wholesale (e.g. initial
// hydration) and notifies observers.
func (b *Buffer) ReplaceAll(ids []string) {
	b.ids = append([]string(nil), ids...)
	b.reindex()
	b.notify()
}

// Filter removes every id for which keep returns false, in place, and
// notifies observers if anything changed. Used by the read manager's
// virtual-buffer purge (spec.md §4.G) and to defensively drop ids whose
// entity vanished (spec.md §7 "Buffer corruption").
func (b *Buffer) Filter(keep func(id string) bool) {
	out := b.ids[:0:0]
	changed := false
	for _, id := range b.ids {
		if keep(id) {
			out = append(out, id)
		} else {
			changed = true
		}
	}
	b.ids = out
	b.reindex()
	if changed {
		b.notify()
	}
}

// ReplaceID swaps oldID for newID in place, preserving position. Used by
// the ack reconciler's buffer sweep (spec.md §4.I).
func (b *Buffer) ReplaceID(oldID, newID string) {
	i, ok := b.index[oldID]
	if !ok {
		return
	}
	b.ids[i] = newID
	delete(b.index, oldID)
	b.index[newID] = i
	b.notify()
}

func (b *Buffer) reindex() {
	b.index = make(map[string]int, len(b.ids))
	for i, id := range b.ids {
		b.index[id] = i
	}
}

// Subscribe registers an observer and returns an unsubscribe function.
func (b *Buffer) Subscribe(o Observer) (unsubscribe func()) {
	b.observers = append(b.observers, o)
	idx := len(b.observers) - 1
	return func() {
		if idx < len(b.observers) {
			b.observers[idx] = nil
		}
	}
}

func (b *Buffer) notify() {
	snapshot := b.observers
	for _, o := range snapshot {
		if o != nil {
			o(b)
		}
	}
}
