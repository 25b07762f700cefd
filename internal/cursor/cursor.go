// Package cursor implements the per-channel cursor/viewport state machine:
// cursor index, attach flag, unread-marker high-water index, pending
// cursor hint, and visited flag (spec.md §4.C).
package cursor

import "github.com/mraspaud/kb-solaria/internal/buffer"

// Unread marker sentinel values (spec.md §4.C).
const (
	MarkerNone      = -1 // no marker
	MarkerAllUnread = -2 // marker shown at top: every message in the buffer is unread
)

// Hint is a cursor-positioning intent passed to the positioner on channel
// entry (spec.md §4.H). The zero value is "preserve/default".
type Hint struct {
	Mode   HintMode
	JumpTo string // message id, only meaningful when Mode == HintJumpTo
}

type HintMode int

const (
	HintNone HintMode = iota
	HintBottom
	HintUnread
	HintJumpTo
)

// Window is the cursor/viewport state attached to one Buffer.
type Window struct {
	buf *buffer.Buffer

	CursorIndex       int
	IsAttached        bool
	UnreadMarkerIndex int
	PendingHint       *Hint
	HasBeenVisited    bool
	LastSelectedID    string
}

// New creates a Window bound to buf. The window starts detached with
// CursorIndex -1 whatever buf holds; the first cursor move or buffer
// change places it inside the buffer.
func New(buf *buffer.Buffer) *Window {
	w := &Window{
		buf:               buf,
		CursorIndex:       -1,
		UnreadMarkerIndex: MarkerNone,
	}
	buf.Subscribe(w.onBufferChange)
	return w
}

func (w *Window) maxIndex() int {
	return w.buf.Len() - 1
}

// MoveCursor shifts the cursor by delta, clamped to [0, max]. No-op on an
// empty buffer (spec.md §4.C "fails silently").
func (w *Window) MoveCursor(delta int) {
	if w.buf.Len() == 0 {
		return
	}
	next := w.CursorIndex + delta
	if next < 0 {
		next = 0
	}
	if max := w.maxIndex(); next > max {
		next = max
	}
	w.CursorIndex = next
	w.LastSelectedID = w.buf.At(next)
	w.IsAttached = next == w.maxIndex()
}

// JumpToBottom pins the cursor to the tail, attaches, and clears the
// unread marker.
func (w *Window) JumpToBottom() {
	max := w.maxIndex()
	w.CursorIndex = max
	w.IsAttached = true
	w.UnreadMarkerIndex = MarkerNone
	if max >= 0 {
		w.LastSelectedID = w.buf.At(max)
	}
}

// Detach anchors the cursor at its current position, recording
// LastSelectedID so a later buffer change can try to restore it.
func (w *Window) Detach() {
	w.IsAttached = false
	if w.CursorIndex >= 0 {
		w.LastSelectedID = w.buf.At(w.CursorIndex)
	}
}

// JumpToIndex sets the cursor to i directly, clamped to the valid range,
// without changing the attach flag. Callers (the positioner) set
// IsAttached explicitly afterward per the hint mode.
func (w *Window) JumpToIndex(i int) {
	if w.buf.Len() == 0 {
		w.CursorIndex = -1
		return
	}
	if i < 0 {
		i = 0
	}
	if max := w.maxIndex(); i > max {
		i = max
	}
	w.CursorIndex = i
	w.LastSelectedID = w.buf.At(i)
}

// onBufferChange is the Buffer observer: if attached, track the tail;
// else try to restore the cursor to LastSelectedID, clamping if it
// vanished (spec.md §4.C "On buffer change").
func (w *Window) onBufferChange(b *buffer.Buffer) {
	if b.Len() == 0 {
		w.CursorIndex = -1
		return
	}
	if w.IsAttached {
		w.CursorIndex = w.maxIndex()
		w.LastSelectedID = b.At(w.CursorIndex)
		return
	}
	if w.LastSelectedID != "" {
		if i := b.IndexOf(w.LastSelectedID); i >= 0 {
			w.CursorIndex = i
			return
		}
	}
	if max := w.maxIndex(); w.CursorIndex > max {
		w.CursorIndex = max
		w.LastSelectedID = b.At(max)
	} else if w.CursorIndex < 0 {
		w.CursorIndex = 0
		w.LastSelectedID = b.At(0)
	}
}

// MarkVisited sets HasBeenVisited, used by the positioner to decide
// whether a "bottom" hint or the default (no hint) behavior applies
// (spec.md §4.H).
func (w *Window) MarkVisited() {
	w.HasBeenVisited = true
}

// SetPendingHint stores a cursor hint for later debounced retry (spec.md
// §4.H "sparse-buffer pending hints").
func (w *Window) SetPendingHint(h Hint) {
	w.PendingHint = &h
}

// ClearPendingHint drops any stored pending hint, e.g. on channel switch
// (spec.md §5 "Cancellation").
func (w *Window) ClearPendingHint() {
	w.PendingHint = nil
}
