package core

import (
	"github.com/mraspaud/kb-solaria/internal/buffer"
	"github.com/mraspaud/kb-solaria/internal/cursor"
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/workspace"
)

// minBufferForFallback is the "buffer size < 5" threshold from spec.md
// §4.H that decides whether an unresolved jumpTo hint is parked as
// pending (sparse buffer, the target may still be arriving) versus
// immediately falling back to the bottom (a populated buffer that simply
// doesn't contain the target).
const minBufferForFallback = 5

// SwitchChannel opens identity (creating its Buffer/Window if needed) and
// applies the cursor positioner (spec.md §4.H) for the given hint.
func (c *Core) SwitchChannel(identity *model.Channel, hint cursor.Hint) {
	defer c.notify()

	c.cancelPendingHint()

	entry := c.WS.OpenChannel(identity)
	w := entry.Window

	switch hint.Mode {
	case cursor.HintJumpTo:
		c.applyJumpTo(entry, hint)
	case cursor.HintUnread:
		c.applyUnreadHint(entry)
		w.MarkVisited()
	case cursor.HintBottom:
		if !w.HasBeenVisited {
			w.JumpToBottom()
		}
		w.MarkVisited()
	default: // HintNone: preserve
		c.applyDefaultHint(entry)
	}
}

// applyDefaultHint is the "undefined hint" branch of spec.md §4.H,
// shared between switchChannel and openThread (which switches into a
// freshly-synthesized thread channel with no explicit hint).
func (c *Core) applyDefaultHint(entry *workspace.Entry) {
	w := entry.Window
	if w.HasBeenVisited {
		return
	}
	w.MarkVisited()
	if w.CursorIndex < 0 && entry.Buffer.Len() > 0 {
		w.JumpToIndex(0)
		w.Detach()
	}
}

func (c *Core) applyJumpTo(entry *workspace.Entry, hint cursor.Hint) {
	idx := entry.Buffer.IndexOf(hint.JumpTo)
	w := entry.Window
	if idx >= 0 {
		w.JumpToIndex(idx)
		w.Detach()
		w.UnreadMarkerIndex = c.unreadMarkerFromLastReadAt(entry)
		w.MarkVisited()
		w.ClearPendingHint()
		return
	}

	if entry.Buffer.Len() < minBufferForFallback {
		w.SetPendingHint(hint)
		w.JumpToBottom()
		c.armPendingHint(entry, hint)
		return
	}

	w.JumpToBottom()
}

// armPendingHint schedules the single debounce timer that retries a
// sparse-buffer jumpTo hint once the buffer grows (spec.md §4.H, §5).
func (c *Core) armPendingHint(entry *workspace.Entry, hint cursor.Hint) {
	c.pendingHint = &pendingHint{channelID: entry.Channel.ID, hint: hint}

	unsubscribe := entry.Buffer.Subscribe(func(b *buffer.Buffer) {
		if c.pendingHint == nil || c.pendingHint.channelID != entry.Channel.ID {
			return
		}
		if c.pendingHintTimer != nil {
			c.pendingHintTimer.Stop()
		}
		delay := c.Config.Debounce.PendingHintMillis
		if delay <= 0 {
			delay = 300
		}
		c.pendingHintTimer = c.scheduler.AfterFunc(msDuration(delay), func() {
			if c.pendingHint == nil || c.pendingHint.channelID != entry.Channel.ID {
				return
			}
			ph := c.pendingHint
			c.pendingHint = nil
			c.pendingHintTimer = nil
			c.applyJumpTo(entry, ph.hint)
			c.notify()
		})
	})
	_ = unsubscribe // left registered for the lifetime of the buffer; a
	// resolved or canceled hint simply makes future callbacks no-ops.
}

func (c *Core) cancelPendingHint() {
	if c.pendingHintTimer != nil {
		c.pendingHintTimer.Stop()
		c.pendingHintTimer = nil
	}
	if c.pendingHint != nil {
		if e, ok := c.WS.Entry(c.pendingHint.channelID); ok {
			e.Window.ClearPendingHint()
		}
	}
	c.pendingHint = nil
}

func (c *Core) applyUnreadHint(entry *workspace.Entry) {
	w := entry.Window
	ch := entry.Channel
	ids := entry.Buffer.IDs()

	idx := -1
	if ch.LastReadAt > 0 {
		threshold := model.SecondsToMillis(ch.LastReadAt)
		for i, id := range ids {
			m, ok := c.Store.Message(id)
			if !ok {
				continue
			}
			if m.Timestamp > threshold {
				idx = i
				break
			}
		}
	} else {
		u := c.unreadFor(ch.ID)
		i := len(ids) - u.Count
		if i < 0 {
			i = 0
		}
		if i >= len(ids) {
			idx = -1
		} else {
			idx = i
		}
	}

	switch {
	case idx > 0:
		w.JumpToIndex(idx - 1)
		w.Detach()
		w.UnreadMarkerIndex = idx - 1
	case idx == 0:
		w.JumpToIndex(0)
		w.Detach()
		w.UnreadMarkerIndex = cursor.MarkerAllUnread
	default: // idx < 0: nothing unread found
		w.JumpToBottom()
		w.UnreadMarkerIndex = cursor.MarkerNone
	}

	c.reconcileUnreadCount(entry, idx)
}

// reconcileUnreadCount makes unread[channel.id].count match the unread
// span the positioner actually computed (spec.md §4.H "reconciles...").
func (c *Core) reconcileUnreadCount(entry *workspace.Entry, idx int) {
	u := c.unreadFor(entry.Channel.ID)
	if idx < 0 {
		u.Count = 0
		return
	}
	u.Count = entry.Buffer.Len() - idx
}

func (c *Core) unreadMarkerFromLastReadAt(entry *workspace.Entry) int {
	ch := entry.Channel
	ids := entry.Buffer.IDs()
	if ch.LastReadAt <= 0 {
		return cursor.MarkerNone
	}
	threshold := model.SecondsToMillis(ch.LastReadAt)
	for i, id := range ids {
		m, ok := c.Store.Message(id)
		if !ok {
			continue
		}
		if m.Timestamp > threshold {
			if i == 0 {
				return cursor.MarkerAllUnread
			}
			return i - 1
		}
	}
	return cursor.MarkerNone
}
