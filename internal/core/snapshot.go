package core

import (
	"github.com/mraspaud/kb-solaria/internal/model"
)

// ChannelView is the read-only per-channel slice of a Snapshot: the
// channel's identity, its buffer contents in display order, and its
// cursor/viewport state (spec.md §3 "Workspace state").
type ChannelView struct {
	Channel           *model.Channel
	MessageIDs        []string
	CursorIndex       int
	IsAttached        bool
	UnreadMarkerIndex int
	Unread            model.UnreadState
}

// Snapshot is the view of Core state an Observer receives after every
// mutation (spec.md §6 "Observable"). It is built fresh on each notify()
// call. MessageIDs, Unread, Identities, Participated and the counts are
// copies; Messages and Users are the entity store's live maps, and the
// Channel and Message pointers are shared with live state, so they
// reflect later mutations and must be treated as read-only.
type Snapshot struct {
	ActiveChannel string
	Channels      map[string]ChannelView
	Messages      map[string]*model.Message
	Users         map[string]*model.User
	Identities    map[string]model.User // serviceID -> local user
	Participated  map[string]bool       // thread root id -> participated

	TriageCount int
	InboxCount  int
}

// Snapshot builds the current Snapshot from live state. It never mutates
// Core.
func (c *Core) Snapshot() Snapshot {
	channels := make(map[string]ChannelView, len(c.WS.Entries()))
	for id, e := range c.WS.Entries() {
		channels[id] = ChannelView{
			Channel:           e.Channel,
			MessageIDs:        append([]string(nil), e.Buffer.IDs()...),
			CursorIndex:       e.Window.CursorIndex,
			IsAttached:        e.Window.IsAttached,
			UnreadMarkerIndex: e.Window.UnreadMarkerIndex,
			Unread:            *c.unreadFor(id),
		}
	}

	triage, inbox := c.WS.VirtualCounts()

	participated := make(map[string]bool, len(c.ParticipatedThreads))
	for k, v := range c.ParticipatedThreads {
		participated[k] = v
	}

	return Snapshot{
		ActiveChannel: c.WS.ActiveChannel,
		Channels:      channels,
		Messages:      c.Store.Messages(),
		Users:         c.Store.Users(),
		Identities:    c.Identities.All(),
		Participated:  participated,
		TriageCount:   triage,
		InboxCount:    inbox,
	}
}
