// Package workspace owns the set of (Buffer, Window) pairs keyed by
// channel id, the active-channel pointer, and the bounded navigation
// stack (spec.md §4.D).
package workspace

import (
	"github.com/mraspaud/kb-solaria/internal/buffer"
	"github.com/mraspaud/kb-solaria/internal/cursor"
	"github.com/mraspaud/kb-solaria/internal/entitystore"
	"github.com/mraspaud/kb-solaria/internal/model"
)

// maxNavigationStack is the cap named in spec.md §4.D; the oldest entry
// is dropped (FIFO) on overflow.
const maxNavigationStack = 50

// Entry is one channel's buffer/window pair, plus its identity.
type Entry struct {
	Channel *model.Channel
	Buffer  *buffer.Buffer
	Window  *cursor.Window
}

// Workspace is the per-session client-side navigation state.
type Workspace struct {
	store *entitystore.Store

	channels map[string]*Entry

	ActiveChannel string
	bootChannel   string
	navStack      []string // channel ids, oldest first
}

// New creates a Workspace. store is the entity store channels are
// resolved against and upserted into.
func New(store *entitystore.Store) *Workspace {
	return &Workspace{
		store:    store,
		channels: make(map[string]*Entry),
	}
}

// Ensure creates the Buffer+Window for identity.ID if absent, merging the
// identity into the entity store per the structural-field preservation
// rule in spec.md §4.D ("merges identity (new fields overwrite,
// structural fields ... preserved if the newer identity is shallower)").
// Returns the (possibly pre-existing) Entry.
func (w *Workspace) Ensure(identity *model.Channel) *Entry {
	merged := w.store.UpsertChannel(identity)

	if e, ok := w.channels[merged.ID]; ok {
		e.Channel = merged
		return e
	}

	buf := buffer.New()
	e := &Entry{
		Channel: merged,
		Buffer:  buf,
		Window:  cursor.New(buf),
	}
	w.channels[merged.ID] = e
	return e
}

// Entry returns the Entry for a channel id, if it has been created.
func (w *Workspace) Entry(channelID string) (*Entry, bool) {
	e, ok := w.channels[channelID]
	return e, ok
}

// Entries returns every known channel's Entry, keyed by channel id. Used
// by Core.Snapshot to build the per-channel view without duplicating the
// workspace's bookkeeping elsewhere.
func (w *Workspace) Entries() map[string]*Entry {
	return w.channels
}

// SetBootChannel records the first channel ever opened; GoBack never
// pops past it (spec.md §4.D).
func (w *Workspace) SetBootChannel(channelID string) {
	if w.bootChannel == "" {
		w.bootChannel = channelID
	}
}

// OpenChannel ensures the channel exists, pushes the previous active
// channel onto the navigation stack (if distinct), and makes identity the
// new active channel. Returns the Entry.
func (w *Workspace) OpenChannel(identity *model.Channel) *Entry {
	e := w.Ensure(identity)

	if w.ActiveChannel == "" {
		w.SetBootChannel(e.Channel.ID)
	} else if w.ActiveChannel != e.Channel.ID {
		w.pushNav(w.ActiveChannel)
	}

	w.ActiveChannel = e.Channel.ID
	return e
}

// OpenThread synthesizes a thread channel identity for rootID (within
// parentChannel) and opens it, per spec.md §4.D and the thread channel id
// format in spec.md §6. The thread channel inherits parentChannel's real
// service, since mark-read and fetch-thread commands for it must still
// target that backend (only triage/inbox/system are "aggregation"/
// "internal").
func (w *Workspace) OpenThread(rootID, parentChannel string, rootMessage *model.Message) *Entry {
	parentService := ""
	if p, ok := w.store.Channel(parentChannel); ok {
		parentService = p.Service
	}
	ident := &model.Channel{
		ID:            model.ThreadChannelID(rootID),
		IsThread:      true,
		ThreadID:      rootID,
		ParentChannel: parentChannel,
		ParentMessage: rootID,
		Service:       parentService,
	}
	e := w.OpenChannel(ident)
	if rootMessage != nil {
		e.Buffer.Append(rootMessage.ID)
	}
	return e
}

// GoBack pops the navigation stack and makes that channel active. It
// never crosses the initial boot channel: if the stack is empty, or the
// active channel already is the boot channel, GoBack is a no-op and
// returns false.
func (w *Workspace) GoBack() (channelID string, ok bool) {
	if len(w.navStack) == 0 || w.ActiveChannel == w.bootChannel {
		return "", false
	}
	last := len(w.navStack) - 1
	channelID = w.navStack[last]
	w.navStack = w.navStack[:last]
	w.ActiveChannel = channelID
	return channelID, true
}

func (w *Workspace) pushNav(channelID string) {
	w.navStack = append(w.navStack, channelID)
	if len(w.navStack) > maxNavigationStack {
		w.navStack = w.navStack[len(w.navStack)-maxNavigationStack:]
	}
}

// DispatchMessageID ensures channelID's entry exists and appends id to its
// buffer (spec.md §4.D dispatchMessageId).
func (w *Workspace) DispatchMessageID(channelID, id string) {
	e := w.Ensure(&model.Channel{ID: channelID})
	e.Buffer.Append(id)
}

// Triage returns the triage virtual channel entry, creating it if absent.
func (w *Workspace) Triage() *Entry {
	return w.Ensure(&model.Channel{ID: model.ChannelTriage, Service: model.ServiceAggregation})
}

// Inbox returns the inbox virtual channel entry, creating it if absent.
func (w *Workspace) Inbox() *Entry {
	return w.Ensure(&model.Channel{ID: model.ChannelInbox, Service: model.ServiceAggregation})
}

// System returns the system channel entry, creating it if absent.
func (w *Workspace) System() *Entry {
	return w.Ensure(&model.Channel{ID: model.ChannelSystem, Service: model.ServiceInternal})
}

// Bootstrap creates the three reserved synthetic channels at startup
// (spec.md §3 "Lifecycle").
func (w *Workspace) Bootstrap() {
	w.System()
	w.Triage()
	w.Inbox()
}

// VirtualCounts recomputes {triage, inbox} buffer lengths (spec.md §4.F
// step 9).
func (w *Workspace) VirtualCounts() (triage, inbox int) {
	return w.Triage().Buffer.Len(), w.Inbox().Buffer.Len()
}
