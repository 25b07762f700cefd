// Package core is the single owned value whose methods implement spec.md
// §4's operations (F through J) plus the command API of §6. Per spec.md
// §9 "Global singletons": there is no module-scope state here — every
// mutation goes through a Core method, and Core is passed by reference to
// subscribers, the way the teacher's components are constructed and
// wired explicitly (e.g. `registry.New(lister, notes, tmux)`) rather than
// reached for as package-level globals.
package core

import (
	"time"

	"github.com/mraspaud/kb-solaria/internal/config"
	"github.com/mraspaud/kb-solaria/internal/cursor"
	"github.com/mraspaud/kb-solaria/internal/entitystore"
	"github.com/mraspaud/kb-solaria/internal/identity"
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/transport"
	"github.com/mraspaud/kb-solaria/internal/workspace"
)

// Observer receives a Snapshot after every core mutation (spec.md §6
// "Observable"). Observers are invoked synchronously over a snapshot of
// the subscriber list and must not mutate Core re-entrantly.
type Observer func(Snapshot)

// pendingHint remembers which channel a debounced cursor-hint retry
// belongs to, since only one such timer is ever outstanding (spec.md §5).
type pendingHint struct {
	channelID string
	hint      cursor.Hint
}

// pendingMarkRead remembers the debounced mark-read call that hasn't
// fired yet, so a later markReadUpTo can cancel and replace it
// (spec.md §5 "a new mark-read cancels the outstanding debounced one").
type pendingMarkRead struct {
	channelID string
	messageID string
}

// Core is the client-side state and interaction engine (spec.md §1-§9
// end to end, minus UI rendering and transport framing).
type Core struct {
	Store      *entitystore.Store
	WS         *workspace.Workspace
	Identities *identity.Identities
	Config     config.Config
	Transport  Sender

	scheduler Scheduler

	Unread              map[string]*model.UnreadState
	ParticipatedThreads map[string]bool
	ThreadReadAt        map[string]int64 // thread root message id -> seconds

	lastAckedMessageID map[string]string // channel id -> debounce key (spec.md §4.G)

	pendingHintTimer Timer
	pendingHint      *pendingHint

	markReadTimer   Timer
	markReadPending *pendingMarkRead

	observers []Observer
	notifying bool
}

// Sender is the subset of transport.Shim the core depends on, so tests
// can substitute a recording fake without a real socket.
type Sender interface {
	Send(transport.Command)
}

// Options configures a new Core.
type Options struct {
	Config    config.Config
	Transport Sender
	Scheduler Scheduler // defaults to the real time.AfterFunc scheduler
}

// New constructs a Core with the three reserved synthetic channels
// already bootstrapped (spec.md §3 "Lifecycle").
func New(opts Options) *Core {
	store := entitystore.New()
	sched := opts.Scheduler
	if sched == nil {
		sched = NewRealScheduler()
	}
	c := &Core{
		Store:               store,
		WS:                  workspace.New(store),
		Identities:          identity.New(),
		Config:              opts.Config,
		Transport:           opts.Transport,
		scheduler:           sched,
		Unread:              make(map[string]*model.UnreadState),
		ParticipatedThreads: make(map[string]bool),
		ThreadReadAt:        make(map[string]int64),
		lastAckedMessageID:  make(map[string]string),
	}
	c.WS.Bootstrap()
	for serviceID, caps := range opts.Config.Services {
		c.Identities.SetCapabilities(serviceID, identity.Capabilities{PerMessageRead: caps.PerMessageRead})
	}
	return c
}

// Subscribe registers an observer and returns an unsubscribe function.
func (c *Core) Subscribe(o Observer) (unsubscribe func()) {
	c.observers = append(c.observers, o)
	idx := len(c.observers) - 1
	return func() {
		if idx < len(c.observers) {
			c.observers[idx] = nil
		}
	}
}

// notify emits a Snapshot to every subscriber, over a frozen slice so a
// subscriber added/removed mid-notification can't corrupt the iteration.
// A re-entrant notify (e.g. from an observer that mutates Core while
// being notified) returns immediately: the mutation itself still
// applies, only its nested notification is skipped (spec.md §5
// reentrancy guard).
func (c *Core) notify() {
	if c.notifying {
		return
	}
	c.notifying = true
	defer func() { c.notifying = false }()

	snap := c.Snapshot()
	observers := append([]Observer(nil), c.observers...)
	for _, o := range observers {
		if o != nil {
			o(snap)
		}
	}
}

func (c *Core) unreadFor(channelID string) *model.UnreadState {
	u, ok := c.Unread[channelID]
	if !ok {
		u = &model.UnreadState{}
		c.Unread[channelID] = u
	}
	return u
}

func (c *Core) millis() int64 {
	return time.Now().UnixMilli()
}

// msDuration converts a millisecond count from config into a
// time.Duration.
func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
