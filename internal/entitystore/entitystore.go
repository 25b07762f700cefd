// Package entitystore is the single source of truth for messages, keyed
// by id (spec.md §4.A). Channels and users are normalized here too, each
// in their own map, so every other component resolves entities by id
// instead of holding pointers into each other's structures (spec.md §9
// "Cyclic references").
package entitystore

import "github.com/mraspaud/kb-solaria/internal/model"

// Store is the normalized entity database. It has no notion of ordering,
// buckets, or cursors — those live in package buffer, classify, and
// cursor respectively.
type Store struct {
	messages map[string]*model.Message
	channels map[string]*model.Channel
	users    map[string]*model.User
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		messages: make(map[string]*model.Message),
		channels: make(map[string]*model.Channel),
		users:    make(map[string]*model.User),
	}
}

// UpsertMessage inserts or replaces a message by id.
func (s *Store) UpsertMessage(m *model.Message) {
	s.messages[m.ID] = m
}

// Message looks up a message by id.
func (s *Store) Message(id string) (*model.Message, bool) {
	m, ok := s.messages[id]
	return m, ok
}

// UpdateMessage applies patch to the message named by id in place,
// preserving object identity. Returns false if the message does not
// exist (spec.md §7 "Missing entity on reaction/update/delete" — a no-op).
func (s *Store) UpdateMessage(id string, patch func(*model.Message)) bool {
	m, ok := s.messages[id]
	if !ok {
		return false
	}
	patch(m)
	return true
}

// DeleteMessage removes a message from the store entirely. Used only by
// the ack reconciler when collapsing a duplicate identity (spec.md §4.I);
// spec.md §4.A states entities are otherwise never deleted.
func (s *Store) DeleteMessage(id string) {
	delete(s.messages, id)
}

// RekeyMessage moves the entity at oldID to newID, preserving the same
// *model.Message pointer for UI stability (spec.md §4.A). If oldID does
// not exist, this is a no-op. If newID already has an entity, it is
// overwritten (callers that need "existing real entity wins" handle that
// merge themselves before calling Rekey — see Core.handleAck in
// package core).
func (s *Store) RekeyMessage(oldID, newID string) {
	m, ok := s.messages[oldID]
	if !ok {
		return
	}
	delete(s.messages, oldID)
	m.ID = newID
	s.messages[newID] = m
}

// UpsertChannel inserts or merges channel fields by id. Structural fields
// (ParentChannel, ThreadID, IsThread) are preserved if the incoming
// channel is "shallower" (i.e. doesn't set them), matching the merge rule
// spec.md §4.D describes for Workspace.ensure.
func (s *Store) UpsertChannel(c *model.Channel) *model.Channel {
	existing, ok := s.channels[c.ID]
	if !ok {
		s.channels[c.ID] = c
		return c
	}
	merged := mergeChannel(existing, c)
	s.channels[c.ID] = merged
	return merged
}

func mergeChannel(existing, incoming *model.Channel) *model.Channel {
	merged := *incoming
	if merged.ParentChannel == "" {
		merged.ParentChannel = existing.ParentChannel
	}
	if merged.ThreadID == "" {
		merged.ThreadID = existing.ThreadID
	}
	if !merged.IsThread {
		merged.IsThread = existing.IsThread
	}
	if merged.ParentMessage == "" {
		merged.ParentMessage = existing.ParentMessage
	}
	// Shallow identities (e.g. Workspace.Ensure called with only an ID,
	// as dispatchMessageId does) must not clobber fields the channel
	// already learned from a fuller upsert (e.g. channel_list).
	if merged.Name == "" {
		merged.Name = existing.Name
	}
	if merged.Service == "" {
		merged.Service = existing.Service
	}
	if merged.Category == "" {
		merged.Category = existing.Category
	}
	if !merged.Starred {
		merged.Starred = existing.Starred
	}
	if merged.LastReadAt == 0 {
		merged.LastReadAt = existing.LastReadAt
	}
	if merged.LastPostAt == 0 {
		merged.LastPostAt = existing.LastPostAt
	}
	if merged.Mass == 0 {
		merged.Mass = existing.Mass
	}
	return &merged
}

// Channel looks up a channel by id.
func (s *Store) Channel(id string) (*model.Channel, bool) {
	c, ok := s.channels[id]
	return c, ok
}

// MustChannel returns the channel for id, creating a bare one if absent.
// This is used by components that only know a channel id (e.g. a reply's
// SourceChannel) and need a pointer to mutate LastReadAt/LastPostAt on.
func (s *Store) MustChannel(id string) *model.Channel {
	c, ok := s.channels[id]
	if !ok {
		c = &model.Channel{ID: id}
		s.channels[id] = c
	}
	return c
}

// UpsertUser inserts or replaces a user by id.
func (s *Store) UpsertUser(u *model.User) {
	s.users[u.ID] = u
}

// User looks up a user by id.
func (s *Store) User(id string) (*model.User, bool) {
	u, ok := s.users[id]
	return u, ok
}

// Messages returns the full message table, keyed by id. Callers (package
// core's Snapshot) must treat it as read-only.
func (s *Store) Messages() map[string]*model.Message {
	return s.messages
}

// Users returns the full user table, keyed by id.
func (s *Store) Users() map[string]*model.User {
	return s.users
}

// FindPendingByContent searches for a pending, same-author, same-content
// message with a different id than exclude. Used by the dispatch
// pipeline's echo detection (spec.md §4.F step 2).
func (s *Store) FindPendingByContent(authorID, content, exclude string) (*model.Message, bool) {
	for id, m := range s.messages {
		if id == exclude {
			continue
		}
		if m.Status == model.StatusPending && m.Author.ID == authorID && m.Content == content {
			return m, true
		}
	}
	return nil, false
}
