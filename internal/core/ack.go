package core

import (
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/workspace"
)

// HandleAck applies a `message_ack` event (spec.md §4.I, §6) for an
// optimistic send identified by clientID, now confirmed as realID.
func (c *Core) HandleAck(clientID, realID, text string) {
	defer c.notify()
	c.handleAck(clientID, realID, text)
}

// handleAck reconciles a pending (optimistically stored) message against
// its server-confirmed identity. Two paths, per spec.md §4.I:
//
//   - identity match (clientID == realID): the pending entity already has
//     its final id; just flip its status and, if the server echoed back a
//     possibly-edited body, adopt it.
//   - identity swap (clientID != realID): the pending entity must be
//     rekeyed to realID. If realID already exists in the store — the real
//     message arrived through the normal dispatch path before its ack did
//     — the existing entity wins and the optimistic duplicate is dropped
//     instead, preserving spec.md §4.A "entities are never duplicated".
//
// Object identity (the *model.Message pointer) is preserved across the
// rekey so a UI bound to it doesn't need to re-resolve anything.
func (c *Core) handleAck(clientID, realID, text string) {
	pending, ok := c.Store.Message(clientID)
	if !ok {
		return // stale ack: already reconciled, or for an id we never sent
	}

	if clientID == realID {
		c.Store.UpdateMessage(clientID, func(m *model.Message) {
			m.Status = model.StatusSent
			if text != "" {
				m.Content = text
			}
		})
		return
	}

	sourceChannel := pending.SourceChannel
	threadID := pending.ThreadID

	if _, exists := c.Store.Message(realID); exists {
		c.Store.UpdateMessage(realID, func(m *model.Message) {
			m.Status = model.StatusSent
			m.ClientID = clientID
		})
		c.Store.DeleteMessage(clientID)
		c.sweepBuffers(sourceChannel, threadID, clientID, "")
		return
	}

	c.Store.UpdateMessage(clientID, func(m *model.Message) {
		m.Status = model.StatusSent
		m.ClientID = clientID
		if text != "" {
			m.Content = text
		}
	})
	c.Store.RekeyMessage(clientID, realID)
	c.sweepBuffers(sourceChannel, threadID, clientID, realID)
}

// sweepBuffers replaces (or removes, if newID is "") oldID everywhere an
// optimistic send could have been appended directly: the real channel's
// buffer, and the thread buffer if the message was a reply (spec.md §4.I
// "buffer sweep"). Triage/inbox never hold a self-authored message, since
// the classifier's self guard always assigns it NOISE.
func (c *Core) sweepBuffers(channelID, threadID, oldID, newID string) {
	if entry, ok := c.WS.Entry(channelID); ok {
		swapOrRemove(entry, oldID, newID)
	}
	if threadID != "" {
		if entry, ok := c.WS.Entry(model.ThreadChannelID(threadID)); ok {
			swapOrRemove(entry, oldID, newID)
		}
	}
}

func swapOrRemove(entry *workspace.Entry, oldID, newID string) {
	buf := entry.Buffer
	if newID == "" || buf.Contains(newID) {
		buf.Remove(oldID)
		return
	}
	buf.ReplaceID(oldID, newID)
}
