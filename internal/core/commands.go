package core

import (
	"github.com/google/uuid"

	"github.com/mraspaud/kb-solaria/internal/entitystore"
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/reactions"
	"github.com/mraspaud/kb-solaria/internal/transport"
	"github.com/mraspaud/kb-solaria/internal/workspace"
)

// OpenThread synthesizes a thread channel for msg and switches into it
// (spec.md §4.D openThread, §8 scenario S1). It applies the same
// "undefined hint" default positioning switchChannel would, since
// openThread carries no explicit hint of its own.
func (c *Core) OpenThread(msg *model.Message) {
	defer c.notify()
	c.cancelPendingHint()
	entry := c.WS.OpenThread(msg.ID, msg.SourceChannel, msg)
	c.applyDefaultHint(entry)
}

// GoBack pops the navigation stack (spec.md §4.D goBack). A no-op at the
// boot channel or with an empty stack.
func (c *Core) GoBack() {
	defer c.notify()
	c.WS.GoBack()
}

// MoveCursor shifts the active channel's cursor by delta (spec.md §4.C).
func (c *Core) MoveCursor(delta int) {
	defer c.notify()
	entry, ok := c.WS.Entry(c.WS.ActiveChannel)
	if !ok {
		return
	}
	entry.Window.MoveCursor(delta)
}

// JumpTo sets the active channel's cursor directly to index and detaches
// it, per the command API's `jumpTo(index)` (spec.md §6) — distinct from
// the `{jumpTo: id}` positioner hint resolved by switchChannel.
func (c *Core) JumpTo(index int) {
	defer c.notify()
	entry, ok := c.WS.Entry(c.WS.ActiveChannel)
	if !ok {
		return
	}
	entry.Window.JumpToIndex(index)
	entry.Window.Detach()
}

// JumpToBottom pins the active channel's cursor to the tail.
func (c *Core) JumpToBottom() {
	defer c.notify()
	entry, ok := c.WS.Entry(c.WS.ActiveChannel)
	if !ok {
		return
	}
	entry.Window.JumpToBottom()
}

// PostMessage optimistically sends a message: a pending entity is stored
// and appended to channelID's buffer immediately, and a `post_message`
// command is emitted with a freshly minted client id the server will
// echo back in its ack (spec.md §4.I, §6). google/uuid generates the
// client id, matching the teacher's own use of it for correlation ids.
func (c *Core) PostMessage(serviceID, channelID, body string) *model.Message {
	defer c.notify()
	clientID := uuid.NewString()
	msg := c.optimisticMessage(serviceID, channelID, "", clientID, body)

	entry := c.WS.Ensure(c.Store.MustChannel(channelID))
	entry.Buffer.Append(msg.ID)

	c.send(transport.Command{
		Type:      transport.CommandPostMessage,
		ServiceID: serviceID,
		ChannelID: channelID,
		Body:      body,
		ClientID:  clientID,
	})
	return msg
}

// PostReply is PostMessage's thread counterpart: the reply is also
// appended to the synthetic `thread_<rootId>` buffer if it is open.
func (c *Core) PostReply(serviceID, channelID, threadID, body string) *model.Message {
	defer c.notify()
	clientID := uuid.NewString()
	msg := c.optimisticMessage(serviceID, channelID, threadID, clientID, body)

	entry := c.WS.Ensure(c.Store.MustChannel(channelID))
	entry.Buffer.Append(msg.ID)
	if threadEntry, ok := c.WS.Entry(model.ThreadChannelID(threadID)); ok {
		threadEntry.Buffer.Append(msg.ID)
	}

	c.send(transport.Command{
		Type:      transport.CommandPostReply,
		ServiceID: serviceID,
		ChannelID: channelID,
		ThreadID:  threadID,
		Body:      body,
		ClientID:  clientID,
	})
	return msg
}

func (c *Core) optimisticMessage(serviceID, channelID, threadID, clientID, body string) *model.Message {
	var author model.User
	if self := c.selfPtr(serviceID); self != nil {
		author = *self
	}
	msg := &model.Message{
		ID:            clientID,
		ClientID:      clientID,
		Status:        model.StatusPending,
		Author:        author,
		Content:       body,
		Timestamp:     c.millis(),
		ThreadID:      threadID,
		SourceChannel: channelID,
		Bucket:        model.BucketNoise, // self-authored; classifier would agree
	}
	c.Store.UpsertMessage(msg)
	return msg
}

// UpdateMessage edits messageID's content locally and asks the backend to
// persist the change (spec.md §6 `message_update` command). A missing
// entity is a no-op (spec.md §7).
func (c *Core) UpdateMessage(serviceID, channelID, messageID, body string) {
	defer c.notify()
	if !c.Store.UpdateMessage(messageID, func(m *model.Message) { m.Content = body }) {
		return
	}
	c.send(transport.Command{
		Type:      transport.CommandMessageUpdate,
		ServiceID: serviceID,
		ChannelID: channelID,
		MessageID: messageID,
		Body:      body,
	})
}

// ApplyMessageUpdate applies an inbound `message_update` event (spec.md
// §6): mutate content only, no outbound command.
func (c *Core) ApplyMessageUpdate(messageID, body string) {
	defer c.notify()
	c.Store.UpdateMessage(messageID, func(m *model.Message) { m.Content = body })
}

// RemoveMessage drops messageID from every buffer that currently holds it
// (the entity itself is retained, per spec.md §6 `message_delete`
// "remove from current buffers (entity retained)") and asks the backend
// to delete it.
func (c *Core) RemoveMessage(serviceID, channelID, messageID string) {
	defer c.notify()
	c.removeFromBuffers(messageID)
	c.send(transport.Command{
		Type:      transport.CommandMessageDelete,
		ServiceID: serviceID,
		ChannelID: channelID,
		MessageID: messageID,
	})
}

// ApplyMessageDelete applies an inbound `message_delete` event: the same
// buffer removal, without an outbound command.
func (c *Core) ApplyMessageDelete(messageID string) {
	defer c.notify()
	c.removeFromBuffers(messageID)
}

func (c *Core) removeFromBuffers(messageID string) {
	for _, entry := range c.WS.Entries() {
		entry.Buffer.Remove(messageID)
	}
}

// HandleReaction toggles a reaction on messageID, canonicalizing the
// emoji key (package reactions), and forwards the change to the backend.
func (c *Core) HandleReaction(serviceID, channelID, messageID, emojiKey, userID string, add bool) {
	defer c.notify()
	action := transport.ReactionRemove
	if add {
		action = transport.ReactionAdd
	}
	ok := c.Store.UpdateMessage(messageID, func(m *model.Message) {
		reactions.Toggle(m, emojiKey, userID, add)
	})
	if !ok {
		return // missing entity, spec.md §7
	}
	c.send(transport.Command{
		Type:      transport.CommandReact,
		ServiceID: serviceID,
		ChannelID: channelID,
		MessageID: messageID,
		Reaction:  emojiKey,
		Action:    action,
	})
}

// Typing is a stateless passthrough: the core holds no typing-indicator
// state of its own, it only forwards the command (spec.md §1 lists
// typing indicators among the UI-observable effects the transport
// carries, not a core-owned model concern).
func (c *Core) Typing(serviceID, channelID string) {
	c.send(transport.Command{
		Type:      transport.CommandTyping,
		ServiceID: serviceID,
		ChannelID: channelID,
	})
}

// UpsertChannels applies an inbound `channel_list` event: upsert every
// channel, then enqueue hydration for the ones that need it (spec.md §6,
// §9 Open Question 3).
func (c *Core) UpsertChannels(serviceID string, wireChannels []transport.WireChannel) {
	defer c.notify()
	var needsHydration []string
	for _, wc := range wireChannels {
		ch := &model.Channel{
			ID:         wc.ID,
			Name:       wc.Name,
			Service:    serviceID,
			Category:   model.Category(wc.Category),
			Starred:    wc.Starred,
			LastReadAt: wc.LastReadAt,
			LastPostAt: wc.LastPostAt,
			Mass:       wc.Mass,
		}
		c.WS.Ensure(ch)
		u := c.unreadFor(wc.ID)
		u.Count = wc.Unread
		u.HasMention = wc.Mentions > 0

		if wc.Mentions > 0 || (wc.Starred && wc.Unread > 0) {
			needsHydration = append(needsHydration, wc.ID)
		}
	}
	c.enqueueHydration(needsHydration)
}

// ApplyUserList applies an inbound `user_list` event: upsert every user,
// tagged with serviceID.
func (c *Core) ApplyUserList(serviceID string, wireUsers []transport.WireUser) {
	defer c.notify()
	for _, wu := range wireUsers {
		c.Store.UpsertUser(&model.User{
			ID:        wu.ID,
			Name:      wu.Name,
			Color:     wu.Color,
			ServiceID: serviceID,
		})
	}
}

// SetIdentity applies an inbound `self_info` event: records the local
// user's identity for serviceID.
func (c *Core) SetIdentity(serviceID string, author transport.Author, channelPrefix string) {
	defer c.notify()
	c.Identities.SetSelf(serviceID, model.User{
		ID:            author.ID,
		Name:          author.DisplayName,
		Color:         author.Color,
		ChannelPrefix: channelPrefix,
	})
}

// HydrateParticipatedThreads applies an inbound `thread_subscription_list`
// event: seed participatedThreads and record each subscribed thread's
// unread flag (spec.md §6). Per spec.md §9 Open Question 2, a thread the
// self user only opened — never posted in — is not auto-added here;
// this hydrates server-reported subscriptions, which is a distinct path.
func (c *Core) HydrateParticipatedThreads(subs []transport.WireThreadSubscription) {
	defer c.notify()
	for _, s := range subs {
		c.ParticipatedThreads[s.ID] = true
		if s.Unread {
			u := c.unreadFor(model.ThreadChannelID(s.ID))
			u.Count++
		}
	}
}

// UpdateUnreadState overwrites a channel's advisory unread counter
// directly (spec.md §6 `updateUnreadState`), e.g. from a server-side
// recount the UI layer requested out of band.
func (c *Core) UpdateUnreadState(channelID string, count int, hasMention bool) {
	defer c.notify()
	u := c.unreadFor(channelID)
	u.Count = count
	u.HasMention = hasMention
}

// Reset discards all session state and re-bootstraps the three synthetic
// channels, as if the core had just started (spec.md §6 `reset`). Used
// when the UI layer needs a full resync, e.g. after a long disconnect.
func (c *Core) Reset() {
	c.cancelPendingHint()
	if c.markReadTimer != nil {
		c.markReadTimer.Stop()
		c.markReadTimer = nil
	}
	c.markReadPending = nil

	store := entitystore.New()
	c.Store = store
	c.WS = workspace.New(store)
	c.Unread = make(map[string]*model.UnreadState)
	c.ParticipatedThreads = make(map[string]bool)
	c.ThreadReadAt = make(map[string]int64)
	c.lastAckedMessageID = make(map[string]string)
	c.WS.Bootstrap()
	c.notify()
}

// send drops the command silently if no transport is wired (tests
// exercising state transitions in isolation commonly omit one).
func (c *Core) send(cmd transport.Command) {
	if c.Transport != nil {
		c.Transport.Send(cmd)
	}
}
