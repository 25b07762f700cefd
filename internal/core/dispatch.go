package core

import (
	"github.com/mraspaud/kb-solaria/internal/classify"
	"github.com/mraspaud/kb-solaria/internal/model"
)

// DispatchMessage runs the routing pipeline (spec.md §4.F) for a message
// arriving on channelID. It dedupes optimistic echoes, stores the
// message, classifies it, appends it to the real buffer and any relevant
// virtual buffers, and updates unread counters and lastPostAt.
func (c *Core) DispatchMessage(channelID string, msg *model.Message) {
	defer c.notify()
	c.dispatchMessage(channelID, msg)
}

func (c *Core) dispatchMessage(channelID string, msg *model.Message) {
	ch := c.Store.MustChannel(channelID)

	// 1. Normalize sourceChannel.
	if msg.SourceChannel == "" {
		msg.SourceChannel = channelID
	}

	// 2. Echo detection.
	if c.Identities.IsSelf(ch.Service, msg.Author.ID) {
		if pending, ok := c.Store.FindPendingByContent(msg.Author.ID, msg.Content, msg.ID); ok {
			c.handleAck(pending.ID, msg.ID, msg.Content)
			return
		}
	}

	// 3. Upsert.
	c.Store.UpsertMessage(msg)

	// 4. Track thread participation on self-authored replies.
	if c.Identities.IsSelf(ch.Service, msg.Author.ID) && msg.ThreadID != "" {
		c.ParticipatedThreads[msg.ThreadID] = true
	}

	// 5. Classify.
	self := c.selfPtr(ch.Service)
	bucket := classify.Classify(classify.Input{
		Message:      msg,
		Channel:      ch,
		Self:         self,
		Participated: c.ParticipatedThreads,
		ThreadReadAt: c.ThreadReadAt[msg.ThreadID],
	})
	msg.Bucket = bucket

	// 6. Append to the real buffer, and virtual buffers per bucket.
	entry := c.WS.Ensure(ch)
	entry.Buffer.Append(msg.ID)
	switch bucket {
	case model.BucketEgo, model.BucketContext:
		c.WS.Triage().Buffer.Append(msg.ID)
	case model.BucketSignal:
		c.WS.Inbox().Buffer.Append(msg.ID)
	}

	// 7. lastPostAt tracks the channel's own clock (seconds), derived from
	// the message's millisecond timestamp.
	// Ensure may have replaced the stored channel with a merged copy, so
	// write through entry.Channel rather than ch.
	entry.Channel.LastPostAt = msg.Timestamp / 1000

	// 8. Unread counters.
	isSelf := self != nil && msg.Author.ID == self.ID
	if channelID != c.WS.ActiveChannel && !isSelf && bucket != model.BucketNoise {
		u := c.unreadFor(channelID)
		u.Count++
		if bucket == model.BucketEgo {
			u.HasMention = true
		}
	}

	// 9. virtualCounts is recomputed on demand by Snapshot(); nothing to
	// store here.
}

// selfPtr returns a *model.User for the local identity on serviceID, or
// nil if identity is absent (spec.md §7 "Identity absent").
func (c *Core) selfPtr(serviceID string) *model.User {
	u, ok := c.Identities.Self(serviceID)
	if !ok {
		return nil
	}
	return &u
}
