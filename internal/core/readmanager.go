package core

import (
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/transport"
)

// MarkReadUpTo applies mark-read for channelID up through msg (spec.md
// §4.G). State mutations (lastReadAt advance, virtual-buffer purge,
// unread clearing) happen synchronously; only the outbound server ack is
// debounced. Pass immediate=true for an explicit jump-driven mark-read
// (spec.md §5: "1s by default, or immediate on explicit jump").
func (c *Core) MarkReadUpTo(channelID string, msg *model.Message, immediate bool) {
	ch, ok := c.Store.Channel(channelID)
	if !ok {
		return
	}
	if ch.Service == model.ServiceInternal || ch.Service == model.ServiceAggregation || channelID == model.ChannelSystem {
		return
	}

	readSeconds := msg.Timestamp / 1000
	if readSeconds > ch.LastReadAt {
		ch.LastReadAt = readSeconds
	}

	if ch.IsThread && ch.ThreadID != "" {
		if readSeconds > c.ThreadReadAt[ch.ThreadID] {
			c.ThreadReadAt[ch.ThreadID] = readSeconds
		}
	}

	c.purgeVirtualBuffers(ch, msg)
	c.scheduleMarkReadAck(ch, msg, immediate)
	c.applyUnreadClearPolicy(ch)

	c.notify()
}

// purgeVirtualBuffers applies the dual-mode membership predicate of
// spec.md §4.G to both triage and inbox.
func (c *Core) purgeVirtualBuffers(ch *model.Channel, upTo *model.Message) {
	var keep func(id string) bool

	if ch.IsThread {
		rootID := ch.ThreadID
		keep = func(id string) bool {
			m, ok := c.Store.Message(id)
			if !ok {
				return false // buffer corruption, drop defensively (spec.md §7)
			}
			isMember := m.ID == rootID || m.ThreadID == rootID
			return !isMember || m.Timestamp > upTo.Timestamp
		}
	} else {
		keep = func(id string) bool {
			m, ok := c.Store.Message(id)
			if !ok {
				return false
			}
			if m.SourceChannel != ch.ID {
				return true
			}
			if m.ThreadID != "" {
				return true
			}
			return m.Timestamp > upTo.Timestamp
		}
	}

	c.WS.Triage().Buffer.Filter(keep)
	c.WS.Inbox().Buffer.Filter(keep)
}

// scheduleMarkReadAck deduplicates and debounces the outbound mark_read
// command (spec.md §4.G "Debounce server ack per (channel,
// lastAckedMessageId)", §5 mark-read scheduler).
func (c *Core) scheduleMarkReadAck(ch *model.Channel, msg *model.Message, immediate bool) {
	if c.lastAckedMessageID[ch.ID] == msg.ID {
		return
	}

	targetChannelID := ch.ID
	if ch.IsThread {
		targetChannelID = ch.ParentChannel
	}
	cmd := transport.Command{
		Type:      transport.CommandMarkRead,
		ServiceID: ch.Service,
		ChannelID: targetChannelID,
		ThreadID:  ch.ThreadID,
		MessageID: msg.ID,
	}

	if c.markReadTimer != nil {
		c.markReadTimer.Stop()
		c.markReadTimer = nil
	}
	c.markReadPending = nil

	if immediate {
		c.lastAckedMessageID[ch.ID] = msg.ID
		if c.Transport != nil {
			c.Transport.Send(cmd)
		}
		return
	}

	c.markReadPending = &pendingMarkRead{channelID: ch.ID, messageID: msg.ID}
	delay := c.Config.Debounce.MarkReadMillis
	if delay <= 0 {
		delay = 1000
	}
	c.markReadTimer = c.scheduler.AfterFunc(msDuration(delay), func() {
		c.lastAckedMessageID[ch.ID] = msg.ID
		c.markReadPending = nil
		c.markReadTimer = nil
		if c.Transport != nil {
			c.Transport.Send(cmd)
		}
	})
}

// applyUnreadClearPolicy applies spec.md §4.G's per-service granularity
// rule: services with per-message read granularity (e.g. Slack) leave
// unread.count to decay as the cursor advances; others clear on channel
// entry via an explicit ClearUnreadCount.
func (c *Core) applyUnreadClearPolicy(ch *model.Channel) {
	if c.Identities.Capabilities(ch.Service).PerMessageRead {
		return
	}
	c.ClearUnreadCount(ch.ID)
}

// ClearUnreadCount resets a channel's advisory unread counter (part of
// the command API, spec.md §6).
func (c *Core) ClearUnreadCount(channelID string) {
	u := c.unreadFor(channelID)
	u.Count = 0
	u.HasMention = false
}
