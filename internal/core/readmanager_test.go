package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mraspaud/kb-solaria/internal/identity"
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/transport"
)

func TestMarkReadUpToAdvancesLastReadAtAndDebouncesAck(t *testing.T) {
	sched := &fakeScheduler{}
	sender := &fakeSender{}
	c := New(Options{Scheduler: sched, Transport: sender})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.WS.Ensure(&model.Channel{ID: "c1"})

	msg := &model.Message{ID: "m1", Timestamp: 5_000_000}
	c.Store.UpsertMessage(msg)

	c.MarkReadUpTo("c1", msg, false)

	ch, _ := c.Store.Channel("c1")
	assert.Equal(t, int64(5000), ch.LastReadAt)
	assert.Empty(t, sender.sent, "ack is debounced, not sent immediately")

	sched.FireAll()
	require.Len(t, sender.sent, 1)
	assert.Equal(t, transport.CommandMarkRead, sender.sent[0].Type)
	assert.Equal(t, "m1", sender.sent[0].MessageID)
}

func TestMarkReadUpToImmediateSendsRightAway(t *testing.T) {
	sched := &fakeScheduler{}
	sender := &fakeSender{}
	c := New(Options{Scheduler: sched, Transport: sender})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})

	msg := &model.Message{ID: "m1", Timestamp: 5_000_000}
	c.Store.UpsertMessage(msg)

	c.MarkReadUpTo("c1", msg, true)
	require.Len(t, sender.sent, 1)
}

func TestMarkReadUpToSkipsSyntheticChannels(t *testing.T) {
	sender := &fakeSender{}
	c := New(Options{Transport: sender})

	msg := &model.Message{ID: "m1", Timestamp: 5_000_000}
	c.Store.UpsertMessage(msg)

	c.MarkReadUpTo(model.ChannelSystem, msg, true)
	assert.Empty(t, sender.sent)
}

func TestMarkReadUpToUnknownChannelIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	c := New(Options{Transport: sender})
	msg := &model.Message{ID: "m1", Timestamp: 1000}
	c.MarkReadUpTo("never-seen", msg, true)
	assert.Empty(t, sender.sent)
}

func TestMarkReadUpToPurgesVirtualBuffers(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.WS.Ensure(&model.Channel{ID: "c1"})

	old := &model.Message{ID: "old", SourceChannel: "c1", Timestamp: 1000}
	newer := &model.Message{ID: "new", SourceChannel: "c1", Timestamp: 20_000_000}
	c.Store.UpsertMessage(old)
	c.Store.UpsertMessage(newer)
	c.WS.Triage().Buffer.Append("old")
	c.WS.Triage().Buffer.Append("new")

	c.MarkReadUpTo("c1", old, true)

	assert.False(t, c.WS.Triage().Buffer.Contains("old"))
	assert.True(t, c.WS.Triage().Buffer.Contains("new"))
}

func TestMarkReadUpToThreadModePurgesByRoot(t *testing.T) {
	c := New(Options{})
	parent := &model.Channel{ID: "c1", Service: "slack"}
	c.Store.UpsertChannel(parent)
	threadCh := &model.Channel{ID: model.ThreadChannelID("root1"), Service: "slack", IsThread: true, ThreadID: "root1", ParentChannel: "c1"}
	c.Store.UpsertChannel(threadCh)

	root := &model.Message{ID: "root1", SourceChannel: "c1", Timestamp: 1000}
	reply1 := &model.Message{ID: "reply1", ThreadID: "root1", Timestamp: 2000}
	reply2 := &model.Message{ID: "reply2", ThreadID: "root1", Timestamp: 30_000_000}
	c.Store.UpsertMessage(root)
	c.Store.UpsertMessage(reply1)
	c.Store.UpsertMessage(reply2)
	c.WS.Triage().Buffer.Append("reply1")
	c.WS.Triage().Buffer.Append("reply2")

	c.MarkReadUpTo(model.ThreadChannelID("root1"), reply1, true)

	assert.False(t, c.WS.Triage().Buffer.Contains("reply1"))
	assert.True(t, c.WS.Triage().Buffer.Contains("reply2"))
}

func TestMarkReadUpToAppliesUnreadClearPolicyByCapability(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.Identities.SetCapabilities("slack", identity.Capabilities{PerMessageRead: true})
	c.unreadFor("c1").Count = 5

	msg := &model.Message{ID: "m1", Timestamp: 1000}
	c.Store.UpsertMessage(msg)
	c.MarkReadUpTo("c1", msg, true)

	assert.Equal(t, 5, c.unreadFor("c1").Count, "per-message-read services are not cleared in one shot")
}

func TestMarkReadUpToClearsUnreadForOneShotServices(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "discord"})
	c.unreadFor("c1").Count = 5
	c.unreadFor("c1").HasMention = true

	msg := &model.Message{ID: "m1", Timestamp: 1000}
	c.Store.UpsertMessage(msg)
	c.MarkReadUpTo("c1", msg, true)

	u := c.unreadFor("c1")
	assert.Equal(t, 0, u.Count)
	assert.False(t, u.HasMention)
}

func TestClearUnreadCount(t *testing.T) {
	c := New(Options{})
	u := c.unreadFor("c1")
	u.Count = 5
	u.HasMention = true

	c.ClearUnreadCount("c1")
	assert.Equal(t, 0, u.Count)
	assert.False(t, u.HasMention)
}
