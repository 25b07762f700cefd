package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mraspaud/kb-solaria/internal/model"
)

func TestDispatchMessageClassifiesAndRoutesToTriage(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack", Category: model.CategoryDirect})
	c.Identities.SetSelf("slack", model.User{ID: "me"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "other"}, Timestamp: 10_000_000}
	c.DispatchMessage("c1", msg)

	assert.Equal(t, model.BucketEgo, msg.Bucket)
	entry, ok := c.WS.Entry("c1")
	require.True(t, ok)
	assert.True(t, entry.Buffer.Contains("m1"))
	assert.True(t, c.WS.Triage().Buffer.Contains("m1"))
	assert.Equal(t, 1, c.unreadFor("c1").Count)
	assert.True(t, c.unreadFor("c1").HasMention)
}

func TestDispatchMessageSignalRoutesToInbox(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack", Category: model.CategoryGroup})
	c.Identities.SetSelf("slack", model.User{ID: "me"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "other"}, Timestamp: 10_000_000}
	c.DispatchMessage("c1", msg)

	assert.Equal(t, model.BucketSignal, msg.Bucket)
	assert.True(t, c.WS.Inbox().Buffer.Contains("m1"))
	assert.False(t, c.WS.Triage().Buffer.Contains("m1"))
}

func TestDispatchMessageSelfAuthoredIsNoiseAndNotUnread(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.Identities.SetSelf("slack", model.User{ID: "me"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "me"}, Timestamp: 10_000_000}
	c.DispatchMessage("c1", msg)

	assert.Equal(t, model.BucketNoise, msg.Bucket)
	assert.Equal(t, 0, c.unreadFor("c1").Count)
}

func TestDispatchMessageEchoDetectionReconciles(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.Identities.SetSelf("slack", model.User{ID: "me"})

	pending := &model.Message{ID: "tmp-1", ClientID: "tmp-1", Status: model.StatusPending, Author: model.User{ID: "me"}, Content: "hello", SourceChannel: "c1"}
	c.Store.UpsertMessage(pending)
	entry := c.WS.Ensure(&model.Channel{ID: "c1"})
	entry.Buffer.Append("tmp-1")

	incoming := &model.Message{ID: "real-1", Author: model.User{ID: "me"}, Content: "hello", Timestamp: 5000}
	c.DispatchMessage("c1", incoming)

	_, stillPending := c.Store.Message("tmp-1")
	assert.False(t, stillPending)

	got, ok := c.Store.Message("real-1")
	require.True(t, ok)
	assert.Equal(t, model.StatusSent, got.Status)
	assert.True(t, entry.Buffer.Contains("real-1"))
	assert.False(t, entry.Buffer.Contains("tmp-1"))
}

func TestDispatchMessageUpdatesLastPostAt(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "other"}, Timestamp: 5_000_000}
	c.DispatchMessage("c1", msg)

	ch, _ := c.Store.Channel("c1")
	assert.Equal(t, int64(5000), ch.LastPostAt)
}

func TestDispatchMessageActiveChannelNoUnreadIncrement(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack", Category: model.CategoryGroup})
	c.WS.OpenChannel(&model.Channel{ID: "c1"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "other"}, Timestamp: 10_000_000}
	c.DispatchMessage("c1", msg)

	assert.Equal(t, 0, c.unreadFor("c1").Count)
}

func TestDispatchMessageSelfAuthoredReplyTracksParticipation(t *testing.T) {
	c := New(Options{})
	c.Store.UpsertChannel(&model.Channel{ID: "c1", Service: "slack"})
	c.Identities.SetSelf("slack", model.User{ID: "me"})

	msg := &model.Message{ID: "m1", Author: model.User{ID: "me"}, ThreadID: "root1", Timestamp: 10_000_000}
	c.DispatchMessage("c1", msg)

	assert.True(t, c.ParticipatedThreads["root1"])
}
