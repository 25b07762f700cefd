package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelfInfo(t *testing.T) {
	raw := []byte(`{"event":"self_info","service":{"id":"slack"},"user":{"id":"u1","display_name":"Ada"},"channel_prefix":"#"}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, EventSelfInfo, ev.Type)
	assert.Equal(t, "slack", ev.Service)
	assert.Equal(t, "u1", ev.SelfInfoUser.ID)
	assert.Equal(t, "#", ev.SelfInfoChannelPrefix)
}

func TestParseChannelList(t *testing.T) {
	raw := []byte(`{"event":"channel_list","service":"slack","channels":[{"id":"c1","name":"general","unread":3,"mentions":1}]}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, EventChannelList, ev.Type)
	require.Len(t, ev.Channels, 1)
	assert.Equal(t, "c1", ev.Channels[0].ID)
	assert.Equal(t, 3, ev.Channels[0].Unread)
}

func TestParseMessage(t *testing.T) {
	raw := []byte(`{"event":"message","service":"slack","channel_id":"c1","thread_id":"root1","message":{"id":"m1","body":"hi","timestamp":1000,"author":{"id":"u1","display_name":"Ada"}}}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, EventMessage, ev.Type)
	assert.Equal(t, "c1", ev.ChannelID)
	assert.Equal(t, "root1", ev.ThreadID)
	assert.Equal(t, "m1", ev.Message.ID)
	assert.Equal(t, "hi", ev.Message.Body)
}

func TestParseMessageAck(t *testing.T) {
	raw := []byte(`{"event":"message_ack","client_id":"tmp-1","real_id":"real-1","text":"hi"}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, EventMessageAck, ev.Type)
	assert.Equal(t, "tmp-1", ev.AckClientID)
	assert.Equal(t, "real-1", ev.AckRealID)
}

func TestParseMessageDelete(t *testing.T) {
	raw := []byte(`{"event":"message_delete","message_id":"m1"}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "m1", ev.MessageDeleteID)
}

func TestParseThreadSubscriptions(t *testing.T) {
	raw := []byte(`{"event":"thread_subscription_list","service":"slack","thread_ids":[{"id":"root1","channel_id":"c1","unread":true}]}`)
	ev, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, ev.ThreadSubscriptions, 1)
	assert.True(t, ev.ThreadSubscriptions[0].Unread)
}

func TestParseMissingDiscriminator(t *testing.T) {
	_, err := Parse([]byte(`{"foo":"bar"}`))
	assert.Error(t, err)
}

func TestParseUnknownEventType(t *testing.T) {
	_, err := Parse([]byte(`{"event":"not_a_real_event"}`))
	assert.Error(t, err)
}
