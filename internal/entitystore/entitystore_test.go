package entitystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mraspaud/kb-solaria/internal/model"
)

func TestUpsertAndLookupMessage(t *testing.T) {
	s := New()
	m := &model.Message{ID: "m1", Content: "hello"}
	s.UpsertMessage(m)

	got, ok := s.Message("m1")
	require.True(t, ok)
	assert.Equal(t, "hello", got.Content)

	_, ok = s.Message("missing")
	assert.False(t, ok)
}

func TestUpdateMessagePreservesIdentity(t *testing.T) {
	s := New()
	m := &model.Message{ID: "m1", Content: "v1"}
	s.UpsertMessage(m)

	ok := s.UpdateMessage("m1", func(msg *model.Message) { msg.Content = "v2" })
	require.True(t, ok)
	assert.Same(t, m, s.messages["m1"], "UpdateMessage must mutate the same pointer")
	assert.Equal(t, "v2", m.Content)
}

func TestUpdateMessageMissingIsNoOp(t *testing.T) {
	s := New()
	ok := s.UpdateMessage("nope", func(msg *model.Message) { msg.Content = "x" })
	assert.False(t, ok)
}

func TestDeleteMessage(t *testing.T) {
	s := New()
	s.UpsertMessage(&model.Message{ID: "m1"})
	s.DeleteMessage("m1")
	_, ok := s.Message("m1")
	assert.False(t, ok)
}

func TestRekeyMessagePreservesPointerAndSetsID(t *testing.T) {
	s := New()
	m := &model.Message{ID: "tmp-1", Content: "hi"}
	s.UpsertMessage(m)

	s.RekeyMessage("tmp-1", "real-1")

	_, stillThere := s.Message("tmp-1")
	assert.False(t, stillThere)

	got, ok := s.Message("real-1")
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Equal(t, "real-1", got.ID)
}

func TestRekeyMessageMissingIsNoOp(t *testing.T) {
	s := New()
	s.RekeyMessage("nonexistent", "real-1")
	_, ok := s.Message("real-1")
	assert.False(t, ok)
}

func TestUpsertChannelFirstInsert(t *testing.T) {
	s := New()
	c := &model.Channel{ID: "c1", Name: "general"}
	got := s.UpsertChannel(c)
	assert.Same(t, c, got)
}

func TestUpsertChannelMergePreservesDeeperFields(t *testing.T) {
	s := New()
	s.UpsertChannel(&model.Channel{
		ID: "thread_m1", Name: "general", Service: "slack",
		IsThread: true, ThreadID: "m1", ParentChannel: "c1", ParentMessage: "m1",
		Starred: true, LastReadAt: 100, LastPostAt: 200, Mass: 5,
	})

	// A shallow re-ensure (only the id known) must not clobber the
	// structural fields learned earlier.
	merged := s.UpsertChannel(&model.Channel{ID: "thread_m1"})

	assert.True(t, merged.IsThread)
	assert.Equal(t, "m1", merged.ThreadID)
	assert.Equal(t, "c1", merged.ParentChannel)
	assert.Equal(t, "m1", merged.ParentMessage)
	assert.Equal(t, "general", merged.Name)
	assert.True(t, merged.Starred, "a shallow re-ensure must not un-star a channel")
	assert.Equal(t, int64(100), merged.LastReadAt)
	assert.Equal(t, int64(200), merged.LastPostAt)
	assert.Equal(t, int64(5), merged.Mass)
	assert.Equal(t, "slack", merged.Service)
}

func TestMustChannelCreatesBareChannel(t *testing.T) {
	s := New()
	c := s.MustChannel("c1")
	require.NotNil(t, c)
	assert.Equal(t, "c1", c.ID)

	// second call returns the same pointer, not a fresh one
	again := s.MustChannel("c1")
	assert.Same(t, c, again)
}

func TestUpsertAndLookupUser(t *testing.T) {
	s := New()
	s.UpsertUser(&model.User{ID: "u1", Name: "Ada"})
	got, ok := s.User("u1")
	require.True(t, ok)
	assert.Equal(t, "Ada", got.Name)
}

func TestFindPendingByContent(t *testing.T) {
	s := New()
	s.UpsertMessage(&model.Message{ID: "tmp-1", Status: model.StatusPending, Author: model.User{ID: "u1"}, Content: "hi"})
	s.UpsertMessage(&model.Message{ID: "sent-1", Status: model.StatusSent, Author: model.User{ID: "u1"}, Content: "hi"})

	got, ok := s.FindPendingByContent("u1", "hi", "incoming-1")
	require.True(t, ok)
	assert.Equal(t, "tmp-1", got.ID)

	_, ok = s.FindPendingByContent("u1", "hi", "tmp-1")
	assert.False(t, ok, "excludes the given id from the search")

	_, ok = s.FindPendingByContent("u2", "hi", "")
	assert.False(t, ok, "different author does not match")
}

func TestMessagesAndUsersAccessors(t *testing.T) {
	s := New()
	s.UpsertMessage(&model.Message{ID: "m1"})
	s.UpsertUser(&model.User{ID: "u1"})

	assert.Len(t, s.Messages(), 1)
	assert.Len(t, s.Users(), 1)
}
