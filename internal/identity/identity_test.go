package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mraspaud/kb-solaria/internal/model"
)

func TestSetAndGetSelf(t *testing.T) {
	ids := New()
	_, ok := ids.Self("slack")
	assert.False(t, ok, "no self_info received yet")

	ids.SetSelf("slack", model.User{ID: "u1", Name: "Ada"})
	self, ok := ids.Self("slack")
	require.True(t, ok)
	assert.Equal(t, "u1", self.ID)
	assert.Equal(t, "slack", self.ServiceID, "SetSelf stamps the service id")
}

func TestIsSelf(t *testing.T) {
	ids := New()
	ids.SetSelf("slack", model.User{ID: "u1"})
	assert.True(t, ids.IsSelf("slack", "u1"))
	assert.False(t, ids.IsSelf("slack", "u2"))
	assert.False(t, ids.IsSelf("discord", "u1"), "identity is per-service")
}

func TestCapabilitiesDefaultsToZeroValue(t *testing.T) {
	ids := New()
	assert.False(t, ids.Capabilities("unconfigured").PerMessageRead)

	ids.SetCapabilities("slack", Capabilities{PerMessageRead: true})
	assert.True(t, ids.Capabilities("slack").PerMessageRead)
}

func TestAllReturnsIndependentCopy(t *testing.T) {
	ids := New()
	ids.SetSelf("slack", model.User{ID: "u1"})

	all := ids.All()
	require.Len(t, all, 1)
	all["slack"] = model.User{ID: "mutated"}

	self, _ := ids.Self("slack")
	assert.Equal(t, "u1", self.ID, "mutating the returned map must not affect Identities")
}

func TestMentionsSelf(t *testing.T) {
	self := model.User{ID: "U123", Name: "Ada"}
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"mentions by name", "hey @ada, can you review this?", true},
		{"mentions by name different case", "hey @ADA", true},
		{"mentions by id verbatim", "ping U123 please", true},
		{"no mention", "just a regular message", false},
		{"partial name is not a mention", "adapter pattern works here", false},
		{"longer name sharing a prefix is not a mention", "hey @adam, can you take this?", false},
		{"mention followed by punctuation still matches", "hey @ada!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MentionsSelf(tt.content, self))
		})
	}
}

func TestMentionsSelfEmptyIdentity(t *testing.T) {
	assert.False(t, MentionsSelf("@ada hello", model.User{}))
}
