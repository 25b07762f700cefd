package transport

import "encoding/json"

// CommandType is the `command` discriminator field of an outbound
// transport message (spec.md §6).
type CommandType string

const (
	CommandSwitchChannel   CommandType = "switch_channel"
	CommandFetchThread     CommandType = "fetch_thread"
	CommandFetchHistory    CommandType = "fetch_history"
	CommandPostMessage     CommandType = "post_message"
	CommandPostReply       CommandType = "post_reply"
	CommandMessageUpdate   CommandType = "message_update"
	CommandMessageDelete   CommandType = "message_delete"
	CommandReact           CommandType = "react"
	CommandMarkRead        CommandType = "mark_read"
	CommandTyping          CommandType = "typing"
	CommandOpenPath        CommandType = "open_path"
	CommandSaveToDownloads CommandType = "save_to_downloads"
)

// ReactionAction is the `action` field of a `react` command.
type ReactionAction string

const (
	ReactionAdd    ReactionAction = "add"
	ReactionRemove ReactionAction = "remove"
)

// Command is an outbound message to the transport. ServiceID and
// ChannelID are always present; ChannelID is the real parent channel's id
// for thread contexts (spec.md §6). Command-specific fields are set as
// needed per Type.
type Command struct {
	Type      CommandType `json:"command"`
	ServiceID string      `json:"service_id"`
	ChannelID string      `json:"channel_id"`

	Body      string         `json:"body,omitempty"`
	ClientID  string         `json:"client_id,omitempty"`
	ThreadID  string         `json:"thread_id,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	Reaction  string         `json:"reaction,omitempty"`
	Action    ReactionAction `json:"action,omitempty"`
	After     string         `json:"after,omitempty"`
}

// Encode marshals a Command to its wire JSON form.
func Encode(c Command) ([]byte, error) {
	return json.Marshal(c)
}
