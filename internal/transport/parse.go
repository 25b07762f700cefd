package transport

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Parse decodes a raw inbound frame into an Event. It first sniffs the
// `event` discriminator field with jsonparser (avoiding a full unmarshal
// into every possible shape before we even know which one applies), then
// unmarshals only the fields that event type needs.
//
// Parse errors are never fatal to the caller (spec.md §7 "Transport
// errors ... never surface as exceptions"): the Shim passes them to its
// ErrorSink and drops the frame. Nothing in this package writes them to
// the internal system channel.
func Parse(raw []byte) (Event, error) {
	kind, err := jsonparser.GetString(raw, "event")
	if err != nil {
		return Event{}, fmt.Errorf("missing event discriminator: %w", err)
	}

	switch EventType(kind) {
	case EventSelfInfo:
		return parseSelfInfo(raw)
	case EventChannelList:
		return parseChannelList(raw)
	case EventUserList:
		return parseUserList(raw)
	case EventMessage:
		return parseMessage(raw)
	case EventMessageUpdate:
		return parseMessageUpdate(raw)
	case EventMessageDelete:
		return parseMessageDelete(raw)
	case EventMessageAck:
		return parseMessageAck(raw)
	case EventThreadSubscriptions:
		return parseThreadSubscriptions(raw)
	default:
		return Event{}, fmt.Errorf("unknown event type %q", kind)
	}
}

func parseSelfInfo(raw []byte) (Event, error) {
	var env struct {
		Service struct {
			ID string `json:"id"`
		} `json:"service"`
		User          Author `json:"user"`
		ChannelPrefix string `json:"channel_prefix"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{
		Type:                  EventSelfInfo,
		Service:               env.Service.ID,
		SelfInfoUser:          env.User,
		SelfInfoChannelPrefix: env.ChannelPrefix,
	}, nil
}

func parseChannelList(raw []byte) (Event, error) {
	var env struct {
		Service  string        `json:"service"`
		Channels []WireChannel `json:"channels"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{Type: EventChannelList, Service: env.Service, Channels: env.Channels}, nil
}

func parseUserList(raw []byte) (Event, error) {
	var env struct {
		Service string     `json:"service"`
		Users   []WireUser `json:"users"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{Type: EventUserList, Service: env.Service, Users: env.Users}, nil
}

func parseMessage(raw []byte) (Event, error) {
	var env struct {
		Service   string      `json:"service"`
		ChannelID string      `json:"channel_id"`
		ThreadID  string      `json:"thread_id,omitempty"`
		Message   WireMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{
		Type:      EventMessage,
		Service:   env.Service,
		ChannelID: env.ChannelID,
		ThreadID:  env.ThreadID,
		Message:   env.Message,
	}, nil
}

func parseMessageUpdate(raw []byte) (Event, error) {
	var env struct {
		Message struct {
			ID   string `json:"id"`
			Body string `json:"body"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{
		Type:              EventMessageUpdate,
		MessageUpdateID:   env.Message.ID,
		MessageUpdateBody: env.Message.Body,
	}, nil
}

func parseMessageDelete(raw []byte) (Event, error) {
	var env struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{Type: EventMessageDelete, MessageDeleteID: env.MessageID}, nil
}

func parseMessageAck(raw []byte) (Event, error) {
	var env struct {
		ClientID string `json:"client_id"`
		RealID   string `json:"real_id"`
		Text     string `json:"text,omitempty"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{
		Type:        EventMessageAck,
		AckClientID: env.ClientID,
		AckRealID:   env.RealID,
		AckText:     env.Text,
	}, nil
}

func parseThreadSubscriptions(raw []byte) (Event, error) {
	var env struct {
		Service   string                    `json:"service"`
		ThreadIDs []WireThreadSubscription `json:"thread_ids"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{}, err
	}
	return Event{Type: EventThreadSubscriptions, Service: env.Service, ThreadSubscriptions: env.ThreadIDs}, nil
}
