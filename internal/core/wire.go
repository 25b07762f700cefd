package core

import (
	"github.com/mraspaud/kb-solaria/internal/model"
	"github.com/mraspaud/kb-solaria/internal/transport"
)

// ApplyEvent is the single entry point a transport.Shim's Handler should
// call for every decoded inbound event (spec.md §6's event table). It is
// the wire-to-command-API adapter: each case translates one transport
// event into the Core operation(s) it implies.
func (c *Core) ApplyEvent(ev transport.Event) {
	switch ev.Type {
	case transport.EventSelfInfo:
		c.SetIdentity(ev.Service, ev.SelfInfoUser, ev.SelfInfoChannelPrefix)
	case transport.EventChannelList:
		c.UpsertChannels(ev.Service, ev.Channels)
	case transport.EventUserList:
		c.ApplyUserList(ev.Service, ev.Users)
	case transport.EventMessage:
		c.applyMessageEvent(ev)
	case transport.EventMessageUpdate:
		c.ApplyMessageUpdate(ev.MessageUpdateID, ev.MessageUpdateBody)
	case transport.EventMessageDelete:
		c.ApplyMessageDelete(ev.MessageDeleteID)
	case transport.EventMessageAck:
		c.HandleAck(ev.AckClientID, ev.AckRealID, ev.AckText)
	case transport.EventThreadSubscriptions:
		c.HydrateParticipatedThreads(ev.ThreadSubscriptions)
	}
}

// applyMessageEvent converts a `message` event's wire payload to a
// model.Message and runs the dispatch pipeline (spec.md §4.F). If
// thread_id is present, the message is additionally routed into the
// synthetic thread_<id> buffer, if it is currently open (spec.md §6
// "message": "if thread_id present, route into thread_<id> buffer").
func (c *Core) applyMessageEvent(ev transport.Event) {
	defer c.notify()

	wm := ev.Message
	msg := &model.Message{
		ID:            wm.ID,
		ClientID:      wm.ClientID,
		Status:        model.StatusSent,
		Author:        model.User{ID: wm.Author.ID, Name: wm.Author.DisplayName, Color: wm.Author.Color},
		Content:       wm.Body,
		Timestamp:     wm.Timestamp,
		Reactions:     wm.Reactions,
		ThreadID:      ev.ThreadID,
		SourceChannel: ev.ChannelID,
	}
	if wm.Replies != nil {
		msg.ReplyCount = wm.Replies.Count
	}
	for _, a := range wm.Attachments {
		msg.Attachments = append(msg.Attachments, model.Attachment{ID: a.ID, Name: a.Name, URL: a.URL})
	}

	c.dispatchMessage(ev.ChannelID, msg)

	if ev.ThreadID != "" {
		if entry, ok := c.WS.Entry(model.ThreadChannelID(ev.ThreadID)); ok {
			entry.Buffer.Append(msg.ID)
		}
	}
}
