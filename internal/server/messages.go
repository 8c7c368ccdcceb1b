package server

import (
	"fmt"
	"time"

	"github.com/stride-app/stride-server/internal/database"
)

// Event types sent by clients.
const (
	EventJoinChat    = "join_chat"
	EventSendMessage = "send_message"
)

// Event types broadcast to a room.
const (
	EventJoined     = "joined"
	EventNewMessage = "new_message"
)

// ClientEvent is the envelope for everything a client sends over the
// websocket. The credential travels inside every event; there is no
// connection-level handshake.
type ClientEvent struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	ChatId  int    `json:"chat_id,omitempty"`
	Content string `json:"content,omitempty"`
}

type ServerEvent struct {
	Type string `json:"type"`

	// joined
	Message string `json:"message,omitempty"`

	// new_message
	Id        int        `json:"id,omitempty"`
	Sender    string     `json:"sender,omitempty"`
	Content   string     `json:"content,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func newJoinedEvent(name string) *ServerEvent {
	return &ServerEvent{
		Type:    EventJoined,
		Message: fmt.Sprintf("%s joined the chat", name),
	}
}

// newMessageEvent carries the persisted message, so the id and timestamp
// clients see are the ones the log assigned.
func newMessageEvent(msg database.Message, sender string) *ServerEvent {
	ts := msg.CreatedAt
	return &ServerEvent{
		Type:      EventNewMessage,
		Id:        msg.Id,
		Sender:    sender,
		Content:   msg.Content,
		Timestamp: &ts,
	}
}
