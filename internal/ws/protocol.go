package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Client -> server message types.
const (
	TypeSendMessage = "send_message"
	TypeMarkRead    = "mark_read"
	TypeTyping      = "typing"
	TypeStopTyping  = "stop_typing"
)

// Server -> client message types.
const (
	TypeNewMessage     = "new_message"
	TypeMessageRead    = "message_read"
	TypeUserTyping     = "user_typing"
	TypeUserStopTyping = "user_stop_typing"
	TypePresence       = "presence"
	TypeError          = "error"
)

// ClientMessage is a decoded inbound frame. Type selects the variant; only the
// fields belonging to that variant are meaningful.
type ClientMessage struct {
	Type      string    `json:"type"`
	Content   string    `json:"content,omitempty"`
	MessageID uuid.UUID `json:"message_id,omitempty"`
}

// ServerMessage is an outbound frame delivered to connected clients. UUID
// fields are pointers so frames only carry the fields of their variant.
type ServerMessage struct {
	Type      string     `json:"type"`
	ID        *uuid.UUID `json:"id,omitempty"`
	SenderID  *uuid.UUID `json:"sender_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	MessageID *uuid.UUID `json:"message_id,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Online    *bool      `json:"online,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// DecodeClientMessage parses an inbound text frame. Frames that are not valid
// JSON, carry an unknown type tag, or miss a required field for their variant
// fail with an error; the session reports it in-band and keeps running.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("invalid message format: %w", err)
	}

	switch msg.Type {
	case TypeSendMessage, TypeTyping, TypeStopTyping:
	case TypeMarkRead:
		if msg.MessageID == uuid.Nil {
			return ClientMessage{}, fmt.Errorf("mark_read requires message_id")
		}
	default:
		return ClientMessage{}, fmt.Errorf("unknown message type %q", msg.Type)
	}

	return msg, nil
}

// EncodeServerMessage serializes an outbound frame to its wire form.
func EncodeServerMessage(msg ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func NewMessageEvent(id, senderID uuid.UUID, content string, createdAt time.Time) ServerMessage {
	return ServerMessage{
		Type:      TypeNewMessage,
		ID:        &id,
		SenderID:  &senderID,
		Content:   content,
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	}
}

func MessageReadEvent(messageID uuid.UUID) ServerMessage {
	return ServerMessage{Type: TypeMessageRead, MessageID: &messageID}
}

func UserTypingEvent(userID uuid.UUID) ServerMessage {
	return ServerMessage{Type: TypeUserTyping, UserID: &userID}
}

func UserStopTypingEvent(userID uuid.UUID) ServerMessage {
	return ServerMessage{Type: TypeUserStopTyping, UserID: &userID}
}

func PresenceEvent(userID uuid.UUID, online bool) ServerMessage {
	return ServerMessage{Type: TypePresence, UserID: &userID, Online: &online}
}

func ErrorEvent(message string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: message}
}
