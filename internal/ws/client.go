package ws

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// StoredMessage is the persisted record the store hands back after an insert.
// The chat package owns the schema; the session only forwards the
// server-assigned id and timestamp to the room.
type StoredMessage struct {
	ID        uuid.UUID
	SenderID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

// MessageStore is the durable side of the chat: inserts assign id and
// timestamp, MarkRead flips the read flag.
type MessageStore interface {
	Insert(ctx context.Context, contractID, senderID uuid.UUID, content string) (StoredMessage, error)
	MarkRead(ctx context.Context, messageID uuid.UUID) error
}

// Client drives one WebSocket session: the read pump parses, validates,
// persists and fans out inbound frames; the write pump drains the room
// outbox to the socket. Whichever pump dies first triggers the single
// hub.Leave via closeOnce, and closing the socket unblocks the other pump.
type Client struct {
	contractID uuid.UUID
	userID     uuid.UUID
	conn       *websocket.Conn
	hub        *Hub
	handle     *ClientHandle
	store      MessageStore
	logger     *slog.Logger

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, store MessageStore, contractID, userID uuid.UUID, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		contractID: contractID,
		userID:     userID,
		conn:       conn,
		hub:        hub,
		store:      store,
		logger:     logger,
	}
}

// Start joins the room and launches both pumps. It returns immediately; the
// session lives in its goroutines until the peer disconnects or the
// transport fails.
func (c *Client) Start() {
	c.handle = c.hub.Join(c.contractID, c.userID)
	go c.writePump()
	go c.readPump()
}

// shutdown runs the session teardown exactly once, no matter which pump or
// error path got there first.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.hub.Leave(c.contractID, c.handle)
		c.conn.Close()
	})
}

// reply queues a message for this connection only, without touching the rest
// of the room. All socket writes stay in the write pump.
func (c *Client) reply(msg ServerMessage) {
	c.handle.box.Enqueue(msg)
}

func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			// Peer close frame or transport error; either way the
			// session is over.
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.handleFrame(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case msg, ok := <-c.handle.Receive():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Outbox closed by Leave; tell the peer we're done.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := EncodeServerMessage(msg)
			if err != nil {
				c.logger.Error("failed to encode server message", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame decodes one inbound frame and dispatches it. Malformed frames
// and persistence failures are answered with an in-band error to this
// connection only; the session keeps running.
func (c *Client) handleFrame(data []byte) {
	msg, err := DecodeClientMessage(data)
	if err != nil {
		c.reply(ErrorEvent(err.Error()))
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case TypeSendMessage:
		if strings.TrimSpace(msg.Content) == "" {
			c.reply(ErrorEvent("message content cannot be empty"))
			return
		}
		saved, err := c.store.Insert(ctx, c.contractID, c.userID, msg.Content)
		if err != nil {
			c.logger.Error("failed to save message",
				"contractID", c.contractID, "userID", c.userID, "error", err)
			c.reply(ErrorEvent("failed to save message"))
			return
		}
		// Everyone, sender included: the echo carries the
		// server-assigned id and timestamp.
		c.hub.Broadcast(c.contractID,
			NewMessageEvent(saved.ID, saved.SenderID, saved.Content, saved.CreatedAt),
			uuid.Nil)

	case TypeMarkRead:
		if err := c.store.MarkRead(ctx, msg.MessageID); err != nil {
			c.logger.Error("failed to mark message as read",
				"messageID", msg.MessageID, "error", err)
			c.reply(ErrorEvent("failed to mark message as read"))
			return
		}
		c.hub.Broadcast(c.contractID, MessageReadEvent(msg.MessageID), uuid.Nil)

	case TypeTyping:
		c.hub.Broadcast(c.contractID, UserTypingEvent(c.userID), c.userID)

	case TypeStopTyping:
		c.hub.Broadcast(c.contractID, UserStopTypingEvent(c.userID), c.userID)
	}
}
