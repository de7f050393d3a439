package ws

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ClientHandle represents one live connection inside a room. The hub only
// keeps it for membership bookkeeping and message delivery; the session owns
// the underlying socket.
type ClientHandle struct {
	id     uuid.UUID
	userID uuid.UUID
	box    *outbox
}

// UserID returns the id of the user owning this connection.
func (h *ClientHandle) UserID() uuid.UUID {
	return h.userID
}

// Receive returns the ordered stream of messages queued for this connection.
func (h *ClientHandle) Receive() <-chan ServerMessage {
	return h.box.Receive()
}

// Hub tracks the live connections of every contract chat room. Rooms are
// keyed by contract id, exist only while at least one connection is
// registered, and hold one handle per connection (a user on two devices has
// two handles).
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID][]*ClientHandle
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID][]*ClientHandle),
		logger: logger,
	}
}

// Join registers a new connection for a contract, creating the room if
// needed. Existing members of other users are told the user came online
// before the new handle is inserted, so the joiner never sees its own
// presence announcement.
func (hub *Hub) Join(contractID, userID uuid.UUID) *ClientHandle {
	handle := &ClientHandle{
		id:     uuid.New(),
		userID: userID,
		box:    newOutbox(),
	}

	online := PresenceEvent(userID, true)

	hub.mu.Lock()
	room := hub.rooms[contractID]
	for _, member := range room {
		if member.userID != userID {
			member.box.Enqueue(online)
		}
	}
	hub.rooms[contractID] = append(room, handle)
	size := len(hub.rooms[contractID])
	hub.mu.Unlock()

	hub.logger.Info("client joined chat room",
		"contractID", contractID, "userID", userID, "connections", size)

	return handle
}

// Leave removes exactly the given handle from the contract's room. Removal is
// by handle identity, not user id, so a user's sibling connection on another
// device survives. If the departing handle was the user's last one, remaining
// members get an offline presence event. Empty rooms are deleted.
func (hub *Hub) Leave(contractID uuid.UUID, handle *ClientHandle) {
	handle.box.Close()

	hub.mu.Lock()
	room, ok := hub.rooms[contractID]
	if !ok {
		hub.mu.Unlock()
		return
	}

	found := false
	for i, member := range room {
		if member.id == handle.id {
			room = append(room[:i], room[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		hub.mu.Unlock()
		return
	}

	if len(room) == 0 {
		delete(hub.rooms, contractID)
		hub.mu.Unlock()
		hub.logger.Info("chat room closed", "contractID", contractID)
		return
	}
	hub.rooms[contractID] = room

	stillConnected := false
	for _, member := range room {
		if member.userID == handle.userID {
			stillConnected = true
			break
		}
	}
	if !stillConnected {
		offline := PresenceEvent(handle.userID, false)
		for _, member := range room {
			member.box.Enqueue(offline)
		}
	}
	hub.mu.Unlock()

	hub.logger.Info("client left chat room",
		"contractID", contractID, "userID", handle.userID)
}

// Broadcast queues msg for every connection in the contract's room, skipping
// connections owned by exclude. Pass uuid.Nil to deliver to everyone,
// including the sender. Delivery to a closed handle is a no-op; cleanup is
// Leave's job, driven by the session's own disconnect detection.
func (hub *Hub) Broadcast(contractID uuid.UUID, msg ServerMessage, exclude uuid.UUID) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, member := range hub.rooms[contractID] {
		if exclude != uuid.Nil && member.userID == exclude {
			continue
		}
		member.box.Enqueue(msg)
	}
}

// SendToUser queues msg for every connection a user has in the contract's
// room (zero, one, or many).
func (hub *Hub) SendToUser(contractID, userID uuid.UUID, msg ServerMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, member := range hub.rooms[contractID] {
		if member.userID == userID {
			member.box.Enqueue(msg)
		}
	}
}

// IsUserOnline reports whether the user has at least one live connection in
// the contract's room.
func (hub *Hub) IsUserOnline(contractID, userID uuid.UUID) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for _, member := range hub.rooms[contractID] {
		if member.userID == userID {
			return true
		}
	}
	return false
}

// RoomSize returns the number of live connections in the contract's room.
func (hub *Hub) RoomSize(contractID uuid.UUID) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.rooms[contractID])
}
