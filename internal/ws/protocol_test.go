package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("send_message", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"send_message","content":"hi there"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Type != TypeSendMessage || msg.Content != "hi there" {
			t.Fatalf("got %+v", msg)
		}
	})

	t.Run("mark_read", func(t *testing.T) {
		id := uuid.New()
		msg, err := DecodeClientMessage([]byte(`{"type":"mark_read","message_id":"` + id.String() + `"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.MessageID != id {
			t.Fatalf("got message id %s, want %s", msg.MessageID, id)
		}
	})

	t.Run("mark_read without message_id", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"type":"mark_read"}`)); err == nil {
			t.Fatal("expected error for missing message_id")
		}
	})

	t.Run("typing variants", func(t *testing.T) {
		for _, typ := range []string{TypeTyping, TypeStopTyping} {
			if _, err := DecodeClientMessage([]byte(`{"type":"` + typ + `"}`)); err != nil {
				t.Fatalf("%s: unexpected error: %v", typ, err)
			}
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"type":"shrug"}`)); err == nil {
			t.Fatal("expected error for unknown type")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{nope`)); err == nil {
			t.Fatal("expected error for invalid json")
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{}`)); err == nil {
			t.Fatal("expected error for missing type")
		}
	})
}

func TestNewMessageEventTimestamp(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	evt := NewMessageEvent(uuid.New(), uuid.New(), "x", created)

	parsed, err := time.Parse(time.RFC3339Nano, evt.CreatedAt)
	if err != nil {
		t.Fatalf("created_at %q is not RFC3339: %v", evt.CreatedAt, err)
	}
	if !parsed.Equal(created) {
		t.Fatalf("got %v, want %v", parsed, created)
	}
}

func TestPresenceEventEncoding(t *testing.T) {
	userID := uuid.New()
	data, err := EncodeServerMessage(PresenceEvent(userID, false))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["type"] != TypePresence {
		t.Fatalf("type = %v", decoded["type"])
	}
	// online must be present even when false.
	online, ok := decoded["online"].(bool)
	if !ok || online {
		t.Fatalf("online = %v, want false", decoded["online"])
	}
	if decoded["user_id"] != userID.String() {
		t.Fatalf("user_id = %v", decoded["user_id"])
	}
}

func TestServerMessageOmitsEmptyFields(t *testing.T) {
	data, err := EncodeServerMessage(ErrorEvent("boom"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("error event should carry only type and message, got %v", decoded)
	}
}
