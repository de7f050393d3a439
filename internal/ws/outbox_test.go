package ws

import (
	"fmt"
	"testing"
	"time"
)

func receiveOne(t *testing.T, o *outbox) ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-o.Receive():
		if !ok {
			t.Fatal("outbox channel closed unexpectedly")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return ServerMessage{}
}

func TestOutboxDeliversInOrder(t *testing.T) {
	o := newOutbox()
	defer o.Close()

	const n = 100
	for i := 0; i < n; i++ {
		if !o.Enqueue(ErrorEvent(fmt.Sprintf("msg-%d", i))) {
			t.Fatalf("enqueue %d failed on open outbox", i)
		}
	}

	for i := 0; i < n; i++ {
		got := receiveOne(t, o)
		if want := fmt.Sprintf("msg-%d", i); got.Message != want {
			t.Fatalf("message %d: got %q, want %q", i, got.Message, want)
		}
	}
}

func TestOutboxEnqueueAfterClose(t *testing.T) {
	o := newOutbox()
	o.Close()

	if o.Enqueue(ErrorEvent("late")) {
		t.Fatal("enqueue after close should report false")
	}
}

func TestOutboxCloseTerminatesReceive(t *testing.T) {
	o := newOutbox()
	o.Enqueue(ErrorEvent("pending"))
	o.Close()

	// The channel must close even though a message may still be buffered.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-o.Receive():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("receive channel never closed")
		}
	}
}

func TestOutboxCloseWithStalledConsumer(t *testing.T) {
	o := newOutbox()
	// Nobody reads; the pump may be blocked mid-delivery.
	for i := 0; i < 50; i++ {
		o.Enqueue(ErrorEvent("stalled"))
	}

	done := make(chan struct{})
	go func() {
		o.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close blocked on a stalled consumer")
	}
}

func TestOutboxCloseIsIdempotent(t *testing.T) {
	o := newOutbox()
	o.Close()
	o.Close()
}
