package ws

import "sync"

// outbox is the per-connection delivery queue between the hub and the write
// pump. Enqueue never blocks: messages are buffered in order and a pump
// goroutine feeds them to the single consumer. Close tears the queue down even
// if the consumer has stopped reading.
type outbox struct {
	mu     sync.Mutex
	queue  []ServerMessage
	notify chan struct{}
	done   chan struct{}
	out    chan ServerMessage
	closed bool
}

func newOutbox() *outbox {
	o := &outbox{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan ServerMessage),
	}
	go o.pump()
	return o
}

// Receive returns the channel the session's write pump drains. It is closed
// after Close.
func (o *outbox) Receive() <-chan ServerMessage {
	return o.out
}

// Enqueue appends a message to the buffer. It returns false if the outbox is
// closed; the message is dropped in that case, which is the hub's dead-handle
// no-op delivery.
func (o *outbox) Enqueue(msg ServerMessage) bool {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}
	o.queue = append(o.queue, msg)
	o.mu.Unlock()

	select {
	case o.notify <- struct{}{}:
	default:
	}
	return true
}

// Close stops the outbox. Undelivered messages are discarded; the connection
// they were destined for is gone.
func (o *outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	close(o.done)
}

func (o *outbox) pump() {
	defer close(o.out)

	for {
		select {
		case <-o.notify:
		case <-o.done:
			return
		}

		for {
			o.mu.Lock()
			if len(o.queue) == 0 {
				o.mu.Unlock()
				break
			}
			msg := o.queue[0]
			o.queue = o.queue[1:]
			o.mu.Unlock()

			select {
			case o.out <- msg:
			case <-o.done:
				return
			}
		}
	}
}
