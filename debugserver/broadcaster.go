// Package debugserver exposes a running hart over HTTP and WebSocket:
// a small introspection API for watching or driving a simulation from a
// browser or another process instead of parsing stdout.
package debugserver

import "sync"

// Event is one message fanned out to connected WebSocket clients, one per
// executed instruction.
type Event struct {
	Sequence uint64 `json:"sequence"`
	PC       uint32 `json:"pc"`
	Word     uint32 `json:"word"`
	Mnemonic string `json:"mnemonic"`
	Halted   bool   `json:"halted"`
}

// Broadcaster fans Events out to every subscribed client, in the
// register/unregister/broadcast single-goroutine pattern.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[chan Event]bool
	broadcast  chan Event
	register   chan chan Event
	unregister chan chan Event
	done       chan struct{}
}

// NewBroadcaster starts a Broadcaster's event loop and returns it.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{
		clients:    make(map[chan Event]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case ch := <-b.register:
			b.mu.Lock()
			b.clients[ch] = true
			b.mu.Unlock()

		case ch := <-b.unregister:
			b.mu.Lock()
			if b.clients[ch] {
				delete(b.clients, ch)
				close(ch)
			}
			b.mu.Unlock()

		case ev := <-b.broadcast:
			b.mu.RLock()
			for ch := range b.clients {
				select {
				case ch <- ev:
				default:
				}
			}
			b.mu.RUnlock()

		case <-b.done:
			b.mu.Lock()
			for ch := range b.clients {
				close(ch)
			}
			b.clients = make(map[chan Event]bool)
			b.mu.Unlock()
			return
		}
	}
}

// Subscribe registers a new client channel.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.register <- ch
	return ch
}

// Unsubscribe removes and closes a client channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.unregister <- ch
}

// Publish fans an Event out to all subscribers, dropping it if the
// broadcast channel is saturated rather than blocking the caller.
func (b *Broadcaster) Publish(ev Event) {
	select {
	case b.broadcast <- ev:
	default:
	}
}

// Close shuts the broadcaster down and closes every client channel.
func (b *Broadcaster) Close() {
	close(b.done)
}

// SubscriberCount reports how many clients are currently connected.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
