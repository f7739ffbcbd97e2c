package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Subscriber is a live display connection. Delivery happens through the
// buffered Send channel; the transport layer drains it into the socket.
type Subscriber struct {
	ID   string
	Send chan []byte
}

type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*Subscriber
}

const sendBuffer = 16

func New() *Hub {
	return &Hub{subscribers: make(map[string]*Subscriber)}
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Calling it
// again for the same subscriber, or after Publish already dropped it,
// is a no-op.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub.ID)
}

// Publish fans the event out to every subscriber. Delivery is
// best-effort: a subscriber whose buffer is full cannot accept the
// event promptly and is dropped, so one slow display never blocks the
// rest.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		select {
		case sub.Send <- payload:
		default:
			log.Printf("hub drop slow subscriber %s", id)
			h.remove(id)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// remove must be called with h.mu held. The map membership check makes
// the channel close exactly-once.
func (h *Hub) remove(id string) {
	sub, ok := h.subscribers[id]
	if !ok {
		return
	}
	delete(h.subscribers, id)
	close(sub.Send)
}
