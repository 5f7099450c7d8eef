package ws

import (
	"encoding/json"
	"sync"
)

// event names on the wire, kept compatible with the socket.io frontend
const (
	EventTaskCreated = "todo created"
	EventTaskUpdated = "todo updated"
	EventTaskDeleted = "todo deleted"
)

// TaskPayload is the task representation carried by every broadcast event.
type TaskPayload struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	SessionID uint   `json:"session_id"`
}

type envelope struct {
	Event string      `json:"event"`
	Data  TaskPayload `json:"data"`
}

// Hub fans task-change events out to connected clients. Delivery is scoped
// by todo-list session id: a client only receives events for sessions it
// subscribed to at connect time. Publish never blocks — events to slow
// clients are dropped, events with no subscribers go nowhere.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uint]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID := range c.sessions {
		set := h.subscribers[sessionID]
		if set == nil {
			set = make(map[*Client]struct{})
			h.subscribers[sessionID] = set
		}
		set[c] = struct{}{}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID := range c.sessions {
		set := h.subscribers[sessionID]
		if set == nil {
			continue
		}
		delete(set, c)
		if len(set) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
	c.closeOnce.Do(func() { close(c.send) })
}

// Publish sends an event to every client subscribed to the task's session.
func (h *Hub) Publish(event string, task TaskPayload) {
	msg, err := json.Marshal(envelope{Event: event, Data: task})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscribers[task.SessionID] {
		select {
		case c.send <- msg:
		default:
			// client is not draining its queue, drop the event
		}
	}
}

// SubscriberCount reports how many clients listen on a session.
func (h *Hub) SubscriberCount(sessionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sessionID])
}
