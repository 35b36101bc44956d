package pipeline

import (
	"sync"
	"time"
)

// Event is one progress update for a capture session. Progress is a fraction
// in [0,1] and only ever moves forward within a session.
type Event struct {
	Stage    string         `json:"stage"`
	Progress float64        `json:"progress"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// StageHeartbeat is the synthetic stage Wait emits when no real event
// arrives within its timeout, so pollers can tell "still working" from
// "stream gone".
const StageHeartbeat = "heartbeat"

const eventBuffer = 64

// Hub fans progress events out to per-session subscribers. Publishing never
// blocks the pipeline: when a session's buffer is full the oldest event is
// dropped in favor of the new one. A session's stream exists only for the
// duration of its run; Close removes it from the hub.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]chan Event)}
}

// Subscribe returns the event channel for a session, creating it if needed.
// Subscribe before the run starts: the channel is closed and the session
// removed once the run completes, so buffered events can still be drained
// from the returned channel afterwards.
func (h *Hub) Subscribe(sessionID string) <-chan Event {
	return h.channel(sessionID)
}

// Publish delivers an event to the session's subscribers without blocking.
func (h *Hub) Publish(sessionID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := h.channelLocked(sessionID)
	for {
		select {
		case ch <- ev:
			return
		default:
			// Buffer full: drop the oldest event and retry.
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Wait blocks for the next event, up to timeout. On timeout it returns a
// heartbeat event; once the run completes and buffered events are drained
// it returns ok=false.
func (h *Hub) Wait(sessionID string, timeout time.Duration) (Event, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, open := <-h.channel(sessionID):
		if !open {
			return Event{}, false
		}
		return ev, true
	case <-timer.C:
		return Event{Stage: StageHeartbeat, Message: "processing"}, true
	}
}

// Close ends a session's stream: the channel is closed so subscribers
// observe end-of-stream after draining, and the session is removed from the
// hub. Safe to call for unknown sessions.
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.sessions[sessionID]; ok {
		close(ch)
		delete(h.sessions, sessionID)
	}
}

func (h *Hub) channel(sessionID string) chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channelLocked(sessionID)
}

func (h *Hub) channelLocked(sessionID string) chan Event {
	ch, ok := h.sessions[sessionID]
	if !ok {
		ch = make(chan Event, eventBuffer)
		h.sessions[sessionID] = ch
	}
	return ch
}
