package mount

import (
	"sync"

	"github.com/google/uuid"
)

// TelemetryEventKind tags the payload carried by a TelemetryEvent.
type TelemetryEventKind int

const (
	EventPointing TelemetryEventKind = iota
	EventSiteLocation
	EventStateChanged
)

// TelemetryEvent is broadcast to every fan-out subscriber whenever a
// controller callback fires or the mount state transitions.
type TelemetryEvent struct {
	Kind         TelemetryEventKind
	Pointing     EquatorialCoordinate
	SiteLocation GeodeticCoordinate
	State        MountState
}

// telemetryHub is the subscriber registry, modeled directly on the
// teacher's SerialMux Subscribe/Unsubscribe (internal/serialmux/serialmux.go):
// a map of subscriber id to buffered channel, guarded by its own mutex,
// independent of the guarded cells used for controller state. Publishing is
// best-effort — a full subscriber channel drops the event rather than
// blocking the receiver loop.
type telemetryHub struct {
	mu          sync.Mutex
	subscribers map[string]chan TelemetryEvent
}

const subscriberBufferSize = 16

func newTelemetryHub() *telemetryHub {
	return &telemetryHub{
		subscribers: make(map[string]chan TelemetryEvent),
	}
}

// Subscribe registers a new subscriber and returns its id and event channel.
func (h *telemetryHub) Subscribe() (string, <-chan TelemetryEvent) {
	id := uuid.New().String()
	ch := make(chan TelemetryEvent, subscriberBufferSize)
	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes and closes a subscriber's channel.
func (h *telemetryHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
}

// publish sends ev to every subscriber without blocking; a full channel
// drops the event for that subscriber only.
func (h *telemetryHub) publish(ev TelemetryEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// closeAll closes and removes every subscriber, used when the controller
// stops.
func (h *telemetryHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}
