package lifecycle

import (
	"sync"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// EventType names a lifecycle transition broadcast on the EventBus.
// Subscribers are host-side code holding the Engine (via Engine.Events)
// rather than extensions themselves — extensions get no pub/sub surface of
// their own.
type EventType string

const (
	EventExtensionDiscovered EventType = "extension.discovered"
	EventExtensionResolved   EventType = "extension.resolved"
	EventExtensionLoaded     EventType = "extension.loaded"
	EventExtensionStarted    EventType = "extension.started"
	EventExtensionFailed     EventType = "extension.failed"
	EventExtensionTerminated EventType = "extension.terminated"
)

// EventHandler reacts to one lifecycle event about one Extension.
type EventHandler func(e *Extension)

// EventBus fans out lifecycle transitions to subscribers, adapted from the
// teacher's subscribe/emit-with-panic-recovery event bus: emission here is
// synchronous (the engine thread drives every transition already and needs
// subscribers to observe them in order), but a panicking handler is still
// isolated so a diagnostics subscriber can never crash the engine thread.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
	log         plugify.Logger
}

// NewEventBus constructs an empty EventBus. log may be nil, in which case a
// handler panic is recovered silently.
func NewEventBus(log plugify.Logger) *EventBus {
	return &EventBus{subscribers: make(map[EventType][]EventHandler), log: log}
}

// Subscribe registers handler for events of type eventType.
func (bus *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers[eventType] = append(bus.subscribers[eventType], handler)
}

// Emit calls every handler subscribed to eventType with ext, recovering and
// discarding a handler's panic rather than letting it unwind into the
// engine thread.
func (bus *EventBus) Emit(eventType EventType, ext *Extension) {
	bus.mu.RLock()
	handlers := append([]EventHandler(nil), bus.subscribers[eventType]...)
	bus.mu.RUnlock()

	for _, h := range handlers {
		bus.safeInvoke(h, ext)
	}
}

func (bus *EventBus) safeInvoke(h EventHandler, ext *Extension) {
	defer func() {
		if r := recover(); r != nil && bus.log != nil {
			bus.log.Log("lifecycle: event handler panicked: "+panicString(r), plugify.SeverityError)
		}
	}()
	h(ext)
}

func panicString(v any) string {
	switch x := v.(type) {
	case error:
		return x.Error()
	case string:
		return x
	default:
		return "unknown panic value"
	}
}
