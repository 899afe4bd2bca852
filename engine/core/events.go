package core

import (
	"reflect"
	"sync"
)

// Host event codes. Applications should use codes from EventCodeUser upwards.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * key := ctx.Key
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * key := ctx.Key
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Framebuffer resized by the OS.
	/* Context usage:
	 * width, height := ctx.Width, ctx.Height
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// A new configuration has been loaded.
	/* Context usage:
	 * cfg := ctx.Config
	 */
	EVENT_CODE_CONFIG_RELOADED SystemEventCode = 0x09

	EventCodeUser SystemEventCode = 0x100
)

// Key codes the host reacts to. They match the printable ASCII value of the key.
type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_C      KeyCode = 0x43
	KEY_L      KeyCode = 0x4C
	KEY_P      KeyCode = 0x50
	KEY_T      KeyCode = 0x54
)

type EventContext struct {
	Key    KeyCode
	Width  int
	Height int
	Config *Config
	Data   any
}

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender any, listener any, ctx EventContext) bool

type registeredEvent struct {
	listener any
	callback FnOnEvent
}

// EventBus dispatches events synchronously to the listeners registered for a code, in
// registration order. It is safe for concurrent use; callbacks run on the firing goroutine.
type EventBus struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]registeredEvent
}

func NewEventBus() *EventBus {
	return &EventBus{registered: make(map[SystemEventCode][]registeredEvent)}
}

func sameCallback(a, b FnOnEvent) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

/**
 * Register to listen for when events are sent with the provided code. A listener/callback
 * pair that is already registered is rejected.
 * @param code The event code to listen for.
 * @param listener The listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func (eb *EventBus) Register(code SystemEventCode, listener any, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for _, e := range eb.registered[code] {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			LogWarn("event %d: listener already registered", code)
			return false
		}
	}
	eb.registered[code] = append(eb.registered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

// Unregister removes a listener/callback pair. It returns false if the pair was not registered.
func (eb *EventBus) Unregister(code SystemEventCode, listener any, onEvent FnOnEvent) bool {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	events := eb.registered[code]
	for i, e := range events {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			eb.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If a handler returns true, the event is
 * considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (eb *EventBus) Fire(code SystemEventCode, sender any, ctx EventContext) bool {
	eb.mu.RLock()
	events := append([]registeredEvent(nil), eb.registered[code]...)
	eb.mu.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, ctx) {
			return true
		}
	}
	return false
}

// Clear drops every registration.
func (eb *EventBus) Clear() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	clear(eb.registered)
}
