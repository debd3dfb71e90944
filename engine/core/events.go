package core

import "sync"

// EventCode identifies the kind of an event. Application-defined codes
// should use values beyond 255.
type EventCode uint16

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	// Keyboard key pressed. Data is *KeyEvent.
	EVENT_CODE_KEY_PRESSED EventCode = 0x02
	// Keyboard key released. Data is *KeyEvent.
	EVENT_CODE_KEY_RELEASED EventCode = 0x03
	// Mouse button pressed. Data is *MouseEvent.
	EVENT_CODE_BUTTON_PRESSED EventCode = 0x04
	// Mouse button released. Data is *MouseEvent.
	EVENT_CODE_BUTTON_RELEASED EventCode = 0x05
	// Mouse moved. Data is *MouseEvent.
	EVENT_CODE_MOUSE_MOVED EventCode = 0x06
	// Mouse wheel scrolled. Data is *MouseEvent.
	EVENT_CODE_MOUSE_WHEEL EventCode = 0x07
	// Resized/resolution changed from the OS. Data is *ResizeEvent.
	EVENT_CODE_RESIZED EventCode = 0x08
	// A watched shader binary changed on disk. Data is *ShaderChangedEvent.
	EVENT_CODE_SHADER_CHANGED EventCode = 0x09

	MAX_EVENT_CODE EventCode = 0xFF
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseEvent struct {
	Button Button
	PosX   int32
	PosY   int32
	Scroll float32
}

type ResizeEvent struct {
	Width  uint32
	Height uint32
}

type ShaderChangedEvent struct {
	Path string
}

// FnOnEvent handles a fired event. Return true to consume the event and
// stop propagation to later listeners.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventSystemState struct {
	registered map[EventCode][]*registeredEvent
}

var onceEvent sync.Once
var eventsInitialized bool = false
var eventState *eventSystemState = nil

func EventInitialize() bool {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[EventCode][]*registeredEvent),
		}
	})
	eventsInitialized = true
	return true
}

func EventShutdown() error {
	if eventState != nil {
		eventState.registered = make(map[EventCode][]*registeredEvent)
	}
	eventsInitialized = false
	return nil
}

/**
 * Register to listen for events fired with the provided code. Duplicate
 * listener registrations for the same code are rejected.
 */
func EventRegister(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !eventsInitialized {
		return false
	}
	for _, e := range eventState.registered[code] {
		if e.listener == listener {
			LogWarn("EventRegister: listener already registered for code %d", code)
			return false
		}
	}
	eventState.registered[code] = append(eventState.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

func EventUnregister(code EventCode, listener interface{}) bool {
	if !eventsInitialized {
		return false
	}
	events := eventState.registered[code]
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code, synchronously and in
 * registration order. If a handler returns TRUE the event is considered
 * handled and is not passed on to any more listeners.
 */
func EventFire(context EventContext) bool {
	if !eventsInitialized {
		return false
	}
	for _, e := range eventState.registered[context.Type] {
		if e.callback(context) {
			return true
		}
	}
	return false
}
