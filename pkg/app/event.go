package app

import "time"

// EventKind names a lifecycle step.
type EventKind string

const (
	EventLaunched    EventKind = "launched"
	EventWindowFound EventKind = "window_found"
	EventAttached    EventKind = "attached"
	EventTerminated  EventKind = "terminated"
	EventFailed      EventKind = "failed"
)

// Event describes one lifecycle step of an Application.
type Event struct {
	Kind        EventKind
	Time        time.Time
	SessionID   string
	App         string
	Path        string
	Version     string
	PID         int
	WindowID    uint64
	WindowTitle string
	Elapsed     time.Duration
	Err         error
}

// Observer is notified synchronously after each lifecycle step.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}
