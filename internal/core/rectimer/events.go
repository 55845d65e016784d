package rectimer

import "time"

// EventType defines the type of recording timer event.
type EventType string

const (
	EventTick    EventType = "tick"
	EventStopped EventType = "stopped"
)

// Event is a display update for the recording overlay.
type Event struct {
	Type    EventType
	Elapsed Elapsed
	Display string
	// Blink is the indicator visibility for this tick; always false once stopped.
	Blink bool
	// Visible reports whether the timer layout should be shown at all.
	Visible bool
	At      time.Time
}
