package playback

import "github.com/osa030/hearo/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // A track was loaded and started
	EventStateChanged                  // Paused or resumed
	EventStopped                       // Playback stopped at the end of the queue
	EventModeChanged                   // Shuffle or repeat changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventStateChanged:
		return "state_changed"
	case EventStopped:
		return "stopped"
	case EventModeChanged:
		return "mode_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Track *track.Track // Current track (nil when stopped)
	Index int          // Queue index of Track
	State State        // Playback state after the event
}
