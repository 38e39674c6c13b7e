package voice

// EventKind identifies a point in a request's lifecycle.
type EventKind string

const (
	// EventQueued fires when Speak accepts a request.
	EventQueued EventKind = "queued"

	// EventPlaybackStarted fires when a request's audio starts playing.
	EventPlaybackStarted EventKind = "playback_started"

	// EventPlaybackFinished fires when playback ends, naturally or by
	// interruption.
	EventPlaybackFinished EventKind = "playback_finished"

	// EventDropped fires when a request is abandoned without playback:
	// offline with no bundled clip, or rate-limited with a full queue.
	EventDropped EventKind = "dropped"

	// EventFailed fires when synthesis or playback errored.
	EventFailed EventKind = "failed"
)

// Event describes one lifecycle step. Events are emitted from the drain
// goroutine and playback callbacks; handlers must not block.
type Event struct {
	Kind     EventKind `json:"kind"`
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Route    string    `json:"route,omitempty"`

	// Offline is set when the audio came from a bundled clip.
	Offline bool `json:"offline,omitempty"`

	// Reason carries a short cause for dropped and failed events.
	Reason string `json:"reason,omitempty"`
}
