// Package audio provides exclusive single-handle audio playback.
//
// A Player owns at most one live audio handle. Starting a new clip always
// force-stops the previous one; stop and release failures are swallowed so
// playback never surfaces errors to the caller. The Device implementation
// plays PCM16 through the platform audio layer via oto; the Mock records
// calls for tests.
package audio

// Clip is a playable piece of audio.
type Clip struct {
	// Data is PCM16LE mono audio, optionally inside a WAV container.
	Data []byte

	// SampleRate in Hz. Zero means the player's configured rate.
	SampleRate int

	// OnFinish is invoked once when the clip stops, whether it completed
	// naturally or was interrupted. May be nil.
	OnFinish func()
}

// Player plays one clip at a time.
type Player interface {
	// Play stops any current clip and starts this one.
	// It returns once playback has started, not when it finishes.
	Play(clip Clip) error

	// Stop halts the current clip, if any. Idempotent.
	Stop()

	// IsPlaying reports whether a clip is currently live.
	IsPlaying() bool

	// Close stops playback and releases the audio device.
	Close() error
}
