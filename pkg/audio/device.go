package audio

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultSampleRate matches the synthesis backend's 16kHz PCM16 output.
const DefaultSampleRate = 16000

// watchInterval is how often the completion watcher polls the handle.
const watchInterval = 50 * time.Millisecond

// Device plays PCM16 audio through the platform audio layer.
type Device struct {
	context    *oto.Context
	sampleRate int
	logger     *slog.Logger

	mu      sync.Mutex
	handle  *oto.Player
	data    []byte // kept alive for the duration of playback

	// generation distinguishes the current handle from stale watchers.
	generation uint64
	onFinish   func()
}

// NewDevice opens the audio device at the given sample rate (mono PCM16).
// A rate <= 0 falls back to DefaultSampleRate.
func NewDevice(sampleRate int, logger *slog.Logger) (*Device, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Device{
		context:    ctx,
		sampleRate: sampleRate,
		logger:     logger.With("component", "audio.device"),
	}, nil
}

// Play stops any current clip and starts this one.
func (d *Device) Play(clip Clip) error {
	pcm := pcmSamples(clip.Data)
	if len(pcm) == 0 {
		return fmt.Errorf("audio: empty clip")
	}

	// Copy so the caller can reuse its buffer; the copy must outlive the
	// oto player or playback degrades to static.
	data := make([]byte, len(pcm))
	copy(data, pcm)

	d.mu.Lock()
	d.releaseLocked()

	handle := d.context.NewPlayer(bytes.NewReader(data))
	d.handle = handle
	d.data = data
	d.onFinish = clip.OnFinish
	d.generation++
	gen := d.generation
	d.mu.Unlock()

	handle.Play()
	go d.watch(handle, gen)

	return nil
}

// watch polls the handle until playback drains, then releases it.
// A stale watcher (superseded by a newer Play) exits without touching state.
func (d *Device) watch(handle *oto.Player, gen uint64) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		if d.generation != gen {
			d.mu.Unlock()
			return
		}
		if !handle.IsPlaying() {
			d.releaseLocked()
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

// Stop halts the current clip, if any. Idempotent.
func (d *Device) Stop() {
	d.mu.Lock()
	d.releaseLocked()
	d.mu.Unlock()
}

// releaseLocked stops and closes the live handle. Close errors are swallowed:
// a handle that failed to release cleanly is still gone from our perspective.
// Must be called with d.mu held.
func (d *Device) releaseLocked() {
	if d.handle == nil {
		return
	}
	d.handle.Pause()
	if err := d.handle.Close(); err != nil {
		d.logger.Debug("handle close failed", "error", err)
	}
	d.handle = nil
	d.data = nil
	d.generation++

	fn := d.onFinish
	d.onFinish = nil
	if fn != nil {
		// Run outside the lock so the callback can call back into the player.
		go fn()
	}
}

// IsPlaying reports whether a clip is currently live.
func (d *Device) IsPlaying() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handle != nil && d.handle.IsPlaying()
}

// SampleRate returns the device's configured sample rate.
func (d *Device) SampleRate() int {
	return d.sampleRate
}

// Close stops playback and suspends the audio context.
func (d *Device) Close() error {
	d.Stop()
	return d.context.Suspend()
}

// Verify Device implements Player at compile time.
var _ Player = (*Device)(nil)
