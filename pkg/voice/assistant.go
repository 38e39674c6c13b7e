package voice

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/anurag03-tech/invoked-voice/internal/cache"
	"github.com/anurag03-tech/invoked-voice/pkg/audio"
	"github.com/anurag03-tech/invoked-voice/pkg/tts"
)

// State is the assistant's top-level lifecycle state.
type State int32

const (
	// StateUninitialized is the zero state; Speak is a no-op here.
	StateUninitialized State = iota

	// StateReady means Start has run. Setup problems never prevent this
	// transition: a broken audio device degrades to silent playback
	// rather than blocking the host application.
	StateReady
)

// Retry behavior for rate-limited requests.
const (
	// DefaultRetryBackoff is the base delay before a rate-limited request
	// rejoins the queue.
	DefaultRetryBackoff = 5 * time.Second

	// DefaultRetryJitter is added randomly on top of the base delay.
	DefaultRetryJitter = 500 * time.Millisecond

	// DefaultMaxPendingForRetry bounds queue growth: a rate-limited
	// request is dropped instead of re-enqueued when this many items are
	// already pending.
	DefaultMaxPendingForRetry = 5
)

// MuteFunc reports whether the assistant is muted. Checked before every
// enqueue and again before playing resolved audio.
type MuteFunc func() bool

// Config wires the assistant's collaborators. Only Synthesizer is required.
type Config struct {
	// Synthesizer performs network text-to-speech.
	Synthesizer tts.Synthesizer

	// Player owns audio output. When nil, Start opens the platform audio
	// device; if that fails, playback silently no-ops.
	Player audio.Player

	// Assets resolves bundled offline clips. Optional.
	Assets AssetStore

	// Online reports current connectivity. Nil means always online.
	Online func() bool

	// Mute reports the mute switch. Nil means never muted.
	Mute MuteFunc

	// Spacing between queue items; zero means DefaultSpacing.
	Spacing time.Duration

	// RetryBackoff and RetryJitter shape the rate-limit retry delay;
	// zero means the defaults.
	RetryBackoff time.Duration
	RetryJitter  time.Duration

	// MaxPendingForRetry bounds re-enqueueing; zero means the default.
	MaxPendingForRetry int

	// CacheCapacity bounds the audio cache; zero means cache.DefaultCapacity.
	CacheCapacity int

	// Logger for structured logs; nil means slog.Default().
	Logger *slog.Logger
}

func (c *Config) withDefaults() {
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.RetryJitter <= 0 {
		c.RetryJitter = DefaultRetryJitter
	}
	if c.MaxPendingForRetry <= 0 {
		c.MaxPendingForRetry = DefaultMaxPendingForRetry
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Assistant is the public entry point for speech. All methods are safe for
// concurrent use and never return errors to callers: failures end in
// silence, logged but not surfaced.
type Assistant struct {
	cfg    Config
	logger *slog.Logger

	state atomic.Int32
	queue *requestQueue
	cache *cache.Cache

	playerMu sync.RWMutex
	player   audio.Player

	eventMu sync.RWMutex
	onEvent func(Event)

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an assistant. Call Start before speaking.
func New(cfg Config) *Assistant {
	cfg.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	a := &Assistant{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "voice.assistant"),
		cache:  cache.New(cfg.CacheCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
	a.queue = newRequestQueue(cfg.Spacing, a.process)
	a.player = cfg.Player
	return a
}

// Start moves the assistant to Ready. The transition never fails: if no
// player was injected and the audio device cannot be opened, playback is
// disabled but speech requests are still accepted and processed.
func (a *Assistant) Start() {
	a.playerMu.Lock()
	if a.player == nil {
		device, err := audio.NewDevice(audio.DefaultSampleRate, a.cfg.Logger)
		if err != nil {
			a.logger.Warn("audio device unavailable, playback disabled", "error", err)
		} else {
			a.player = device
		}
	}
	a.playerMu.Unlock()

	a.state.Store(int32(StateReady))
	a.logger.Info("voice assistant ready")
}

// State returns the current lifecycle state.
func (a *Assistant) State() State {
	return State(a.state.Load())
}

// Speak requests speech for text in the given language. Fire-and-forget:
// a no-op unless the assistant is Ready, the text is non-empty and the
// mute switch is off. language defaults to "en"; route may be empty.
func (a *Assistant) Speak(text, language, route string) {
	if a.State() != StateReady {
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	if a.muted() {
		return
	}

	req := newRequest(text, language, route)
	a.queue.Enqueue(req)
	a.emit(Event{Kind: EventQueued, Text: req.Text, Language: req.Language, Route: req.Route})
}

// Stop cuts off the currently playing audio. Pending queue entries are not
// affected. Idempotent; safe when nothing is playing.
func (a *Assistant) Stop() {
	a.playerMu.RLock()
	player := a.player
	a.playerMu.RUnlock()
	if player != nil {
		player.Stop()
	}
}

// OnEvent registers a callback for request lifecycle events.
// The handler runs on internal goroutines and must not block.
func (a *Assistant) OnEvent(fn func(Event)) {
	a.eventMu.Lock()
	a.onEvent = fn
	a.eventMu.Unlock()
}

// Playing reports whether audio is currently audible.
func (a *Assistant) Playing() bool {
	a.playerMu.RLock()
	player := a.player
	a.playerMu.RUnlock()
	return player != nil && player.IsPlaying()
}

// QueueLen returns the number of pending requests.
func (a *Assistant) QueueLen() int {
	return a.queue.Len()
}

// CacheLen returns the number of cached synthesis results.
func (a *Assistant) CacheLen() int {
	return a.cache.Len()
}

// Close releases the player and the synthesis client. Pending retry timers
// are abandoned.
func (a *Assistant) Close() error {
	a.cancel()

	a.playerMu.RLock()
	player := a.player
	a.playerMu.RUnlock()
	if player != nil {
		if err := player.Close(); err != nil {
			a.logger.Debug("player close failed", "error", err)
		}
	}
	if a.cfg.Synthesizer != nil {
		return a.cfg.Synthesizer.Close()
	}
	return nil
}

// process resolves and plays one request. Runs on the drain goroutine.
func (a *Assistant) process(req Request) {
	base := tts.BaseLanguage(req.Language)
	online := a.online()

	// Bundled clip: the only option offline, and the first choice for
	// allowlisted languages even online.
	if a.cfg.Assets != nil && (offlineFirstChoice(base) || !online) {
		if clip, ok := a.cfg.Assets.Lookup(req.Route, base); ok {
			a.play(req, clip, true)
			return
		}
	}

	if !online {
		a.logger.Debug("offline without bundled clip, skipping",
			"route", req.Route, "language", req.Language)
		a.emit(Event{Kind: EventDropped, Text: req.Text, Language: req.Language,
			Route: req.Route, Reason: "offline"})
		return
	}

	if cached, ok := a.cache.Get(req.Text, req.Language); ok {
		a.play(req, cached, false)
		return
	}

	result, err := a.cfg.Synthesizer.Synthesize(a.ctx, req.Text, req.Language)
	if err != nil {
		a.handleSynthesisError(req, err)
		return
	}

	a.cache.Put(req.Text, req.Language, result.Audio)
	a.play(req, result.Audio, false)
}

// handleSynthesisError applies the retry policy: rate limits re-enqueue
// with backoff while the queue is short, everything else abandons the
// request. Nothing propagates to the caller.
func (a *Assistant) handleSynthesisError(req Request, err error) {
	if tts.IsRateLimited(err) {
		if a.queue.Len() >= a.cfg.MaxPendingForRetry {
			a.logger.Debug("rate limited with full queue, dropping request",
				"pending", a.queue.Len())
			a.emit(Event{Kind: EventDropped, Text: req.Text, Language: req.Language,
				Route: req.Route, Reason: "rate limited"})
			return
		}

		delay := a.cfg.RetryBackoff + time.Duration(rand.Int63n(int64(a.cfg.RetryJitter)))
		a.logger.Debug("rate limited, re-enqueueing", "delay", delay)
		time.AfterFunc(delay, func() {
			if a.ctx.Err() != nil {
				return
			}
			a.queue.Enqueue(req)
		})
		return
	}

	a.logger.Warn("synthesis failed", "language", req.Language, "error", err)
	a.emit(Event{Kind: EventFailed, Text: req.Text, Language: req.Language,
		Route: req.Route, Reason: err.Error()})
}

// play hands audio to the player, re-checking mute first. Playback errors
// are logged and swallowed.
func (a *Assistant) play(req Request, data []byte, offline bool) {
	if a.muted() {
		return
	}

	a.playerMu.RLock()
	player := a.player
	a.playerMu.RUnlock()
	if player == nil {
		return
	}

	clip := audio.Clip{
		Data: data,
		OnFinish: func() {
			a.emit(Event{Kind: EventPlaybackFinished, Text: req.Text,
				Language: req.Language, Route: req.Route, Offline: offline})
		},
	}
	if err := player.Play(clip); err != nil {
		a.logger.Debug("playback failed", "error", err)
		a.emit(Event{Kind: EventFailed, Text: req.Text, Language: req.Language,
			Route: req.Route, Reason: err.Error()})
		return
	}
	a.emit(Event{Kind: EventPlaybackStarted, Text: req.Text,
		Language: req.Language, Route: req.Route, Offline: offline})
}

func (a *Assistant) online() bool {
	return a.cfg.Online == nil || a.cfg.Online()
}

func (a *Assistant) muted() bool {
	return a.cfg.Mute != nil && a.cfg.Mute()
}

func (a *Assistant) emit(e Event) {
	a.eventMu.RLock()
	fn := a.onEvent
	a.eventMu.RUnlock()
	if fn != nil {
		fn(e)
	}
}
