package voice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anurag03-tech/invoked-voice/pkg/audio"
	"github.com/anurag03-tech/invoked-voice/pkg/tts"
)

// testHarness bundles an assistant with its mocks and an event channel.
type testHarness struct {
	assistant *Assistant
	synth     *tts.Mock
	player    *audio.MockPlayer
	events    chan Event
	online    atomic.Bool
	muted     atomic.Bool
}

func newTestHarness(t *testing.T, tweak func(*Config)) *testHarness {
	t.Helper()

	h := &testHarness{
		synth:  tts.NewMock(),
		player: audio.NewMockPlayer(),
		events: make(chan Event, 100),
	}
	h.online.Store(true)

	cfg := Config{
		Synthesizer:  h.synth,
		Player:       h.player,
		Online:       h.online.Load,
		Mute:         h.muted.Load,
		Spacing:      time.Millisecond,
		RetryBackoff: 2 * time.Millisecond,
		RetryJitter:  time.Millisecond,
	}
	if tweak != nil {
		tweak(&cfg)
	}

	h.assistant = New(cfg)
	h.assistant.OnEvent(func(e Event) { h.events <- e })
	t.Cleanup(func() { h.assistant.Close() })
	return h
}

func (h *testHarness) waitEvent(t *testing.T, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-h.events:
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", kind)
		}
	}
}

func TestSpeakBeforeStartIsNoop(t *testing.T) {
	h := newTestHarness(t, nil)

	h.assistant.Speak("hello", "en", "")
	time.Sleep(10 * time.Millisecond)

	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times before Start", n)
	}
	if h.assistant.State() != StateUninitialized {
		t.Errorf("State = %v, want StateUninitialized", h.assistant.State())
	}
}

func TestStartTransitionsToReady(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()
	if h.assistant.State() != StateReady {
		t.Fatalf("State = %v, want StateReady", h.assistant.State())
	}
}

func TestSpeakIgnoresEmptyText(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	h.assistant.Speak("", "en", "")
	h.assistant.Speak("   ", "en", "")
	time.Sleep(10 * time.Millisecond)

	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times for empty text", n)
	}
}

func TestSpeakTruncatesLongText(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	h.assistant.Speak(strings.Repeat("a", 500), "en", "")
	h.waitEvent(t, EventPlaybackStarted)

	calls := h.synth.Calls()
	if len(calls) != 1 {
		t.Fatalf("Synthesize called %d times, want 1", len(calls))
	}
	want := strings.Repeat("a", MaxTextLength) + ellipsis
	if calls[0].Text != want {
		t.Errorf("synthesized %d bytes, want truncated text with ellipsis", len(calls[0].Text))
	}
}

func TestCacheHitSkipsNetwork(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	h.assistant.Speak("good morning", "hi-IN", "")
	h.waitEvent(t, EventPlaybackStarted)
	h.assistant.Speak("good morning", "hi-IN", "")
	h.waitEvent(t, EventPlaybackStarted)

	if n := h.synth.CallCount("Synthesize"); n != 1 {
		t.Errorf("Synthesize called %d times, want 1 (second hit cached)", n)
	}
	if n := h.player.PlayCount(); n != 2 {
		t.Errorf("played %d clips, want 2", n)
	}
	if h.assistant.CacheLen() != 1 {
		t.Errorf("CacheLen() = %d, want 1", h.assistant.CacheLen())
	}
}

func TestOfflineFirstUsesBundledClip(t *testing.T) {
	assets := NewStaticStore()
	assets.Add("home", "kn", []byte("bundled-kannada"))

	h := newTestHarness(t, func(c *Config) { c.Assets = assets })
	h.assistant.Start()

	// Allowlisted language prefers the bundled clip even while online.
	h.assistant.Speak("welcome", "kn-IN", "home")
	e := h.waitEvent(t, EventPlaybackStarted)

	if !e.Offline {
		t.Error("playback event not marked offline")
	}
	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times, want 0", n)
	}
	plays := h.player.Plays()
	if len(plays) != 1 || !bytes.Equal(plays[0].Data, []byte("bundled-kannada")) {
		t.Error("did not play the bundled clip")
	}
}

func TestNonAllowlistedLanguageUsesNetworkWhenOnline(t *testing.T) {
	assets := NewStaticStore()
	assets.Add("home", "ta", []byte("bundled-tamil"))

	h := newTestHarness(t, func(c *Config) { c.Assets = assets })
	h.assistant.Start()

	h.assistant.Speak("welcome", "ta", "home")
	e := h.waitEvent(t, EventPlaybackStarted)

	if e.Offline {
		t.Error("online tamil playback should come from the network")
	}
	if n := h.synth.CallCount("Synthesize"); n != 1 {
		t.Errorf("Synthesize called %d times, want 1", n)
	}
}

func TestOfflineFallsBackToBundledClip(t *testing.T) {
	assets := NewStaticStore()
	assets.Add("home", "ta", []byte("bundled-tamil"))

	h := newTestHarness(t, func(c *Config) { c.Assets = assets })
	h.online.Store(false)
	h.assistant.Start()

	h.assistant.Speak("welcome", "ta", "home")
	e := h.waitEvent(t, EventPlaybackStarted)

	if !e.Offline {
		t.Error("offline playback not marked offline")
	}
	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times while offline, want 0", n)
	}
}

func TestOfflineHindiHomeScenario(t *testing.T) {
	assets := NewStaticStore()
	assets.Add("home", "hi", []byte("bundled-hindi-home"))

	h := newTestHarness(t, func(c *Config) { c.Assets = assets })
	h.online.Store(false)
	h.assistant.Start()

	h.assistant.Speak("उपस्थिति अपडेट की गई", "hi-IN", "home")
	e := h.waitEvent(t, EventPlaybackStarted)

	if !e.Offline {
		t.Error("playback event not marked offline")
	}
	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times while offline, want 0", n)
	}
	plays := h.player.Plays()
	if len(plays) != 1 || !bytes.Equal(plays[0].Data, []byte("bundled-hindi-home")) {
		t.Error("did not play the bundled Hindi clip")
	}
}

func TestOfflineWithoutClipDropsRequest(t *testing.T) {
	h := newTestHarness(t, nil)
	h.online.Store(false)
	h.assistant.Start()

	h.assistant.Speak("hello", "bn", "home")
	e := h.waitEvent(t, EventDropped)

	if e.Reason != "offline" {
		t.Errorf("drop reason = %q, want offline", e.Reason)
	}
	if n := h.player.PlayCount(); n != 0 {
		t.Errorf("played %d clips, want 0", n)
	}
}

func TestRateLimitedRequestRetries(t *testing.T) {
	rateLimited := &tts.APIError{StatusCode: 429, Message: "too many requests"}

	var calls atomic.Int32
	h := newTestHarness(t, nil)
	h.synth.SynthesizeFunc = func(ctx context.Context, text, language string) (*tts.Result, error) {
		if calls.Add(1) == 1 {
			return nil, rateLimited
		}
		return &tts.Result{Audio: []byte("ok"), SampleRate: 16000}, nil
	}
	h.assistant.Start()

	h.assistant.Speak("try again", "en", "")
	h.waitEvent(t, EventPlaybackStarted)

	if n := h.synth.CallCount("Synthesize"); n != 2 {
		t.Errorf("Synthesize called %d times, want 2 (original + retry)", n)
	}
}

func TestRateLimitedWithFullQueueDrops(t *testing.T) {
	rateLimited := &tts.APIError{StatusCode: 429, Message: "too many requests"}
	release := make(chan struct{})
	started := make(chan struct{})

	var calls atomic.Int32
	h := newTestHarness(t, func(c *Config) { c.MaxPendingForRetry = 1 })
	h.synth.SynthesizeFunc = func(ctx context.Context, text, language string) (*tts.Result, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
			return nil, rateLimited
		}
		return &tts.Result{Audio: []byte("ok"), SampleRate: 16000}, nil
	}
	h.assistant.Start()

	// First request blocks in synthesis while two more back up behind it.
	h.assistant.Speak("first", "en", "")
	<-started
	h.assistant.Speak("second", "en", "")
	h.assistant.Speak("third", "en", "")
	close(release)

	e := h.waitEvent(t, EventDropped)
	if e.Text != "first" || e.Reason != "rate limited" {
		t.Errorf("dropped %q for %q, want first for rate limited", e.Text, e.Reason)
	}
}

func TestSynthesisFailureEmitsFailed(t *testing.T) {
	h := newTestHarness(t, nil)
	h.synth.SynthesizeFunc = func(ctx context.Context, text, language string) (*tts.Result, error) {
		return nil, errors.New("backend exploded")
	}
	h.assistant.Start()

	h.assistant.Speak("hello", "en", "")
	e := h.waitEvent(t, EventFailed)

	if e.Reason != "backend exploded" {
		t.Errorf("failure reason = %q", e.Reason)
	}
	if n := h.player.PlayCount(); n != 0 {
		t.Errorf("played %d clips after failure, want 0", n)
	}
}

func TestMuteBlocksEnqueue(t *testing.T) {
	h := newTestHarness(t, nil)
	h.muted.Store(true)
	h.assistant.Start()

	h.assistant.Speak("hello", "en", "")
	time.Sleep(10 * time.Millisecond)

	if n := h.synth.CallCount("Synthesize"); n != 0 {
		t.Errorf("Synthesize called %d times while muted", n)
	}
	if h.assistant.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0", h.assistant.QueueLen())
	}
}

func TestMuteBlocksPlaybackOfInFlightRequest(t *testing.T) {
	inSynth := make(chan struct{})
	release := make(chan struct{})

	h := newTestHarness(t, nil)
	h.synth.SynthesizeFunc = func(ctx context.Context, text, language string) (*tts.Result, error) {
		close(inSynth)
		<-release
		return &tts.Result{Audio: []byte("ok"), SampleRate: 16000}, nil
	}
	h.assistant.Start()

	// Mute flips while the request is already in flight.
	h.assistant.Speak("hello", "en", "")
	<-inSynth
	h.muted.Store(true)
	close(release)
	time.Sleep(20 * time.Millisecond)

	if n := h.player.PlayCount(); n != 0 {
		t.Errorf("played %d clips after muting, want 0", n)
	}
}

func TestRapidSpeaksPlayInOrder(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	texts := []string{"one", "two", "three"}
	for _, text := range texts {
		h.assistant.Speak(text, "en", "")
	}
	for range texts {
		h.waitEvent(t, EventPlaybackStarted)
	}

	calls := h.synth.Calls()
	if len(calls) != 3 {
		t.Fatalf("Synthesize called %d times, want 3", len(calls))
	}
	for i, want := range texts {
		if calls[i].Text != want {
			t.Errorf("call %d synthesized %q, want %q", i, calls[i].Text, want)
		}
	}
}

func TestSingleLiveHandle(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	for i := 0; i < 5; i++ {
		h.assistant.Speak("clip", "en", "")
	}
	for i := 0; i < 5; i++ {
		h.waitEvent(t, EventPlaybackStarted)
	}

	// None of the clips was finished explicitly, so each play interrupted
	// the previous one.
	if peak := h.player.PeakLive(); peak != 1 {
		t.Errorf("PeakLive() = %d, want 1", peak)
	}
}

func TestStopCutsPlayback(t *testing.T) {
	h := newTestHarness(t, nil)
	h.assistant.Start()

	h.assistant.Speak("hello", "en", "")
	h.waitEvent(t, EventPlaybackStarted)

	h.assistant.Stop()
	h.waitEvent(t, EventPlaybackFinished)

	if h.assistant.Playing() {
		t.Error("still playing after Stop")
	}
	// Stop with nothing live is harmless.
	h.assistant.Stop()
}
