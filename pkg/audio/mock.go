package audio

import (
	"sync"
)

// MockPlayer implements Player for testing.
// Clips stay "live" until FinishCurrent or Stop is called, so tests can
// verify the single-handle invariant and interruption ordering.
type MockPlayer struct {
	mu sync.Mutex

	plays    []Clip
	stops    int
	live     bool
	onFinish func()

	// peakLive tracks the most handles ever live at once; the invariant is
	// that it never exceeds 1.
	liveCount int
	peakLive  int
}

// NewMockPlayer creates a mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// Play records the clip and marks it live, force-stopping any previous clip.
func (m *MockPlayer) Play(clip Clip) error {
	m.mu.Lock()

	var interrupted func()
	if m.live {
		interrupted = m.onFinish
		m.liveCount--
	}

	m.plays = append(m.plays, clip)
	m.live = true
	m.onFinish = clip.OnFinish
	m.liveCount++
	if m.liveCount > m.peakLive {
		m.peakLive = m.liveCount
	}
	m.mu.Unlock()

	if interrupted != nil {
		interrupted()
	}
	return nil
}

// Stop releases the live clip, if any.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	m.stops++
	fn := m.releaseLocked()
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// FinishCurrent simulates natural completion of the live clip.
func (m *MockPlayer) FinishCurrent() {
	m.mu.Lock()
	fn := m.releaseLocked()
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *MockPlayer) releaseLocked() func() {
	if !m.live {
		return nil
	}
	m.live = false
	m.liveCount--
	fn := m.onFinish
	m.onFinish = nil
	return fn
}

// IsPlaying reports whether a clip is live.
func (m *MockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// Close stops playback.
func (m *MockPlayer) Close() error {
	m.Stop()
	return nil
}

// Plays returns all clips passed to Play, in order.
func (m *MockPlayer) Plays() []Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Clip, len(m.plays))
	copy(out, m.plays)
	return out
}

// PlayCount returns how many clips were played.
func (m *MockPlayer) PlayCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

// StopCount returns how many times Stop was called.
func (m *MockPlayer) StopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// PeakLive returns the most handles ever live at once.
func (m *MockPlayer) PeakLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakLive
}

// Verify MockPlayer implements Player at compile time.
var _ Player = (*MockPlayer)(nil)
