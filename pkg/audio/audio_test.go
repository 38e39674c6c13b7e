package audio

import (
	"encoding/binary"
	"testing"
)

// buildWAV wraps pcm in a minimal RIFF/WAVE container with a fmt chunk.
func buildWAV(pcm []byte) []byte {
	var out []byte
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)  // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 1)  // mono
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 16000)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)

	body := append(chunk("fmt ", fmtChunk), chunk("data", pcm)...)

	out = append(out, "RIFF"...)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(4+len(body)))
	out = append(out, size...)
	out = append(out, "WAVE"...)
	return append(out, body...)
}

func chunk(id string, body []byte) []byte {
	out := []byte(id)
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(len(body)))
	out = append(out, size...)
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func TestPCMSamplesPassthrough(t *testing.T) {
	raw := []byte{1, 2, 3, 4}
	got := pcmSamples(raw)
	if string(got) != string(raw) {
		t.Errorf("bare PCM should pass through unchanged, got %v", got)
	}
}

func TestPCMSamplesStripsWAVContainer(t *testing.T) {
	pcm := []byte{10, 20, 30, 40, 50, 60}
	got := pcmSamples(buildWAV(pcm))
	if string(got) != string(pcm) {
		t.Errorf("expected %v, got %v", pcm, got)
	}
}

func TestPCMSamplesOddChunkPadding(t *testing.T) {
	// Odd-length chunk before data exercises the word-alignment walk.
	odd := chunk("LIST", []byte{1, 2, 3})
	pcm := []byte{7, 8}
	body := append(odd, chunk("data", pcm)...)

	wav := []byte("RIFF")
	size := make([]byte, 4)
	binary.LittleEndian.PutUint32(size, uint32(4+len(body)))
	wav = append(wav, size...)
	wav = append(wav, "WAVE"...)
	wav = append(wav, body...)

	got := pcmSamples(wav)
	if string(got) != string(pcm) {
		t.Errorf("expected %v, got %v", pcm, got)
	}
}

func TestPCMSamplesTruncatedDataChunk(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	wav := buildWAV(pcm)
	// Claim more data than is present; parse clamps to the buffer.
	got := pcmSamples(wav[:len(wav)-2])
	if string(got) != string(pcm[:2]) {
		t.Errorf("expected %v, got %v", pcm[:2], got)
	}
}

func TestMockPlayerSingleHandle(t *testing.T) {
	m := NewMockPlayer()

	for i := 0; i < 5; i++ {
		if err := m.Play(Clip{Data: []byte{byte(i)}}); err != nil {
			t.Fatalf("play %d: %v", i, err)
		}
	}

	if m.PeakLive() != 1 {
		t.Errorf("expected at most 1 live handle, peak was %d", m.PeakLive())
	}
	if m.PlayCount() != 5 {
		t.Errorf("expected 5 plays, got %d", m.PlayCount())
	}
	if !m.IsPlaying() {
		t.Error("expected last clip to still be live")
	}
}

func TestMockPlayerFinishCallbacks(t *testing.T) {
	m := NewMockPlayer()

	var finished []string
	play := func(name string) {
		m.Play(Clip{Data: []byte{1}, OnFinish: func() {
			finished = append(finished, name)
		}})
	}

	play("a")
	play("b") // interrupts a
	m.FinishCurrent()

	if len(finished) != 2 || finished[0] != "a" || finished[1] != "b" {
		t.Errorf("expected finish order [a b], got %v", finished)
	}
}

func TestMockPlayerStopIdempotent(t *testing.T) {
	m := NewMockPlayer()
	m.Stop()
	m.Stop() // nothing playing, must not panic

	m.Play(Clip{Data: []byte{1}})
	m.Stop()
	if m.IsPlaying() {
		t.Error("expected not playing after Stop")
	}
	m.Stop()
	if m.StopCount() != 4 {
		t.Errorf("expected 4 stop calls recorded, got %d", m.StopCount())
	}
}
