// Package tts provides a client for Indic text-to-speech synthesis.
//
// The backend partitions languages into two model families, Indo-Aryan and
// Dravidian, each served by its own service ID. The client picks the family
// from the language code and paces outgoing calls so the shared backend is
// never hit more than once a second.
//
// Example usage:
//
//	client, _ := tts.NewClient(
//	    tts.WithBaseURL("https://demo-api.models.ai4bharat.org/inference/tts"),
//	)
//	defer client.Close()
//
//	result, _ := client.Synthesize(ctx, "Namaste", "hi")
//	// result.Audio contains PCM/WAV audio bytes
package tts

import (
	"context"
	"strings"
	"time"
)

// Synthesizer converts text to audio.
// Implementations must be safe for use from a single drain goroutine plus
// concurrent Health calls.
type Synthesizer interface {
	// Synthesize converts text to audio in the given language.
	Synthesize(ctx context.Context, text, language string) (*Result, error)

	// Health checks backend reachability.
	Health(ctx context.Context) error

	// Close releases any resources held by the client.
	Close() error
}

// Result is a completed synthesis.
type Result struct {
	// Audio contains the decoded audio bytes (PCM16 or a WAV container).
	Audio []byte

	// SampleRate of the returned audio in Hz.
	SampleRate int

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the wall time of the backend call in milliseconds.
	LatencyMs int64
}

// Family identifies the synthesis model family serving a language.
type Family int

const (
	// FamilyIndoAryan serves bn, pa, mr, gu, hi — and is the default for
	// any language the backend has no dedicated family for.
	FamilyIndoAryan Family = iota

	// FamilyDravidian serves te, ta, kn.
	FamilyDravidian
)

// String returns the family name used in service IDs and logs.
func (f Family) String() string {
	if f == FamilyDravidian {
		return "dravidian"
	}
	return "indo-aryan"
}

var dravidianLanguages = map[string]bool{
	"te": true,
	"ta": true,
	"kn": true,
}

// FamilyOf returns the model family for a language code.
// Regional suffixes are ignored: "ta-IN" routes the same as "ta".
func FamilyOf(language string) Family {
	if dravidianLanguages[BaseLanguage(language)] {
		return FamilyDravidian
	}
	return FamilyIndoAryan
}

// BaseLanguage strips a regional suffix from a BCP 47-style code,
// e.g. "hi-IN" becomes "hi".
func BaseLanguage(code string) string {
	if i := strings.IndexByte(code, '-'); i >= 0 {
		return code[:i]
	}
	return code
}

// DefaultTimeout bounds a single synthesis call.
const DefaultTimeout = 15 * time.Second

// DefaultMinCallGap is the minimum spacing between backend calls.
const DefaultMinCallGap = time.Second
