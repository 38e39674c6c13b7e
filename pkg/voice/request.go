package voice

import (
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest text a single request will synthesize.
// Longer input is cut at this many runes and marked with an ellipsis.
const MaxTextLength = 300

const ellipsis = "…"

// DefaultLanguage is used when a caller omits or blanks the language code.
const DefaultLanguage = "en"

// Request is one unit of speech work. Immutable once enqueued.
type Request struct {
	// Text to synthesize, already normalized.
	Text string

	// Language is a BCP 47-style code, e.g. "hi-IN".
	Language string

	// Route identifies the screen that asked to speak, used to look up a
	// bundled offline clip. Empty when the caller has no route context.
	Route string
}

// newRequest normalizes raw caller input into a Request.
func newRequest(text, language, route string) Request {
	if language == "" || strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return Request{
		Text:     truncateText(text),
		Language: language,
		Route:    route,
	}
}

// truncateText cuts text to MaxTextLength runes, appending an ellipsis when
// anything was dropped.
func truncateText(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxTextLength]) + ellipsis
}
