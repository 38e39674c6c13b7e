package tts

import (
	"math/rand"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// RequestDecorator mutates an outgoing request before it is sent.
// Decorators carry no semantic meaning: they must not influence cache keys
// or retry decisions, only request shaping (correlation IDs, user agents).
type RequestDecorator func(*http.Request)

// RequestID tags every request with a fresh X-Request-ID.
// This is the only decorator enabled by default.
func RequestID() RequestDecorator {
	return func(req *http.Request) {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
}

// SessionID tags every request with a stable per-client session identifier.
func SessionID() RequestDecorator {
	id := uuid.NewString()
	return func(req *http.Request) {
		req.Header.Set("X-Session-ID", id)
	}
}

// UserAgent sets a fixed User-Agent header.
func UserAgent(ua string) RequestDecorator {
	return func(req *http.Request) {
		req.Header.Set("User-Agent", ua)
	}
}

// RotatingUserAgent picks a random User-Agent from the given list per
// request. Not enabled by default: rotating identities to sidestep a
// provider's per-client limits may violate its terms of service, so this
// ships opt-in only.
func RotatingUserAgent(agents []string) RequestDecorator {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(rand.Int63()))
	return func(req *http.Request) {
		if len(agents) == 0 {
			return
		}
		mu.Lock()
		ua := agents[rng.Intn(len(agents))]
		mu.Unlock()
		req.Header.Set("User-Agent", ua)
	}
}
