package voice

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AssetStore resolves a pre-bundled audio clip for a (route, language) pair.
// Language codes are base codes ("hi", not "hi-IN").
type AssetStore interface {
	Lookup(route, baseLanguage string) ([]byte, bool)
}

// offlineFirst lists base languages whose bundled clips are preferred over
// network synthesis even while online. These ship with recorded clips for
// every route, so using them saves a backend round trip.
var offlineFirst = map[string]bool{
	"en": true,
	"hi": true,
	"kn": true,
}

// offlineFirstChoice reports whether a base language should try the bundled
// clip before the network.
func offlineFirstChoice(baseLanguage string) bool {
	return offlineFirst[baseLanguage]
}

// StaticStore is a map-backed AssetStore.
type StaticStore struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// NewStaticStore creates an empty store.
func NewStaticStore() *StaticStore {
	return &StaticStore{assets: make(map[string][]byte)}
}

// Add registers a clip for (route, baseLanguage).
func (s *StaticStore) Add(route, baseLanguage string, audio []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[assetKey(route, baseLanguage)] = audio
}

// Lookup returns the clip for (route, baseLanguage), if bundled.
func (s *StaticStore) Lookup(route, baseLanguage string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	audio, ok := s.assets[assetKey(route, baseLanguage)]
	return audio, ok
}

// Len returns the number of bundled clips.
func (s *StaticStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

func assetKey(route, baseLanguage string) string {
	return route + "/" + baseLanguage
}

// LoadDirectory builds a StaticStore from a directory of clips named
// <route>_<language>.wav, e.g. "home_hi.wav". Files that do not match the
// pattern are skipped.
func LoadDirectory(dir string) (*StaticStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read assets dir: %w", err)
	}

	store := NewStaticStore()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".wav") {
			continue
		}
		stem := strings.TrimSuffix(name, ".wav")
		sep := strings.LastIndexByte(stem, '_')
		if sep <= 0 || sep == len(stem)-1 {
			continue
		}
		route, lang := stem[:sep], stem[sep+1:]

		audio, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", name, err)
		}
		store.Add(route, lang, audio)
	}
	return store, nil
}

// Verify StaticStore implements AssetStore at compile time.
var _ AssetStore = (*StaticStore)(nil)
