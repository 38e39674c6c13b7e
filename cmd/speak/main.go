// Command speak synthesizes and plays a single phrase, then exits. Useful
// for checking backend credentials and audio output without running the
// daemon.
//
// Usage:
//
//	go run ./cmd/speak -text "Namaste" -lang hi-IN
//	go run ./cmd/speak -text "Welcome back" -route home
//
// Environment variables required:
//
//	TTS_BASE_URL - Speech synthesis backend
//	TTS_API_KEY  - Bearer token for the backend
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/anurag03-tech/invoked-voice/internal/config"
	"github.com/anurag03-tech/invoked-voice/internal/log"
	"github.com/anurag03-tech/invoked-voice/pkg/tts"
	"github.com/anurag03-tech/invoked-voice/pkg/voice"
)

func main() {
	text := flag.String("text", "", "Text to speak")
	lang := flag.String("lang", "en", "Language code, e.g. hi-IN, ta, kn")
	route := flag.String("route", "", "Route for bundled offline clip lookup")
	timeout := flag.Duration("timeout", 30*time.Second, "Give up after this long")
	flag.Parse()

	if *text == "" {
		fmt.Fprintln(os.Stderr, "usage: speak -text \"...\" [-lang hi-IN] [-route home]")
		os.Exit(2)
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	synth, err := tts.NewClient(
		tts.WithBaseURL(cfg.TTSBaseURL),
		tts.WithAPIKey(cfg.TTSAPIKey),
		tts.WithLogger(log.L()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "synthesis client: %v\n", err)
		os.Exit(1)
	}

	var assets voice.AssetStore
	if cfg.AssetsDir != "" {
		if store, err := voice.LoadDirectory(cfg.AssetsDir); err == nil {
			assets = store
		}
	}

	assistant := voice.New(voice.Config{
		Synthesizer: synth,
		Assets:      assets,
		Logger:      log.L(),
	})

	done := make(chan voice.Event, 1)
	assistant.OnEvent(func(e voice.Event) {
		switch e.Kind {
		case voice.EventPlaybackFinished, voice.EventDropped, voice.EventFailed:
			select {
			case done <- e:
			default:
			}
		}
	})

	assistant.Start()
	defer assistant.Close()

	start := time.Now()
	assistant.Speak(*text, *lang, *route)

	select {
	case e := <-done:
		switch e.Kind {
		case voice.EventPlaybackFinished:
			fmt.Printf("played in %s\n", time.Since(start).Round(time.Millisecond))
		case voice.EventDropped:
			fmt.Fprintf(os.Stderr, "dropped: %s\n", e.Reason)
			os.Exit(1)
		case voice.EventFailed:
			fmt.Fprintf(os.Stderr, "failed: %s\n", e.Reason)
			os.Exit(1)
		}
	case <-time.After(*timeout):
		fmt.Fprintln(os.Stderr, "timed out waiting for playback")
		os.Exit(1)
	}
}
