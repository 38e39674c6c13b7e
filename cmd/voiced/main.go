// Command voiced runs the voice daemon: an HTTP control surface over the
// speech assistant, with a websocket stream of playback lifecycle events.
//
// Usage:
//
//	go run ./cmd/voiced
//
// Environment variables (a .env file is loaded first if present):
//
//	TTS_BASE_URL           - Speech synthesis backend (required)
//	TTS_API_KEY            - Bearer token for the backend
//	VOICED_ADDR            - Listen address (default :8780)
//	VOICE_MUTED            - Start muted (default false)
//	OFFLINE_ASSETS_DIR     - Directory of bundled <route>_<lang>.wav clips
//	CONNECTIVITY_PROBE_URL - Connectivity check endpoint
//	LOG_LEVEL              - debug, info, warn, error (default info)
package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/anurag03-tech/invoked-voice/internal/config"
	"github.com/anurag03-tech/invoked-voice/internal/connectivity"
	"github.com/anurag03-tech/invoked-voice/internal/log"
	"github.com/anurag03-tech/invoked-voice/pkg/hub"
	"github.com/anurag03-tech/invoked-voice/pkg/tts"
	"github.com/anurag03-tech/invoked-voice/pkg/voice"
)

func main() {
	// Missing .env is fine: plain environment variables still apply.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	synth, err := tts.NewClient(
		tts.WithBaseURL(cfg.TTSBaseURL),
		tts.WithAPIKey(cfg.TTSAPIKey),
		tts.WithLogger(logger),
	)
	if err != nil {
		log.Error("synthesis client", "error", err)
		os.Exit(1)
	}

	monitor := connectivity.New(
		connectivity.WithProbeURL(cfg.ProbeURL),
		connectivity.WithLogger(logger),
	)
	monitor.Start(ctx)

	var assets voice.AssetStore
	if cfg.AssetsDir != "" {
		store, err := voice.LoadDirectory(cfg.AssetsDir)
		if err != nil {
			log.Warn("offline assets unavailable", "dir", cfg.AssetsDir, "error", err)
		} else {
			log.Info("offline assets loaded", "dir", cfg.AssetsDir, "clips", store.Len())
			assets = store
		}
	}

	var muted atomic.Bool
	muted.Store(cfg.Muted)

	assistant := voice.New(voice.Config{
		Synthesizer: synth,
		Assets:      assets,
		Online:      monitor.Online,
		Mute:        muted.Load,
		Logger:      logger,
	})
	assistant.Start()
	defer assistant.Close()

	events := hub.New(logger)
	go events.Run(ctx)
	assistant.OnEvent(func(e voice.Event) {
		if err := events.BroadcastJSON(e); err != nil {
			log.Debug("event broadcast", "error", err)
		}
	})

	srv := newServer(assistant, synth, monitor, events, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.listen(cfg.Addr) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("server", "error", err)
		os.Exit(1)
	case s := <-sig:
		log.Info("shutting down", "signal", s.String())
	}

	cancel()
	if err := srv.shutdown(); err != nil {
		log.Warn("shutdown", "error", err)
	}
}
