// Package voice provides the voice assistant core: a fire-and-forget Speak
// API backed by a sequential request queue, a bounded audio cache, bundled
// offline clips, and exclusive single-handle playback.
//
// # Behavior
//
// Speak enqueues a request and returns immediately. A single drain goroutine
// processes requests in order, spacing them at least 500ms apart on top of
// the synthesis client's own one-second network throttle. For each request
// the assistant resolves audio from, in order: a bundled offline clip (the
// first choice for English, Hindi and Kannada, and the only choice while
// offline), the in-memory cache, or the synthesis backend.
//
// Rate-limited requests are re-enqueued at the tail after a randomized
// 5-5.5s backoff unless the queue already holds five pending items, in which
// case they are dropped. Every other failure abandons the request: callers
// of Speak and Stop never see an error, they just hear silence.
//
// # Usage
//
//	synth, _ := tts.NewClient(tts.WithBaseURL(url))
//	assistant := voice.New(voice.Config{Synthesizer: synth})
//	assistant.Start()
//	defer assistant.Close()
//
//	assistant.Speak("Attendance updated", "hi-IN", "home")
//	assistant.Stop() // cut off current playback; pending requests still run
package voice
