package main

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/anurag03-tech/invoked-voice/internal/connectivity"
	"github.com/anurag03-tech/invoked-voice/pkg/hub"
	"github.com/anurag03-tech/invoked-voice/pkg/tts"
	"github.com/anurag03-tech/invoked-voice/pkg/voice"
)

// server exposes the assistant over HTTP and a websocket event stream.
type server struct {
	app       *fiber.App
	assistant *voice.Assistant
	synth     tts.Synthesizer
	monitor   *connectivity.Monitor
	events    *hub.Hub
	logger    *slog.Logger
}

// speakRequest is the POST /speak body.
type speakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Route    string `json:"route"`
}

func newServer(assistant *voice.Assistant, synth tts.Synthesizer, monitor *connectivity.Monitor, events *hub.Hub, logger *slog.Logger) *server {
	s := &server{
		assistant: assistant,
		synth:     synth,
		monitor:   monitor,
		events:    events,
		logger:    logger.With("component", "server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voiced",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Post("/speak", s.handleSpeak)
	app.Post("/stop", s.handleStop)
	app.Get("/healthz", s.handleHealthz)
	app.Get("/state", s.handleState)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	// Websocket clients can drive the assistant too.
	events.SetCommandHandler(s.handleCommand)

	s.app = app
	return s
}

func (s *server) listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *server) shutdown() error {
	return s.app.Shutdown()
}

// handleSpeak queues speech. Always 202: the assistant is fire-and-forget,
// so acceptance is all the caller can learn synchronously.
func (s *server) handleSpeak(c *fiber.Ctx) error {
	var req speakRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	s.assistant.Speak(req.Text, req.Language, req.Route)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued": s.assistant.QueueLen(),
	})
}

func (s *server) handleStop(c *fiber.Ctx) error {
	s.assistant.Stop()
	return c.JSON(fiber.Map{"stopped": true})
}

// handleHealthz reports daemon liveness plus backend reachability.
func (s *server) handleHealthz(c *fiber.Ctx) error {
	backend := "ok"
	if err := s.synth.Health(c.UserContext()); err != nil {
		backend = err.Error()
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"backend": backend,
		"online":  s.monitor.Online(),
	})
}

func (s *server) handleState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"state":   stateName(s.assistant.State()),
		"playing": s.assistant.Playing(),
		"queued":  s.assistant.QueueLen(),
		"cached":  s.assistant.CacheLen(),
		"online":  s.monitor.Online(),
		"clients": s.events.ClientCount(),
	})
}

func (s *server) handleWS(conn *websocket.Conn) {
	client := hub.NewClient(s.events, conn)
	client.Run()
}

func (s *server) handleCommand(cmd hub.Command) {
	switch cmd.Action {
	case "speak":
		s.assistant.Speak(cmd.Text, cmd.Language, cmd.Route)
	case "stop":
		s.assistant.Stop()
	default:
		s.logger.Debug("unknown command", "action", cmd.Action)
	}
}

func stateName(st voice.State) string {
	if st == voice.StateReady {
		return "ready"
	}
	return "uninitialized"
}
