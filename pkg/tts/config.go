package tts

import (
	"log/slog"
	"net/http"
	"time"
)

// Default service IDs for the two model families.
const (
	DefaultIndoAryanServiceID = "ai4bharat/indic-tts-indo-aryan--gpu-t4"
	DefaultDravidianServiceID = "ai4bharat/indic-tts-dravidian--gpu-t4"
)

// Config holds synthesis client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Backend
	BaseURL string
	APIKey  string

	// Model selection per family
	IndoAryanServiceID string
	DravidianServiceID string

	// Voice parameters sent with every request
	SamplingRate int
	Gender       string

	// Timeouts and pacing
	Timeout    time.Duration
	MinCallGap time.Duration

	// Auth cooldown: after AuthFailureLimit consecutive 401s, synthesis is
	// refused for AuthCooldown.
	AuthFailureLimit int
	AuthCooldown     time.Duration

	// Decorators shape each outgoing request (correlation IDs and the like).
	Decorators []RequestDecorator

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL sets the backend endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithAPIKey sets the backend API key. Empty means anonymous access.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithServiceIDs overrides the per-family model identifiers.
func WithServiceIDs(indoAryan, dravidian string) Option {
	return func(c *Config) {
		c.IndoAryanServiceID = indoAryan
		c.DravidianServiceID = dravidian
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

// WithMinCallGap sets the minimum spacing between backend calls.
func WithMinCallGap(gap time.Duration) Option {
	return func(c *Config) { c.MinCallGap = gap }
}

// WithAuthCooldown configures the consecutive-401 limit and the pause that
// follows once it is exceeded.
func WithAuthCooldown(limit int, cooldown time.Duration) Option {
	return func(c *Config) {
		c.AuthFailureLimit = limit
		c.AuthCooldown = cooldown
	}
}

// WithDecorator appends a request decorator.
func WithDecorator(d RequestDecorator) Option {
	return func(c *Config) { c.Decorators = append(c.Decorators, d) }
}

// WithLogger sets the structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		IndoAryanServiceID: DefaultIndoAryanServiceID,
		DravidianServiceID: DefaultDravidianServiceID,
		SamplingRate:       16000,
		Gender:             "female",
		Timeout:            DefaultTimeout,
		MinCallGap:         DefaultMinCallGap,
		AuthFailureLimit:   3,
		AuthCooldown:       5 * time.Minute,
		Decorators:         []RequestDecorator{RequestID()},
		Logger:             slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	return nil
}

// serviceID returns the model identifier for a family.
func (c *Config) serviceID(f Family) string {
	if f == FamilyDravidian {
		return c.DravidianServiceID
	}
	return c.IndoAryanServiceID
}

// decorate applies all configured decorators to a request.
func (c *Config) decorate(req *http.Request) {
	for _, d := range c.Decorators {
		d(req)
	}
}
