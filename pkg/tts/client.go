package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/anurag03-tech/invoked-voice/internal/httpc"
)

// Client implements Synthesizer against the AI4Bharat-style inference API.
type Client struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	limiter *rate.Limiter

	// Auth cooldown state. Consecutive 401s past the configured limit pause
	// all synthesis for the cooldown window; any success resets the counter.
	authMu        sync.Mutex
	authFailures  int
	cooldownUntil time.Time
}

// NewClient creates a synthesis client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:  cfg,
		client:  httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "tts.client"),
		limiter: rate.NewLimiter(rate.Every(cfg.MinCallGap), 1),
	}, nil
}

// synthRequest is the backend's request body.
type synthRequest struct {
	SourceLanguage string `json:"sourceLanguage"`
	Input          string `json:"input"`
	Task           string `json:"task"`
	ServiceID      string `json:"serviceId"`
	SamplingRate   int    `json:"samplingRate"`
	Gender         string `json:"gender"`
	Track          bool   `json:"track"`
}

// synthResponse is the backend's success body.
type synthResponse struct {
	Audio []struct {
		AudioContent string `json:"audioContent"`
	} `json:"audio"`
}

// Synthesize converts text to audio in the given language.
// Calls are spaced at least MinCallGap apart; the wait respects ctx.
func (c *Client) Synthesize(ctx context.Context, text, language string) (*Result, error) {
	if language == "" {
		language = "en"
	}
	family := FamilyOf(language)

	if err := c.checkCooldown(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, WrapError(family, err)
	}

	payload := synthRequest{
		SourceLanguage: BaseLanguage(language),
		Input:          text,
		Task:           "tts",
		ServiceID:      c.config.serviceID(family),
		SamplingRate:   c.config.SamplingRate,
		Gender:         c.config.Gender,
		Track:          true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(family, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(family, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", c.config.APIKey)
	}
	c.config.decorate(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, WrapError(family, fmt.Errorf("synthesis request: %w", err))
	}
	defer resp.Body.Close()
	latency := time.Since(start).Milliseconds()

	if resp.StatusCode != http.StatusOK {
		apiErr := c.parseError(resp, family)
		if apiErr.IsUnauthorized() {
			c.recordAuthFailure()
		}
		return nil, apiErr
	}

	var decoded synthResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, WrapError(family, fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Audio) == 0 || decoded.Audio[0].AudioContent == "" {
		return nil, ErrNoAudioContent
	}

	audio, err := base64.StdEncoding.DecodeString(decoded.Audio[0].AudioContent)
	if err != nil {
		return nil, WrapError(family, fmt.Errorf("decode audio content: %w", err))
	}

	c.resetAuthFailures()

	c.logger.Debug("synthesized audio",
		"language", language,
		"family", family.String(),
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
	)

	return &Result{
		Audio:      audio,
		SampleRate: c.config.SamplingRate,
		CharCount:  len(text),
		LatencyMs:  latency,
	}, nil
}

// Health checks backend reachability without issuing a synthesis.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.BaseURL, nil)
	if err != nil {
		return WrapError(FamilyIndoAryan, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return WrapError(FamilyIndoAryan, fmt.Errorf("health check: %w", err))
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &APIError{StatusCode: resp.StatusCode, Family: FamilyIndoAryan}
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// checkCooldown refuses synthesis while the auth cooldown is active.
func (c *Client) checkCooldown() error {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	if time.Now().Before(c.cooldownUntil) {
		return ErrAuthCooldown
	}
	return nil
}

func (c *Client) recordAuthFailure() {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	c.authFailures++
	if c.authFailures > c.config.AuthFailureLimit {
		c.cooldownUntil = time.Now().Add(c.config.AuthCooldown)
		c.authFailures = 0
		c.logger.Warn("pausing synthesis after repeated auth failures",
			"cooldown", c.config.AuthCooldown,
		)
	}
}

func (c *Client) resetAuthFailures() {
	c.authMu.Lock()
	c.authFailures = 0
	c.authMu.Unlock()
}

// parseError reads and parses an error response.
func (c *Client) parseError(resp *http.Response, family Family) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	message := ""
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			message = errResp.Message
		} else {
			message = errResp.Detail
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Family:     family,
	}
}

// Verify Client implements Synthesizer at compile time.
var _ Synthesizer = (*Client)(nil)
