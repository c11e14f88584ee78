// Package gemini is a resilient client for the generative-AI REST endpoints
// used by the studio: text, vision, image and speech generation.
//
// Every call is a single JSON POST authenticated with a ?key= query
// parameter. Throttling (429), server faults (5xx) and transport failures
// are retried through pkg/retry under one shared attempt budget; everything
// else is terminal and comes back as a *Error with a Kind.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creatorhub/pkg/retry"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTextModel   = "gemini-2.5-flash-preview-05-20"
	DefaultImageModel  = "imagen-3.0-generate-002"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultTimeout     = 2 * time.Minute

	// maxResponseBytes bounds a single response body; image and audio
	// payloads arrive base64 encoded.
	maxResponseBytes = 64 << 20
)

// Config holds connection settings for Client.
type Config struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	ImageModel  string
	SpeechModel string
	// Timeout bounds one attempt, not the whole retry sequence.
	Timeout     time.Duration
	MaxAttempts int
}

// DefaultConfig returns the models and limits the studio was built against.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		TextModel:   DefaultTextModel,
		ImageModel:  DefaultImageModel,
		SpeechModel: DefaultSpeechModel,
		Timeout:     DefaultTimeout,
		MaxAttempts: retry.DefaultMaxAttempts,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for retry notices.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimer replaces the backoff timer; tests use one that fires at once.
func WithTimer(t backoff.Timer) Option {
	return func(c *Client) { c.timer = t }
}

// WithJitter replaces the uniform [0,1s) jitter source.
func WithJitter(j func() time.Duration) Option {
	return func(c *Client) { c.jitter = j }
}

// Client talks to the generative-AI backend. It keeps no state between
// calls and is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	log    *zap.Logger
	timer  backoff.Timer
	jitter func() time.Duration
}

// New builds a Client, filling unset config fields with defaults.
func New(cfg Config, opts ...Option) *Client {
	def := DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TextModel == "" {
		cfg.TextModel = def.TextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = def.ImageModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = def.SpeechModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// call POSTs payload to models/{method} and decodes a 2xx body into out,
// retrying transient failures.
func (c *Client) call(ctx context.Context, op, method string, payload, out any) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return &Error{Kind: KindTerminalClient, Op: op, Message: "API key not configured"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gemini %s: marshal request: %w", op, err)
	}
	endpoint := fmt.Sprintf("%s/models/%s?key=%s", c.cfg.BaseURL, method, url.QueryEscape(c.cfg.APIKey))

	start := time.Now()
	policy := retry.Policy{
		MaxAttempts: c.cfg.MaxAttempts,
		IsRetryable: IsRetryable,
		Jitter:      c.jitter,
		Timer:       c.timer,
		Notify: func(attempt int, err error, delay time.Duration) {
			c.log.Warn("gemini call failed, backing off",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
		},
	}
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		return c.attempt(ctx, op, endpoint, body, out)
	})
	if err == nil {
		c.log.Debug("gemini call completed", zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		c.log.Error("gemini call gave up",
			zap.String("op", op),
			zap.Int("attempts", exhausted.Attempts),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(exhausted.Err))
		return &Error{
			Kind:    KindRetriesExhausted,
			Op:      op,
			Message: fmt.Sprintf("max retries reached for %s call", op),
			Err:     err,
		}
	}
	return err
}

func (c *Client) attempt(ctx context.Context, op, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("gemini %s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Kind: KindTransientNetwork, Op: op, Message: "request failed", Err: redact(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Kind: KindTransientNetwork, Op: op, Message: "reading response failed", Err: err}
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return &Error{Kind: KindTransientServer, Op: op, Status: status, Message: serverMessage(op, status, raw)}
	case status < 200 || status >= 300:
		return &Error{Kind: KindTerminalClient, Op: op, Status: status, Message: serverMessage(op, status, raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindMalformedResponse, Op: op, Status: status, Message: "response body is not valid JSON", Err: err}
	}
	return nil
}

// serverMessage prefers the API's own error.message.
func serverMessage(op string, status int, raw []byte) string {
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return fmt.Sprintf("%s request failed with status %d", op, status)
}

// redact strips the query string (and with it the API key) from transport errors.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	clean := *ue
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		clean.URL = u.String()
	} else {
		clean.URL = "<redacted>"
	}
	return &clean
}
