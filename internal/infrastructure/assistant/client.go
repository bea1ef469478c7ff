package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/shopassist/backend/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

var _ domain.AssistantClient = (*Client)(nil)

// Config holds configuration for the remote assistant client
type Config struct {
	// URL is the full chat completion endpoint, e.g. http://host/api/v1/ai/llm
	URL     string
	Timeout time.Duration
	// RequestsPerHour caps outgoing calls. Zero disables the limiter.
	RequestsPerHour int
}

// Client handles communication with the remote chat completion endpoint
type Client struct {
	httpClient  *http.Client
	url         string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new remote assistant client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerHour > 0 {
		// rate.Limit is requests per second
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerHour)/3600), max(1, cfg.RequestsPerHour/60))
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		url:         cfg.URL,
		rateLimiter: limiter,
	}
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Complete sends one chat turn and decodes the reply. It makes a single
// attempt; any failure is reported as ErrAssistantUnavailable so the caller
// can fall back.
func (c *Client) Complete(ctx context.Context, request *domain.AssistantRequest) (*domain.AssistantReply, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	if c.rateLimiter != nil && !c.rateLimiter.Allow() {
		return nil, fmt.Errorf("%w: %w", domain.ErrAssistantUnavailable, domain.ErrRateLimited)
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ShopAssist/1.0")

	if c.debug {
		log.Debug().Str("component", "assistant").Str("url", c.url).Str("session_id", request.SessionID).Msg("sending chat turn")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn().Str("component", "assistant").Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("remote assistant returned an error")
		return nil, fmt.Errorf("%w: status %d", domain.ErrAssistantUnavailable, resp.StatusCode)
	}

	var wire domain.RemoteReply
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrAssistantUnavailable, err)
	}

	reply, err := MapToAssistantReply(&wire)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAssistantUnavailable, err)
	}

	if c.debug {
		log.Debug().Str("component", "assistant").Str("model", reply.ModelUsed).Bool("has_action", reply.Action != nil).Msg("received chat reply")
	}
	return reply, nil
}
