// Package backend is the HTTP client for the multi-agent chat backend.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/version"
)

// Endpoint paths, relative to the base URL.
const (
	PathHealth       = "/health"
	PathAgentsInfo   = "/api/agents-info"
	PathSwitchAgent  = "/switch-agent"
	PathChat         = "/chat"
	PathAddKnowledge = "/add-knowledge"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// ErrDecode is returned when a response body is not the expected JSON.
var ErrDecode = errors.New("backend: malformed response")

// StatusError is returned for a non-2xx response without a usable JSON body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Body)
}

// Client talks to the backend endpoints. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	headers map[string]string
	log     *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a whole-request timeout. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithHeaders adds static headers to every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers[k] = v
		}
	}
}

// WithLogger sets the logger. Defaults to a silent logger.
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) { c.log = log.Sub("backend") }
}

// New creates a client for the backend at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{},
		headers: map[string]string{},
		log:     logging.New(io.Discard, "silent"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AgentsInfo calls GET /api/agents-info.
func (c *Client) AgentsInfo(ctx context.Context) (*AgentsInfo, error) {
	var out AgentsInfo
	if err := c.do(ctx, http.MethodGet, PathAgentsInfo, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SwitchAgent calls POST /switch-agent. A decoded response with
// Success=false is returned without error.
func (c *Client) SwitchAgent(ctx context.Context, agentType string) (*SwitchAgentResponse, error) {
	form := url.Values{"agent_type": {agentType}}
	var out SwitchAgentResponse
	if err := c.do(ctx, http.MethodPost, PathSwitchAgent, form, &out); err != nil {
		return nil, err
	}
	out.normalize()
	return &out, nil
}

// Chat calls POST /chat. A decoded response with Success=false is
// returned without error.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	form := url.Values{"query": {req.Query}}
	if req.UserID != "" {
		form.Set("user_id", req.UserID)
	}
	if req.SessionID != "" {
		form.Set("session_id", req.SessionID)
	}
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, PathChat, form, &out); err != nil {
		return nil, err
	}
	out.normalize()
	c.log.Debug().Str("agent", out.Agent).Str("session_id", out.SessionID).Bool("success", out.Success).Msg("chat response")
	return &out, nil
}

// AddKnowledge calls POST /add-knowledge. A decoded response with
// Success=false is returned without error.
func (c *Client) AddKnowledge(ctx context.Context, req KnowledgeRequest) (*KnowledgeResponse, error) {
	form := url.Values{
		"content": {req.Content},
		"source":  {req.Source},
		"user_id": {req.UserID},
	}
	var out KnowledgeResponse
	if err := c.do(ctx, http.MethodPost, PathAddKnowledge, form, &out); err != nil {
		return nil, err
	}
	out.normalize()
	c.log.Debug().Str("doc_id", out.DocID).Bool("success", out.Success).Msg("knowledge response")
	return &out, nil
}

// do sends the request and decodes the JSON body into out. The backend
// reports application failures as 4xx/5xx with a JSON body, so any
// decodable body is accepted regardless of status.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) (err error) {
	start := time.Now()
	defer func() { observe(path, start, err) }()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	// every endpoint answers with an object; null or a bare value is not a response
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
		}
		return fmt.Errorf("%w: response is not a JSON object", ErrDecode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(data), 512)}
		}
		if errors.Is(err, ErrDecode) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
