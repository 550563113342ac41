package omnidim

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

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/omnidim-call-relay/pkg/metrics"
	contractx "github.com/tanpawarit/omnidim-call-relay/relay/contract"
)

const (
	dispatchPath         = "/api/v1/calls/dispatch"
	callLogPath          = "/api/v1/calls/logs/"
	maxResponseSizeBytes = 2 << 20
)

type Config struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.omnidim.io"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"0s"`
}

// ClientOption customizes Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

var _ contractx.CallClient = (*Client)(nil)

// Client talks to the OmniDimension calls API with a static bearer token. It
// never retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type dispatchPayload struct {
	AgentID     int                   `json:"agent_id"`
	ToNumber    string                `json:"to_number"`
	CallContext contractx.CallContext `json:"call_context"`
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("omnidimension base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid omnidimension base url: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("timeout must be >= 0")
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		// Zero timeout keeps the platform default.
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Dispatch asks OmniDimension to place one outbound call and returns the
// decoded response body, which normally carries a call_id.
func (c *Client) Dispatch(ctx context.Context, agentID int, toNumber string, callContext contractx.CallContext) (map[string]any, error) {
	start := time.Now()

	body, err := json.Marshal(dispatchPayload{
		AgentID:     agentID,
		ToNumber:    toNumber,
		CallContext: callContext,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal dispatch payload: %v", contractx.ErrDispatch, err)
	}

	out, err := c.do(ctx, http.MethodPost, dispatchPath, body)
	metrics.ObserveRemote("dispatch", start, err)
	if err != nil {
		log.Warn().Err(err).Int("agent_id", agentID).Str("to_number", toNumber).Msg("omnidim dispatch failed")
		return nil, fmt.Errorf("%w: %v", contractx.ErrDispatch, err)
	}

	log.Debug().Int("agent_id", agentID).Str("to_number", toNumber).Interface("call_id", out["call_id"]).Msg("omnidim call dispatched")
	return out, nil
}

func (c *Client) FetchLog(ctx context.Context, callID string) (map[string]any, error) {
	start := time.Now()

	out, err := c.do(ctx, http.MethodGet, callLogPath+url.PathEscape(callID), nil)
	metrics.ObserveRemote("fetch_log", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrLogFetch, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (map[string]any, error) {
	if c == nil {
		return nil, errors.New("nil client")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed, nil
}
