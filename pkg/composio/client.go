package composio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Deduction-Dev/composio/pkg/metricskey"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/Deduction-Dev/composio", "composio")

const (
	// DefaultBaseURL is the production endpoint of the platform
	DefaultBaseURL = "https://backend.composio.dev"

	// EnvAPIKey is the environment variable with the API key
	EnvAPIKey = "COMPOSIO_API_KEY"
	// EnvBaseURL is the environment variable with the base URL override
	EnvBaseURL = "COMPOSIO_BASE_URL"

	headerAPIKey = "x-api-key"
)

// ErrMissingAPIKey is returned by New when the API key is not configured.
var ErrMissingAPIKey = errors.New("composio: API key is not set, provide it in config or " + EnvAPIKey)

// APIError is returned when the platform responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("composio: API returned unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("composio: API returned unexpected status code: %d: %s", e.StatusCode, e.Message)
}

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the HTTP client of the platform API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient Doer
}

// Option is an option for the Client.
type Option func(*Client)

// WithBaseURL overrides the base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// New returns a new Client,
// empty apiKey falls back to COMPOSIO_API_KEY environment variable.
func New(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:     values.StringsCoalesce(apiKey, os.Getenv(EnvAPIKey)),
		baseURL:    values.StringsCoalesce(os.Getenv(EnvBaseURL), DefaultBaseURL),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		return nil, errors.WithStack(ErrMissingAPIKey)
	}
	c.baseURL = strings.TrimSuffix(c.baseURL, "/")
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type listActionsResponse struct {
	Items []*ActionSchema `json:"items"`
}

// ListActions returns the action schemas matching the request filters.
func (c *Client) ListActions(ctx context.Context, req *ListActionsRequest) ([]*ActionSchema, error) {
	if req == nil {
		req = &ListActionsRequest{}
	}

	u := c.buildURL("/api/v2/actions", req.Query())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	var res listActionsResponse
	if err := c.do(httpReq, "list_actions", &res); err != nil {
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"url", u,
		"actions", len(res.Items),
	)
	return res.Items, nil
}

type executeActionPayload struct {
	EntityID string         `json:"entityId"`
	Input    map[string]any `json:"input"`
}

// ExecuteAction executes the action and returns the raw JSON result.
func (c *Client) ExecuteAction(ctx context.Context, req *ExecuteActionRequest) (json.RawMessage, error) {
	if req == nil || req.Action == "" {
		return nil, errors.New("composio: action name is required")
	}

	input := req.Params
	if input == nil {
		input = map[string]any{}
	}
	payload, err := json.Marshal(&executeActionPayload{
		EntityID: req.EntityID,
		Input:    input,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}

	u := c.buildURL("/api/v2/actions/"+url.PathEscape(req.Action)+"/execute", nil)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	var res json.RawMessage
	if err := c.do(httpReq, "execute_action", &res); err != nil {
		return nil, err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"action", req.Action,
		"entity", req.EntityID,
	)
	return res, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerAPIKey, c.apiKey)
}

func (c *Client) buildURL(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

type errorMessage struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

func (m *errorMessage) text() string {
	if m.Message != "" {
		return m.Message
	}
	switch v := m.Error.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["message"].(string); ok {
			return s
		}
	}
	return ""
}

func (c *Client) do(req *http.Request, op string, result any) error {
	c.setHeaders(req)

	started := time.Now()
	r, err := c.httpClient.Do(req)
	metricskey.PerfRemoteCall.MeasureSince(started, op)
	if err != nil {
		metricskey.StatsRemoteCallsFailed.IncrCounter(1, op)
		return errors.Wrap(err, "send request")
	}
	defer func() {
		_ = r.Body.Close()
	}()

	if r.StatusCode < 200 || r.StatusCode >= 300 {
		metricskey.StatsRemoteCallsFailed.IncrCounter(1, op)
		apiErr := &APIError{StatusCode: r.StatusCode}

		body, _ := io.ReadAll(io.LimitReader(r.Body, 64*1024))
		var errResp errorMessage
		if err := json.Unmarshal(body, &errResp); err == nil {
			apiErr.Message = errResp.text()
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		logger.ContextKV(req.Context(), xlog.DEBUG,
			"op", op,
			"status", r.StatusCode,
			"err", apiErr.Message,
		)
		return apiErr
	}

	if err := json.NewDecoder(r.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "decode response")
	}
	return nil
}
