// Package hub implements the authenticated HTTP client for the asset
// management hub: single JSON calls plus pagination that follows the
// opaque "next" links embedded in each page.
package hub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mlindner/waterhub/pkg/logging"
	"github.com/mlindner/waterhub/pkg/metrics"
)

// allowedVerbs is the set of HTTP methods the hub accepts
var allowedVerbs = map[string]bool{
	http.MethodGet:    true,
	http.MethodHead:   true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Client talks to the hub API for one credential
type Client struct {
	cred     Credential
	baseURL  string
	oauthURL string

	httpClient *http.Client
	log        logging.Logger
	metrics    *metrics.Registry

	// errorPassThrough disables the "errors" body field check so
	// callers can inspect error payloads themselves
	errorPassThrough bool

	auth authState
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics registry
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Client) { c.metrics = m }
}

// WithErrorPassThrough lets error payloads through instead of
// converting them into APIError values
func WithErrorPassThrough() Option {
	return func(c *Client) { c.errorPassThrough = true }
}

// WithBaseURLs overrides the region-derived API and OAuth endpoints
func WithBaseURLs(base, oauth string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.oauthURL = oauth
	}
}

// NewClient validates the credential and builds a hub client for its region
func NewClient(cred Credential, opts ...Option) (*Client, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cred:     cred,
		baseURL:  regionURLs[cred.Region],
		oauthURL: oauthURLs[cred.Region],
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:     logging.NewNopLogger(),
		metrics: metrics.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c, nil
}

// Username returns the technical user of the underlying credential
func (c *Client) Username() string {
	return c.cred.User
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping verifies the credential by listing assets once
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, http.MethodGet, "assets", nil)
	return err
}

// Call issues a single JSON request against the hub. The cmd is relative
// to the region base URL. A nil payload sends an empty body. An empty
// response body (DELETE) yields a nil result.
func (c *Client) Call(ctx context.Context, method, cmd string, payload any) (json.RawMessage, error) {
	return c.do(ctx, method, c.resolve(cmd), payload)
}

// CallPaginated issues GET requests following pagination.<key> next
// links until exhausted and returns all records under key in server
// order. No page is ever silently dropped: any failing page fails the
// whole fetch.
func (c *Client) CallPaginated(ctx context.Context, cmd, key string) ([]json.RawMessage, error) {
	next := c.resolve(cmd)
	var records []json.RawMessage

	for next != "" {
		body, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("page %d of %q: %w", len(records), cmd, err)
		}

		var page struct {
			Pagination map[string]string `json:"pagination"`
		}
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode page of %q: %w", cmd, err)
		}

		// The record array lives under a query-specific key
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("decode page of %q: %w", cmd, err)
		}
		if raw, ok := fields[key]; ok && string(raw) != "null" {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("decode %q records of %q: %w", key, cmd, err)
			}
			records = append(records, items...)
		}

		c.metrics.RecordHubPage()
		next = page.Pagination[key]
	}

	return records, nil
}

// resolve turns a relative cmd into an absolute URL; already-absolute
// URLs (pagination next links) pass through unchanged.
func (c *Client) resolve(cmd string) string {
	if strings.HasPrefix(cmd, "http://") || strings.HasPrefix(cmd, "https://") {
		return cmd
	}
	return c.baseURL + cmd
}

// do performs one request against an absolute URL
func (c *Client) do(ctx context.Context, method, url string, payload any) (json.RawMessage, error) {
	method = strings.ToUpper(method)
	if !allowedVerbs[method] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVerb, method)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Api-Key", c.cred.APIKey)
	req.Header.Set("X-Request-Id", requestID)

	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordHubRequest(method, "transport_error", elapsed)
		return nil, fmt.Errorf("hub request: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordHubRequest(method, strconv.Itoa(resp.StatusCode), elapsed)
	c.log.Debug("hub call",
		logging.RequestID(requestID),
		logging.String("method", method),
		logging.String("url", url),
		logging.Int("status", resp.StatusCode),
		logging.Latency(elapsed),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// DELETE answers with an empty body
	if len(data) == 0 {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
		}
		return nil, nil
	}

	if !c.errorPassThrough {
		var errBody struct {
			Errors json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(data, &errBody); err == nil && hasErrors(errBody.Errors) {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Errors:     string(errBody.Errors),
				RequestID:  requestID,
			}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
	}

	return json.RawMessage(data), nil
}

// hasErrors reports whether a raw "errors" field carries content
func hasErrors(raw json.RawMessage) bool {
	switch s := string(raw); s {
	case "", "null", "[]", "{}":
		return false
	default:
		return true
	}
}

// basicAuthValue builds the Authorization header for basic auth
func basicAuthValue(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}
