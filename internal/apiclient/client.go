// Package apiclient is the single HTTP request executor used by every domain
// adapter. Each call is one best-effort attempt: no retries, no circuit
// breaking; callers choose how to degrade.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-portal/pkg/util"
)

// TokenSource yields the bearer token to attach, or "" for none.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	// PathParams fill {name} placeholders in the path.
	PathParams map[string]string
	// Query values; nil entries are skipped.
	Query   map[string]any
	Body    any
	Headers map[string]string
}

// Client executes JSON requests against one configured base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout of zero leaves requests bounded only by their context.
	Timeout    time.Duration
	Tokens     TokenSource
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	HTTPClient *http.Client
}

// emptyObject is returned for 2xx responses without a body.
var emptyObject = json.RawMessage(`{}`)

// New creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		logger:     logger.Named("apiclient"),
		metrics:    cfg.Metrics,
	}, nil
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.baseURL.String(), "/")
}

// Get is shorthand for Do with GET.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.Do(ctx, http.MethodGet, path, opts, out)
}

// Post is shorthand for Do with POST.
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.Do(ctx, http.MethodPost, path, opts, out)
}

// Put is shorthand for Do with PUT.
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.Do(ctx, http.MethodPut, path, opts, out)
}

// Delete is shorthand for Do with DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions, out any) error {
	return c.Do(ctx, http.MethodDelete, path, opts, out)
}

// Do issues the request and decodes a non-empty 2xx body into out (when out
// is non-nil). An empty 2xx body leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions, out any) error {
	raw, err := c.DoRaw(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if out == nil || bytes.Equal(raw, emptyObject) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// DoRaw issues the request and returns the raw 2xx body, or the {} sentinel
// when the body is empty.
func (c *Client) DoRaw(ctx context.Context, method, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	target, err := c.resolve(path, opts)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if opts.Body != nil && hasBody(method) {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("token lookup failed; sending unauthenticated", zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordError(path, method, "NETWORK")
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &apperrors.NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.RecordRequest(path, method, resp.StatusCode, elapsed)
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
	)
	if err != nil {
		return nil, &apperrors.NetworkError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordError(path, method, fmt.Sprintf("HTTP_%d", resp.StatusCode))
		return nil, &apperrors.StatusError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, respBody),
		}
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return emptyObject, nil
	}
	return json.RawMessage(respBody), nil
}

// Ping reports whether the backend root answers with 2xx.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.DoRaw(ctx, http.MethodGet, "/", nil)
	return err
}

func (c *Client) resolve(path string, opts *RequestOptions) (string, error) {
	for key, val := range opts.PathParams {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(val))
	}
	if strings.Contains(path, "{") {
		return "", fmt.Errorf("unfilled path parameter in %q", path)
	}

	rel, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(rel)

	if len(opts.Query) > 0 {
		q := u.Query()
		keys := make([]string, 0, len(opts.Query))
		for k := range opts.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendQuery(q, k, opts.Query[k])
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func appendQuery(q url.Values, key string, val any) {
	switch v := val.(type) {
	case nil:
	case string:
		q.Add(key, v)
	case *string:
		if v != nil {
			q.Add(key, *v)
		}
	case *int:
		if v != nil {
			q.Add(key, fmt.Sprint(*v))
		}
	case []string:
		if len(v) > 0 {
			q.Add(key, strings.Join(v, ","))
		}
	default:
		q.Add(key, fmt.Sprint(v))
	}
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

// errorMessage picks, in order: the JSON detail field, the default status line
// for JSON bodies without detail, the raw body text, the default status line.
func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		if json.Valid(body) {
			return fallback
		}
		return text
	}
	detail, ok := parsed["detail"]
	if !ok || string(detail) == "null" {
		return fallback
	}
	var msg string
	if err := json.Unmarshal(detail, &msg); err == nil {
		if msg == "" {
			return fallback
		}
		return msg
	}
	return string(detail)
}
