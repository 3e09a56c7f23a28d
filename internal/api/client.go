// Package api is taskdesk's REST client. Every backend resource has a typed
// service over one Client, which handles auth, request IDs, error mapping,
// retries and call logging.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexanderramin/taskdesk/internal/config"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Config holds connection settings for a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

// ConfigFrom maps the loaded application settings.
func ConfigFrom(c config.APIConfig) Config {
	return Config{
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout(),
		MaxRetries: c.MaxRetries,
		Backoff:    250 * time.Millisecond,
	}
}

// Client talks JSON to the backend. Requests carry a bearer token from the
// TokenSource unless they are anonymous (login, refresh).
type Client struct {
	cfg      Config
	base     string
	authed   *http.Client
	anon     *http.Client
	observer Observer
	newID    func() string
}

// NewClient builds a Client. A nil tokens sends every request without a
// bearer token.
func NewClient(cfg Config, tokens oauth2.TokenSource, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	anon := &http.Client{Transport: transport, Timeout: cfg.Timeout}
	authed := anon
	if tokens != nil {
		authed = &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: transport},
			Timeout:   cfg.Timeout,
		}
	}
	return &Client{
		cfg:      cfg,
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		authed:   authed,
		anon:     anon,
		observer: observer,
		newID:    uuid.NewString,
	}
}

// BaseURL returns the backend root every path is resolved against.
func (c *Client) BaseURL() string { return c.base }

type call struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	accept      string
	anon        bool
	out         any
	sink        io.Writer
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, query: query, out: out})
}

// send issues a JSON request with in as the body (nil for none).
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	r := call{method: method, path: path, out: out}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		r.body = data
		r.contentType = "application/json"
	}
	return c.do(ctx, r)
}

func (c *Client) do(ctx context.Context, r call) error {
	start := time.Now()
	reqID := c.newID()
	idemKey := ""
	if r.method == http.MethodPost {
		idemKey = c.newID()
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	var (
		status int
		err    error
		n      int
	)
	for n < attempts {
		n++
		status, err = c.attempt(ctx, r, reqID, idemKey)
		if err == nil || !retryable(err) || ctx.Err() != nil || n == attempts {
			break
		}
		if !sleep(ctx, c.cfg.Backoff*time.Duration(n)) {
			break
		}
	}

	c.observer.OnCallComplete(ctx, CallEvent{
		Method:    r.method,
		Path:      r.path,
		Status:    status,
		Attempts:  n,
		Latency:   time.Since(start),
		RequestID: reqID,
		Err:       err,
	})
	return err
}

func (c *Client) attempt(ctx context.Context, r call, reqID, idemKey string) (int, error) {
	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	hc := c.authed
	if r.anon {
		hc = c.anon
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, transportError(ctx, r, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeError(resp, r, reqID)
	}
	if r.sink != nil {
		if _, err := io.Copy(r.sink, resp.Body); err != nil {
			return resp.StatusCode, fmt.Errorf("downloading %s: %w", r.path, err)
		}
		return resp.StatusCode, nil
	}
	if r.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding %s response: %w", r.path, err)
	}
	return resp.StatusCode, nil
}

func decodeError(resp *http.Response, r call, reqID string) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Method:    r.method,
		Path:      r.path,
		RequestID: reqID,
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
		apiErr.Fields = body.fields()
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func transportError(ctx context.Context, r call, err error) error {
	// Token source failures surface here wrapped in *url.Error.
	if errors.Is(err, ErrUnauthorized) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", r.method, r.path, ErrTimeout)
		}
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s %s: %w", r.method, r.path, ErrTimeout)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%s %s: %w", r.method, r.path, err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func idPath(format string, ids ...int64) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
