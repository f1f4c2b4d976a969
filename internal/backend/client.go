package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Eshhar121/ecommerce-frontend/internal/telemetry"
)

const maxResponseBytes = 4 << 20

// Client talks to the storefront REST backend on behalf of one visitor.
// The backend authenticates by cookie, so every Client owns its cookie jar.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	jar      *resettableJar
	identity *IdentityDecoder
}

// resettableJar lets logout drop every cookie regardless of the path or
// domain the backend set it with.
type resettableJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newResettableJar() *resettableJar {
	jar, _ := cookiejar.New(nil)
	return &resettableJar{jar: jar}
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *resettableJar) reset() {
	fresh, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = fresh
	j.mu.Unlock()
}

// ClientOptions configures client construction.
type ClientOptions struct {
	Transport http.RoundTripper
	Timeout   time.Duration
	Cookies   []*http.Cookie
	Identity  *IdentityDecoder
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithTransport shares a transport between visitor clients.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(opts *ClientOptions) {
		opts.Transport = rt
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.Timeout = d
	}
}

// WithCookies seeds the jar with previously saved backend cookies.
func WithCookies(cookies []*http.Cookie) ClientOption {
	return func(opts *ClientOptions) {
		opts.Cookies = cookies
	}
}

// WithIdentityDecoder overrides the decoder used by Me.
func WithIdentityDecoder(d *IdentityDecoder) ClientOption {
	return func(opts *ClientOptions) {
		opts.Identity = d
	}
}

// NewClient creates a client for the backend rooted at baseURL,
// e.g. "http://localhost:5000/api".
func NewClient(baseURL string, optFns ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	opts := ClientOptions{Timeout: 10 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Identity == nil {
		opts.Identity, err = defaultIdentityDecoder()
		if err != nil {
			return nil, err
		}
	}

	jar := newResettableJar()
	if len(opts.Cookies) > 0 {
		jar.SetCookies(u, opts.Cookies)
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Transport: opts.Transport,
			Timeout:   opts.Timeout,
			Jar:       jar,
		},
		jar:      jar,
		identity: opts.Identity,
	}, nil
}

// Cookies returns the backend cookies currently held for this visitor.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// ClearCookies drops every backend cookie held for this visitor.
func (c *Client) ClearCookies() {
	c.jar.reset()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one JSON round trip. out may be nil. Non-2xx responses are
// returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerBackend, "backend."+method,
		attribute.String(telemetry.AttrBackendMethod, method),
		attribute.String(telemetry.AttrBackendPath, path),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int(telemetry.AttrBackendStatus, resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		telemetry.RecordError(span, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
