// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// HTTP implements API client over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:5150")
	baseURL string
	// endpoints contains the URL paths for various API endpoints
	endpoints Endpoints
	// client is the underlying HTTP client with configured timeout
	client *http.Client
	// userAgent is sent on every request that does not set its own
	userAgent string
}

// Option configures an HTTP client.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.userAgent = ua }
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

// New creates a backend API implementation for baseURL.
// Empty endpoint paths fall back to DefaultEndpoints.
func New(baseURL string, endpoints Endpoints, opts ...Option) *HTTP {
	if endpoints.Current == "" {
		endpoints.Current = DefaultEndpoints().Current
	}
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
		userAgent: "rustatl-cli",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL returns the normalized base URL.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Resolve turns a path like "/api/news" into an absolute URL on the backend.
// Absolute URLs are returned unchanged.
func (h *HTTP) Resolve(target string) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return target, nil
	}
	base, err := url.Parse(h.baseURL + "/")
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base URL %q", h.baseURL)
	}
	return base.ResolveReference(ref).String(), nil
}

// NewRequest builds a request for a path relative to the base URL.
func (h *HTTP) NewRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	u, err := h.Resolve(target)
	if err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, method, u, body)
}

// Do sends req after filling in the standard headers it lacks.
func (h *HTTP) Do(req *http.Request) (*http.Response, error) {
	h.setStandardHeaders(req)
	return h.client.Do(req)
}

// setStandardHeaders adds User-Agent and a request id unless the caller set them.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get("User-Agent") == "" && h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// IsRejected reports whether err is a non-2xx answer from the backend,
// as opposed to a failure to reach it.
func IsRejected(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// newStatusError reads a short excerpt of the body for the error message.
func newStatusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }
