// Package transport provides the HTTP plumbing between ledgersync and the
// accounting backend: authenticated requests, JSON encoding, and response
// decoding with typed error mapping.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgersync/ledgersync/pkg/errors"
	"github.com/ledgersync/ledgersync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// Client provides HTTP client functionality with authentication against a
// single backend base URL.
type Client struct {
	http    *http.Client
	auth    Authenticator
	baseURL string
	apiKey  string
}

// New creates a new transport client for the given base URL. An empty API
// key disables authentication.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	var auth Authenticator = &NoAuth{}
	if apiKey != "" {
		auth = &BearerAuth{}
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		auth:    auth,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// URL joins the base URL with a path and optional query values.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do performs an HTTP request with authentication and common headers applied.
// Every request carries a generated request ID, mirrored into the logger.
func (c *Client) Do(ctx context.Context, method, rawURL string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", "request body", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+rawURL, err)
	}

	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Ctx(ctx).Debug().
		Str("method", method).
		Str("url", rawURL).
		Str("request_id", requestID).
		Msg("Backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.ErrTimeout
		}
		if ctx.Err() == context.Canceled {
			return nil, errors.ErrCanceled
		}
		return nil, err
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil)
}
