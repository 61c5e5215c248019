// Package sdk is a thin client for the bookstore administration REST API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the bookstore API at baseURL.
type Client struct {
	baseURL string
	// authed attaches the bearer token; plain does not.
	authed *http.Client
	plain  *http.Client
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient  *http.Client
	TokenSource oauth2.TokenSource
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the base HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithTokenSource attaches "Authorization: Bearer <token>" to authenticated
// calls. The source is consulted on every request.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(opts *ClientOptions) {
		opts.TokenSource = ts
	}
}

// NewClient creates a client for the API server at baseURL.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	base := opts.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	base = requestIDTransport{base: base}

	plain := &http.Client{
		Transport:     base,
		Timeout:       opts.HTTPClient.Timeout,
		CheckRedirect: opts.HTTPClient.CheckRedirect,
		Jar:           opts.HTTPClient.Jar,
	}
	authed := plain
	if opts.TokenSource != nil {
		authed = &http.Client{
			Transport:     &oauth2.Transport{Source: opts.TokenSource, Base: base},
			Timeout:       opts.HTTPClient.Timeout,
			CheckRedirect: opts.HTTPClient.CheckRedirect,
			Jar:           opts.HTTPClient.Jar,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		authed:  authed,
		plain:   plain,
	}
}

// BaseURL returns the server URL the client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestIDTransport struct {
	base http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.base.RoundTrip(r)
}

// do sends a JSON request and returns the raw response body for 2xx replies.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in any) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return data, nil
}
